// Golang backend for real-time collaborative text editing
// Copyright (C) 2026 Jakob Ackermann <das7pad@outlook.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package hub

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/oplog"
	"github.com/das7pad/collab-go/pkg/ot/text"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

type action uint8

const (
	actionSubscribe action = iota
	actionUnsubscribe
	actionSubmit
	actionCursor
	actionSetContent
	actionFlush
	actionPersistDone
	actionReclaimCheck
)

type setContentResult struct {
	version sharedTypes.Version
	err     error
}

type hubMessage struct {
	action   action
	client   *types.Client
	op       sharedTypes.Operation
	position *types.ClientPosition
	user     sharedTypes.User
	content  sharedTypes.Snapshot
	done     chan setContentResult
	version  sharedTypes.Version
	ok       bool
}

// Hub owns all mutable state of one document. Every field below inbox
// is confined to the hub goroutine; stopped is guarded by the registry
// lock of the owning Manager.
type Hub struct {
	docId   uuid.UUID
	m       *Manager
	inbox   chan hubMessage
	ready   chan struct{}
	initErr error
	stopped bool

	// clients is mutated by the hub goroutine only; the mutex covers
	// snapshotClients, which runs on the caller of a DisconnectAll.
	clientsMu      sync.RWMutex
	clients        []*types.Client
	content        sharedTypes.Snapshot
	version        sharedTypes.Version
	log            *oplog.Log
	flushedVersion sharedTypes.Version
	flushPending   bool
	emptySince     time.Time
	reclaimArmed   bool
	pubQueue       chan appliedOpMessage
}

func newHub(docId uuid.UUID, m *Manager) *Hub {
	return &Hub{
		docId:    docId,
		m:        m,
		inbox:    make(chan hubMessage, m.options.HubInboxBound),
		ready:    make(chan struct{}),
		pubQueue: make(chan appliedOpMessage, m.options.HubInboxBound),
	}
}

func (h *Hub) start(content sharedTypes.Snapshot, version sharedTypes.Version) {
	h.content = content
	h.version = version
	h.flushedVersion = version
	h.log = oplog.New(version, h.m.options.LogRetention)
	h.emptySince = time.Now()
	h.armReclaimCheck()
	go h.process()
	go h.publishLoop()
}

func (h *Hub) process() {
	for msg := range h.inbox {
		switch msg.action {
		case actionSubscribe:
			h.handleSubscribe(msg.client)
		case actionUnsubscribe:
			h.handleUnsubscribe(msg.client)
		case actionSubmit:
			h.handleSubmit(msg.client, msg.op)
		case actionCursor:
			h.handleCursor(msg.client, msg.position)
		case actionSetContent:
			v, err := h.handleSetContent(msg.user, msg.content)
			msg.done <- setContentResult{version: v, err: err}
		case actionFlush:
			h.flushInBackground()
		case actionPersistDone:
			h.flushPending = false
			if msg.ok && msg.version > h.flushedVersion {
				h.flushedVersion = msg.version
			}
		case actionReclaimCheck:
			h.reclaimArmed = false
			if h.handleReclaimCheck() {
				return
			}
		}
		h.armReclaimCheck()
	}
}

// armReclaimCheck schedules exactly one pending idle check whenever the
// hub has no subscribers, including hubs that never had any, e.g. ones
// spun up for a content import.
func (h *Hub) armReclaimCheck() {
	if h.reclaimArmed || len(h.clients) != 0 {
		return
	}
	h.reclaimArmed = true
	time.AfterFunc(h.m.options.IdleGrace, func() {
		h.m.scheduleReclaimCheck(h)
	})
}

// handleSubscribe sends the joining session a consistent snapshot and
// only then adds it to the fan-out set. Both happen in the hub
// goroutine, so no broadcast can slip between snapshot and membership.
func (h *Hub) handleSubscribe(client *types.Client) {
	superseded := h.dropSessionsOf(client.User.Id)

	blob, err := types.DocumentStateMessage(
		h.content, h.version, h.connectedClients(client),
	)
	if err != nil {
		log.Printf("hub: doc=%s encode document_state: %s", h.docId, err)
		client.TriggerDisconnect()
		return
	}
	if !client.EnsureQueueMessage(blob) {
		return
	}
	h.clientsMu.Lock()
	h.clients = append(h.clients, client)
	h.clientsMu.Unlock()

	// A reconnect of the same principal stays one presence entry.
	if !superseded {
		if blob, err = types.UserJoinedMessage(client.User); err == nil {
			h.broadcast(blob, client)
		}
	}
}

func (h *Hub) handleUnsubscribe(client *types.Client) {
	found := false
	h.clientsMu.Lock()
	for i, c := range h.clients {
		if c == client {
			h.clients[i] = h.clients[len(h.clients)-1]
			h.clients[len(h.clients)-1] = nil
			h.clients = h.clients[:len(h.clients)-1]
			found = true
			break
		}
	}
	h.clientsMu.Unlock()
	if !found {
		return
	}
	if h.sessionsOf(client.User.Id) == 0 {
		if blob, err := types.UserLeftMessage(client.User); err == nil {
			h.broadcast(blob, nil)
		}
	}
	if len(h.clients) == 0 {
		h.emptySince = time.Now()
	}
}

// handleSubmit is the write path: rebase onto the tip, validate, apply,
// append, ack the author and fan out to everyone else.
func (h *Hub) handleSubmit(client *types.Client, op sharedTypes.Operation) {
	op.Normalize()
	base := op.BaseVersion
	if base == sharedTypes.NoVersion {
		base = h.version
	}
	tail, err := h.log.TailSince(base)
	if err != nil {
		h.rejectOp(client, err)
		return
	}
	for _, entry := range tail {
		if entry.UserId == client.User.Id {
			// The author already observed its own earlier ops; their
			// effect is part of the submitted op's base.
			continue
		}
		op = text.TransformOne(op, entry.Op)
	}
	if err = op.Validate(len(h.content)); err != nil {
		h.rejectOp(client, err)
		return
	}
	if op.IsInsertion() &&
		len(h.content)+len(op.Content) > sharedTypes.MaxDocLength {
		h.rejectOp(client, &errors.ValidationError{
			Msg: "doc would exceed max size",
		})
		return
	}
	if op.IsNoop() {
		h.ackOp(client, h.version)
		return
	}
	if op.IsDeletion() {
		// Capture what gets removed; this keeps the log invertible.
		op.Content = h.content.Slice(op.Position, op.DeleteEnd())
	}
	h.apply(op, client.User, client)
}

// apply commits one rebased op. client is nil for server-initiated
// edits, e.g. a content import.
func (h *Hub) apply(op sharedTypes.Operation, author sharedTypes.User, client *types.Client) {
	// The base version is client bookkeeping; scrub it off broadcasts.
	op.BaseVersion = 0
	h.content = text.Apply(h.content, op)
	entry := h.log.Append(op, author.Id, time.Now())
	h.version = entry.Version

	if client != nil {
		h.ackOp(client, entry.Version)
	}
	if blob, err := types.OperationMessage(op, entry.Version, author); err == nil {
		h.broadcast(blob, client)
	}
	h.publish(entry)
}

func (h *Hub) ackOp(client *types.Client, v sharedTypes.Version) {
	blob, err := types.OperationAckMessage(v, time.Now())
	if err != nil {
		return
	}
	client.EnsureQueueMessage(blob)
}

func (h *Hub) rejectOp(client *types.Client, err error) {
	if errors.IsValidationError(err) {
		err = &errors.CodedError{
			Msg:  err.Error(),
			Code: "invalid_operation",
		}
	}
	client.EnsureQueueMessage(types.ErrorMessageFor(err, "rejected operation"))
}

func (h *Hub) handleCursor(client *types.Client, p *types.ClientPosition) {
	client.SetPosition(p)
	if blob, err := types.CursorUpdateMessage(client.User, p); err == nil {
		h.broadcast(blob, client)
	}
}

// handleSetContent replaces the document text via a minimal diff, so
// subscribers receive ordinary incremental operations.
func (h *Hub) handleSetContent(author sharedTypes.User, content sharedTypes.Snapshot) (sharedTypes.Version, error) {
	ops := text.Diff(h.content, content)
	for _, op := range ops {
		if err := op.Validate(len(h.content)); err != nil {
			return h.version, errors.Tag(err, "diff produced invalid op")
		}
		h.apply(op, author, nil)
	}
	h.flushInBackground()
	return h.version, nil
}

// flushInBackground persists the current snapshot off the hub
// goroutine. flushedVersion only advances once the write succeeded; a
// failed persist leaves the hub dirty and the next flush retries.
func (h *Hub) flushInBackground() {
	if h.version == h.flushedVersion || h.flushPending {
		return
	}
	content := h.content
	version := h.version
	h.flushPending = true
	go func() {
		ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		err := h.m.repo.PersistDocument(ctx, h.docId, content, version)
		if err != nil {
			log.Printf(
				"hub: doc=%s persist v=%d: %s", h.docId, version, err,
			)
		}
		h.m.persistDone(h, version, err == nil)
	}()
}

func (h *Hub) handleReclaimCheck() bool {
	if len(h.clients) != 0 {
		return false
	}
	if time.Since(h.emptySince) < h.m.options.IdleGrace {
		return false
	}
	if h.flushPending {
		// An in-flight persist may fail; hold the hub until the outcome
		// is known, so the final flush below sees the true state.
		return false
	}
	if !h.m.tryReclaim(h) {
		return false
	}
	h.flushInBackground()
	close(h.pubQueue)
	return true
}

func (h *Hub) disconnectClients() int {
	n := 0
	for _, c := range h.snapshotClients() {
		c.TriggerDisconnect()
		n++
	}
	return n
}

// snapshotClients is for callers outside the hub goroutine.
func (h *Hub) snapshotClients() []*types.Client {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	out := make([]*types.Client, len(h.clients))
	copy(out, h.clients)
	return out
}

func (h *Hub) broadcast(blob []byte, except *types.Client) {
	for _, c := range h.clients {
		if c == except {
			continue
		}
		c.EnsureQueueMessage(blob)
	}
}

func (h *Hub) connectedClients(joining *types.Client) []types.ConnectedClient {
	users := make([]types.ConnectedClient, 0, len(h.clients)+1)
	for _, c := range h.clients {
		users = append(users, connectedClient(c))
	}
	users = append(users, connectedClient(joining))
	return users
}

func connectedClient(c *types.Client) types.ConnectedClient {
	u := types.ConnectedClient{
		Id:       c.User.Id,
		Username: c.User.DisplayName,
	}
	if p := c.Position(); p != nil {
		u.Cursor = p.Cursor
		u.Selection = p.Selection
	}
	return u
}

func (h *Hub) dropSessionsOf(userId uuid.UUID) bool {
	dropped := false
	h.clientsMu.Lock()
	kept := h.clients[:0]
	for _, c := range h.clients {
		if c.User.Id == userId {
			c.TriggerDisconnect()
			dropped = true
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(h.clients); i++ {
		h.clients[i] = nil
	}
	h.clients = kept
	h.clientsMu.Unlock()
	return dropped
}

func (h *Hub) sessionsOf(userId uuid.UUID) int {
	n := 0
	for _, c := range h.clients {
		if c.User.Id == userId {
			n++
		}
	}
	return n
}

type appliedOpMessage struct {
	DocId uuid.UUID `json:"doc_id"`
	oplog.Entry
}

func (m appliedOpMessage) ChannelId() uuid.UUID {
	return m.DocId
}

// publish mirrors accepted ops onto the per-document redis channel for
// external followers. Dropping on overflow is fine, the channel is a
// best effort feed and the op log remains authoritative.
func (h *Hub) publish(entry oplog.Entry) {
	msg := appliedOpMessage{DocId: h.docId, Entry: entry}
	select {
	case h.pubQueue <- msg:
	default:
		log.Printf("hub: doc=%s publish queue overflow, dropping v=%d",
			h.docId, entry.Version)
	}
}

func (h *Hub) publishLoop() {
	for msg := range h.pubQueue {
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		err := h.m.publisher.Publish(ctx, msg)
		done()
		if err != nil {
			log.Printf("hub: doc=%s publish v=%d: %s",
				h.docId, msg.Version, err)
		}
	}
}
