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

// Package hub serializes all mutations of one document through a
// single writer goroutine and fans accepted operations out to the
// live subscribers. Documents are fully independent.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/oplog"
	"github.com/das7pad/collab-go/pkg/pubSub/channel"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

// Repository loads and persists canonical document state. It is only
// consulted outside the hub's critical section.
type Repository interface {
	LoadDocument(ctx context.Context, docId uuid.UUID) (sharedTypes.Snapshot, sharedTypes.Version, error)
	PersistDocument(ctx context.Context, docId uuid.UUID, content sharedTypes.Snapshot, version sharedTypes.Version) error
}

type Manager struct {
	mu   sync.Mutex
	hubs map[uuid.UUID]*Hub

	options   *types.Options
	repo      Repository
	publisher channel.Writer
}

func New(options *types.Options, repo Repository, publisher channel.Writer) *Manager {
	return &Manager{
		hubs:      make(map[uuid.UUID]*Hub),
		options:   options,
		repo:      repo,
		publisher: publisher,
	}
}

// Join subscribes the client to its document, lazily creating the hub
// and loading the document on first subscriber. The document_state
// snapshot is delivered through the client's write queue, atomically
// ordered with respect to subsequent operation broadcasts.
func (m *Manager) Join(ctx context.Context, client *types.Client) error {
	h, err := m.getOrCreateHub(ctx, client.DocId)
	if err != nil {
		return err
	}
	return m.enqueue(h, hubMessage{action: actionSubscribe, client: client})
}

// Leave unsubscribes the client. Call exactly once per joined client,
// on transport close.
func (m *Manager) Leave(client *types.Client) error {
	h := m.lookup(client.DocId)
	if h == nil {
		return nil
	}
	return m.enqueuePersistent(h, hubMessage{
		action: actionUnsubscribe, client: client,
	})
}

// Submit routes one client operation into the hub.
func (m *Manager) Submit(client *types.Client, op sharedTypes.Operation) error {
	h := m.lookup(client.DocId)
	if h == nil {
		return &errors.InvalidStateError{Msg: "join doc first"}
	}
	return m.enqueue(h, hubMessage{
		action: actionSubmit, client: client, op: op,
	})
}

// UpdatePosition routes a presence update into the hub. Presence never
// touches the op log or the document version.
func (m *Manager) UpdatePosition(client *types.Client, p *types.ClientPosition) error {
	h := m.lookup(client.DocId)
	if h == nil {
		return &errors.InvalidStateError{Msg: "join doc first"}
	}
	return m.enqueue(h, hubMessage{
		action: actionCursor, client: client, position: p,
	})
}

// SetContent replaces the full document text on behalf of user. The
// replacement is decomposed into incremental operations and pushed
// through the regular submit path, so connected clients converge
// without a resync.
func (m *Manager) SetContent(ctx context.Context, docId uuid.UUID, user sharedTypes.User, content sharedTypes.Snapshot) (sharedTypes.Version, error) {
	if err := content.Validate(); err != nil {
		return 0, err
	}
	h, err := m.getOrCreateHub(ctx, docId)
	if err != nil {
		return 0, err
	}
	done := make(chan setContentResult, 1)
	err = m.enqueue(h, hubMessage{
		action:  actionSetContent,
		user:    user,
		content: content,
		done:    done,
	})
	if err != nil {
		return 0, err
	}
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-done:
		return res.version, res.err
	}
}

// History returns the retained tail of accepted operations with
// version > from. A document without a live hub has no retained tail;
// its snapshot in the backing store is already up to date.
func (m *Manager) History(docId uuid.UUID, from sharedTypes.Version) ([]oplog.Entry, error) {
	h := m.lookup(docId)
	if h == nil {
		return nil, nil
	}
	select {
	case <-h.ready:
	default:
		return nil, nil
	}
	if h.initErr != nil {
		return nil, nil
	}
	if from == sharedTypes.NoVersion {
		return h.log.Tail(), nil
	}
	return h.log.TailSince(from)
}

// FlushAll triggers a background persist on every dirty hub.
func (m *Manager) FlushAll() {
	for _, h := range m.snapshotHubs() {
		_ = m.enqueue(h, hubMessage{action: actionFlush})
	}
}

// DisconnectAll asks every connected client to go away, e.g. ahead of
// a shutdown. Clients reconnect against another instance.
func (m *Manager) DisconnectAll() int {
	n := 0
	for _, h := range m.snapshotHubs() {
		n += h.disconnectClients()
	}
	return n
}

func (m *Manager) ActiveHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}

func (m *Manager) lookup(docId uuid.UUID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[docId]
}

func (m *Manager) snapshotHubs() []*Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	hubs := make([]*Hub, 0, len(m.hubs))
	for _, h := range m.hubs {
		hubs = append(hubs, h)
	}
	return hubs
}

func (m *Manager) getOrCreateHub(ctx context.Context, docId uuid.UUID) (*Hub, error) {
	m.mu.Lock()
	if h, ok := m.hubs[docId]; ok {
		m.mu.Unlock()
		select {
		case <-h.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if h.initErr != nil {
			return nil, h.initErr
		}
		return h, nil
	}
	h := newHub(docId, m)
	m.hubs[docId] = h
	m.mu.Unlock()

	content, version, err := m.repo.LoadDocument(ctx, docId)
	if err != nil {
		h.initErr = err
		m.mu.Lock()
		delete(m.hubs, docId)
		m.mu.Unlock()
		close(h.ready)
		return nil, err
	}
	h.start(content, version)
	close(h.ready)
	return h, nil
}

// enqueue performs a bounded, non-blocking send into the hub inbox.
// The registry lock makes the stopped check race free: a reclaimed hub
// is removed from the map and flagged under the same lock.
func (m *Manager) enqueue(h *Hub, msg hubMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.stopped {
		return &errors.InvalidStateError{Msg: "doc session expired"}
	}
	select {
	case h.inbox <- msg:
		return nil
	default:
		return errHubInboxOverflow
	}
}

// enqueuePersistent retries on overflow. Unsubscribe must not get lost,
// otherwise the hub leaks the session.
func (m *Manager) enqueuePersistent(h *Hub, msg hubMessage) error {
	for {
		err := m.enqueue(h, msg)
		if err != errHubInboxOverflow {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}

// persistDone reports a persist outcome back into the hub goroutine.
// The final flush of a reclaimed hub has no inbox anymore; its outcome
// is dropped along with the hub.
func (m *Manager) persistDone(h *Hub, version sharedTypes.Version, ok bool) {
	_ = m.enqueuePersistent(h, hubMessage{
		action: actionPersistDone, version: version, ok: ok,
	})
}

// tryReclaim removes the hub from the registry iff it is still idle
// and has no queued work. Called from the hub goroutine.
func (m *Manager) tryReclaim(h *Hub) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(h.inbox) != 0 {
		return false
	}
	delete(m.hubs, h.docId)
	h.stopped = true
	return true
}

// scheduleReclaimCheck re-enqueues from a timer goroutine; a full inbox
// means the hub is busy again and the check is moot.
func (m *Manager) scheduleReclaimCheck(h *Hub) {
	_ = m.enqueue(h, hubMessage{action: actionReclaimCheck})
}

var errHubInboxOverflow = &errors.CodedError{
	Msg:  "doc is overloaded, retry later",
	Code: "internal",
}
