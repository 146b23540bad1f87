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

// Package collab is the facade the transport layer talks to. It glues
// credential checks, document access, per-document hubs and presence
// tracking together.
package collab

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/managers/collab/internal/clientTracking"
	"github.com/das7pad/collab-go/pkg/managers/collab/internal/hub"
	"github.com/das7pad/collab-go/pkg/managers/collab/internal/webApi"
	"github.com/das7pad/collab-go/pkg/oplog"
	"github.com/das7pad/collab-go/pkg/pubSub/channel"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

// AppliedOpsChannel carries every accepted operation, one redis pub/sub
// channel per document.
const AppliedOpsChannel = channel.BaseChannel("applied-ops")

type Manager interface {
	Connect(ctx context.Context, docId uuid.UUID, token string, writeQueue chan<- types.WriteQueueEntry, disconnect context.CancelFunc) (*types.Client, error)
	Disconnect(client *types.Client)
	Submit(client *types.Client, op sharedTypes.Operation)
	UpdateCursor(client *types.Client, p *types.ClientPosition)
	GetDocument(ctx context.Context, docId uuid.UUID, token string) (sharedTypes.Snapshot, sharedTypes.Version, error)
	GetHistory(ctx context.Context, docId uuid.UUID, token string, from sharedTypes.Version) ([]oplog.Entry, error)
	SetDocContent(ctx context.Context, docId uuid.UUID, token string, content sharedTypes.Snapshot) (sharedTypes.Version, error)
	GetConnectedClients(ctx context.Context, docId uuid.UUID) ([]types.ConnectedClient, error)
	PeriodicFlush(ctx context.Context)
	InitiateGracefulShutdown() int
}

func New(options *types.Options, db *pgxpool.Pool, redisClient redis.UniversalClient) (Manager, error) {
	w, err := webApi.New(db, options.AuthCacheSize)
	if err != nil {
		return nil, err
	}
	m := &manager{
		options:  options,
		webApi:   w,
		tracking: clientTracking.New(redisClient, options.PresenceExpiry),
	}
	m.hubs = hub.New(
		options, w, channel.NewWriter(redisClient, AppliedOpsChannel),
	)
	return m, nil
}

type manager struct {
	options  *types.Options
	hubs     *hub.Manager
	webApi   webApi.Manager
	tracking clientTracking.Manager
}

func (m *manager) Connect(ctx context.Context, docId uuid.UUID, token string, writeQueue chan<- types.WriteQueueEntry, disconnect context.CancelFunc) (*types.Client, error) {
	user, err := m.webApi.ValidateCredential(ctx, token)
	if err != nil {
		return nil, err
	}
	if err = m.webApi.CheckAccess(ctx, docId, user.Id); err != nil {
		return nil, err
	}
	client, err := types.NewClient(docId, user, writeQueue, disconnect)
	if err != nil {
		return nil, errors.Tag(err, "create client")
	}
	if err = m.hubs.Join(ctx, client); err != nil {
		return nil, err
	}
	m.trackInBackground(client, m.tracking.Connect)
	return client, nil
}

// Disconnect must be called exactly once per connected client, after
// the transport has shut down.
func (m *manager) Disconnect(client *types.Client) {
	client.TriggerDisconnect()
	if err := m.hubs.Leave(client); err != nil {
		log.Printf("collab: client=%s leave: %s", client, err)
	}
	m.trackInBackground(client, m.tracking.Disconnect)
}

// Submit forwards one operation into the doc hub. Rejections surface
// as error frames on the client's write queue, not as returned errors;
// the read loop keeps going either way.
func (m *manager) Submit(client *types.Client, op sharedTypes.Operation) {
	if err := m.hubs.Submit(client, op); err != nil {
		m.reportError(client, err)
	}
}

func (m *manager) UpdateCursor(client *types.Client, p *types.ClientPosition) {
	if err := m.hubs.UpdatePosition(client, p); err != nil {
		m.reportError(client, err)
		return
	}
	m.trackInBackground(client, m.tracking.UpdatePosition)
}

func (m *manager) GetDocument(ctx context.Context, docId uuid.UUID, token string) (sharedTypes.Snapshot, sharedTypes.Version, error) {
	user, err := m.webApi.ValidateCredential(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	return m.webApi.OpenDocument(ctx, docId, user.Id)
}

// GetHistory returns the accepted operations with version > from that
// are still retained in memory. A document without live sessions has an
// empty tail; `from` older than the retention window reports
// resync_required, same as the submit path.
func (m *manager) GetHistory(ctx context.Context, docId uuid.UUID, token string, from sharedTypes.Version) ([]oplog.Entry, error) {
	user, err := m.webApi.ValidateCredential(ctx, token)
	if err != nil {
		return nil, err
	}
	if err = m.webApi.CheckAccess(ctx, docId, user.Id); err != nil {
		return nil, err
	}
	return m.hubs.History(docId, from)
}

func (m *manager) SetDocContent(ctx context.Context, docId uuid.UUID, token string, content sharedTypes.Snapshot) (sharedTypes.Version, error) {
	user, err := m.webApi.ValidateCredential(ctx, token)
	if err != nil {
		return 0, err
	}
	if err = m.webApi.CheckAccess(ctx, docId, user.Id); err != nil {
		return 0, err
	}
	return m.hubs.SetContent(ctx, docId, user, content)
}

func (m *manager) GetConnectedClients(ctx context.Context, docId uuid.UUID) ([]types.ConnectedClient, error) {
	return m.tracking.GetConnectedClients(ctx, docId)
}

// PeriodicFlush persists dirty documents until ctx is cancelled, then
// performs one final flush.
func (m *manager) PeriodicFlush(ctx context.Context) {
	t := time.NewTicker(m.options.PersistInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.hubs.FlushAll()
			return
		case <-t.C:
			m.hubs.FlushAll()
		}
	}
}

// InitiateGracefulShutdown flushes and kicks all clients; they retry
// against the replacement instance. Returns the number of clients.
func (m *manager) InitiateGracefulShutdown() int {
	m.hubs.FlushAll()
	return m.hubs.DisconnectAll()
}

func (m *manager) reportError(client *types.Client, err error) {
	if errors.IsFatalError(err) {
		client.QueueFatalMessage(types.ErrorMessageFor(err, "internal error"))
		return
	}
	client.EnsureQueueMessage(types.ErrorMessageFor(err, "internal error"))
}

// trackInBackground keeps redis IO out of both the hub critical
// section and the transport loops.
func (m *manager) trackInBackground(client *types.Client, fn func(ctx context.Context, client *types.Client) error) {
	go func() {
		ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := fn(ctx, client); err != nil {
			log.Printf("collab: client=%s track presence: %s", client, err)
		}
	}()
}
