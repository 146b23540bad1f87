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

// Package clientTracking mirrors live presence into redis. The mirror
// is advisory: authoritative presence lives with the in-process doc
// state, the redis copy serves dashboards and other instances.
package clientTracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

type Manager interface {
	Connect(ctx context.Context, client *types.Client) error
	UpdatePosition(ctx context.Context, client *types.Client) error
	Disconnect(ctx context.Context, client *types.Client) error
	GetConnectedClients(ctx context.Context, docId uuid.UUID) ([]types.ConnectedClient, error)
}

func New(client redis.UniversalClient, expiry time.Duration) Manager {
	return &manager{
		redisClient: client,
		expiry:      expiry,
	}
}

type manager struct {
	redisClient redis.UniversalClient
	expiry      time.Duration
}

func getDocKey(docId uuid.UUID) string {
	return "presence:{" + docId.String() + "}"
}

// trackedSession is the hash entry payload, keyed by session public id.
type trackedSession struct {
	UserId    uuid.UUID             `json:"user_id"`
	Username  string                `json:"username"`
	Cursor    *types.CursorPosition `json:"cursor,omitempty"`
	Selection *types.Selection      `json:"selection,omitempty"`
	LastSeen  sharedTypes.Timestamp `json:"last_seen"`
}

func (m *manager) persist(ctx context.Context, client *types.Client) error {
	entry := trackedSession{
		UserId:   client.User.Id,
		Username: client.User.DisplayName,
		LastSeen: sharedTypes.TimestampOf(time.Now()),
	}
	if p := client.Position(); p != nil {
		entry.Cursor = p.Cursor
		entry.Selection = p.Selection
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return errors.Tag(err, "encode presence entry")
	}
	key := getDocKey(client.DocId)
	_, err = m.redisClient.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, string(client.PublicId), body)
		p.Expire(ctx, key, m.expiry)
		return nil
	})
	if err != nil {
		return errors.Tag(err, "persist presence entry")
	}
	return nil
}

func (m *manager) Connect(ctx context.Context, client *types.Client) error {
	return m.persist(ctx, client)
}

func (m *manager) UpdatePosition(ctx context.Context, client *types.Client) error {
	return m.persist(ctx, client)
}

func (m *manager) Disconnect(ctx context.Context, client *types.Client) error {
	key := getDocKey(client.DocId)
	err := m.redisClient.HDel(ctx, key, string(client.PublicId)).Err()
	if err != nil && err != redis.Nil {
		return errors.Tag(err, "delete presence entry")
	}
	return nil
}

func (m *manager) GetConnectedClients(ctx context.Context, docId uuid.UUID) ([]types.ConnectedClient, error) {
	raw, err := m.redisClient.HGetAll(ctx, getDocKey(docId)).Result()
	if err != nil {
		return nil, errors.Tag(err, "get presence entries")
	}
	clients := make([]types.ConnectedClient, 0, len(raw))
	for _, body := range raw {
		entry := trackedSession{}
		if err = json.Unmarshal([]byte(body), &entry); err != nil {
			continue
		}
		clients = append(clients, types.ConnectedClient{
			Id:        entry.UserId,
			Username:  entry.Username,
			Cursor:    entry.Cursor,
			Selection: entry.Selection,
		})
	}
	return clients, nil
}
