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

// Package channel publishes per-document event streams over redis
// pub/sub. Live subscriber fan-out stays in-process; these channels
// exist for external followers such as history or audit consumers.
package channel

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/das7pad/collab-go/pkg/errors"
)

type Message interface {
	ChannelId() uuid.UUID
}

type BaseChannel string

func (c BaseChannel) join(id uuid.UUID) string {
	return string(c) + ":" + id.String()
}

type Writer interface {
	Publish(ctx context.Context, msg Message) error
}

func NewWriter(client redis.UniversalClient, baseChannel BaseChannel) Writer {
	return &writer{
		client: client,
		base:   baseChannel,
	}
}

type writer struct {
	client redis.UniversalClient
	base   BaseChannel
}

func (w *writer) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Tag(err, "encode message for publishing")
	}
	cmd := w.client.Publish(ctx, w.base.join(msg.ChannelId()), body)
	if err = cmd.Err(); err != nil {
		return errors.Tag(err, "publish message")
	}
	return nil
}
