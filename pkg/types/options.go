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

package types

import (
	"time"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/options/env"
)

type Options struct {
	// LogRetention bounds the per-document operation log. Clients with
	// a base version older than the window get resync_required.
	LogRetention int

	// HubInboxBound bounds the per-document inbox queue.
	HubInboxBound int

	// WriteQueueBound bounds the per-session outbound queue. Overflow
	// marks the session as a slow consumer and closes the transport.
	WriteQueueBound int

	// IdleGrace keeps a drained hub alive for reconnecting clients.
	IdleGrace time.Duration

	// PresenceExpiry is the TTL on persisted presence entries.
	PresenceExpiry time.Duration

	// PersistInterval drives the periodic snapshot flush.
	PersistInterval time.Duration

	// AuthCacheSize bounds the token digest -> principal LRU.
	AuthCacheSize int

	GracefulShutdownDelay   time.Duration
	GracefulShutdownTimeout time.Duration
}

func (o *Options) FillFromEnv() {
	o.LogRetention = env.GetInt("LOG_RETENTION", 10_000)
	o.HubInboxBound = env.GetInt("HUB_INBOX_BOUND", 64)
	o.WriteQueueBound = env.GetInt("WRITE_QUEUE_BOUND", 32)
	o.IdleGrace = env.GetDuration("IDLE_GRACE_S", 30*time.Second)
	o.PresenceExpiry = env.GetDuration("PRESENCE_EXPIRY_S", time.Hour)
	o.PersistInterval = env.GetDuration("PERSIST_INTERVAL_S", 30*time.Second)
	o.AuthCacheSize = env.GetInt("AUTH_CACHE_SIZE", 2048)
	o.GracefulShutdownDelay = env.GetDuration(
		"GRACEFUL_SHUTDOWN_DELAY_S", 3*time.Second,
	)
	o.GracefulShutdownTimeout = env.GetDuration(
		"GRACEFUL_SHUTDOWN_TIMEOUT_S", 15*time.Second,
	)
}

func (o *Options) Validate() error {
	if o.LogRetention <= 0 {
		return &errors.ValidationError{Msg: "LogRetention must be greater 0"}
	}
	if o.HubInboxBound <= 0 {
		return &errors.ValidationError{Msg: "HubInboxBound must be greater 0"}
	}
	if o.WriteQueueBound <= 0 {
		return &errors.ValidationError{Msg: "WriteQueueBound must be greater 0"}
	}
	if o.IdleGrace <= 0 {
		return &errors.ValidationError{Msg: "IdleGrace must be greater 0"}
	}
	if o.PresenceExpiry <= 0 {
		return &errors.ValidationError{Msg: "PresenceExpiry must be greater 0"}
	}
	if o.AuthCacheSize <= 0 {
		return &errors.ValidationError{Msg: "AuthCacheSize must be greater 0"}
	}
	return nil
}
