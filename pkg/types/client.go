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
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

type WriteQueueEntry struct {
	Blob       []byte
	FatalError bool
}

func NewClient(docId uuid.UUID, user sharedTypes.User, writeQueue chan<- WriteQueueEntry, disconnect context.CancelFunc) (*Client, error) {
	publicId, err := sharedTypes.NewPublicId()
	if err != nil {
		return nil, err
	}
	return &Client{
		PublicId:   publicId,
		DocId:      docId,
		User:       user,
		JoinedAt:   time.Now(),
		writeQueue: writeQueue,
		disconnect: disconnect,
	}, nil
}

// Client is one subscriber session. The transport loop owns its
// lifetime; the hub only ever enqueues onto the write queue.
type Client struct {
	PublicId sharedTypes.PublicId
	DocId    uuid.UUID
	User     sharedTypes.User
	JoinedAt time.Time

	writeQueue chan<- WriteQueueEntry
	disconnect context.CancelFunc
	closed     atomic.Bool

	// Latest cursor slot, presence only. Never enters the op log.
	position atomic.Pointer[ClientPosition]
	lastSeen atomic.Int64
}

func (c *Client) String() string {
	return string(c.PublicId)
}

// EnsureQueueMessage enqueues without blocking the hub. A full queue
// marks the session as a slow consumer and tears the transport down.
func (c *Client) EnsureQueueMessage(blob []byte) bool {
	return c.ensureQueue(WriteQueueEntry{Blob: blob})
}

// QueueFatalMessage enqueues a final frame and closes the transport
// after it is flushed.
func (c *Client) QueueFatalMessage(blob []byte) {
	c.ensureQueue(WriteQueueEntry{Blob: blob, FatalError: true})
	c.closed.Store(true)
}

func (c *Client) ensureQueue(entry WriteQueueEntry) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.writeQueue <- entry:
		return true
	default:
		c.TriggerDisconnect()
		return false
	}
}

// TriggerDisconnect cancels the transport loop. Safe to call from any
// goroutine, any number of times.
func (c *Client) TriggerDisconnect() {
	c.closed.Store(true)
	c.disconnect()
}

func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

func (c *Client) SetPosition(p *ClientPosition) {
	c.position.Store(p)
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Client) Position() *ClientPosition {
	return c.position.Load()
}

func (c *Client) LastSeen() time.Time {
	ns := c.lastSeen.Load()
	if ns == 0 {
		return c.JoinedAt
	}
	return time.Unix(0, ns)
}
