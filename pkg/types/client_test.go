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
	"testing"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

func newTestClient(t *testing.T, queueSize int) (*Client, chan WriteQueueEntry, *bool) {
	t.Helper()
	q := make(chan WriteQueueEntry, queueSize)
	disconnected := false
	c, err := NewClient(
		uuid.New(),
		sharedTypes.User{Id: uuid.New(), DisplayName: "alice"},
		q,
		func() { disconnected = true },
	)
	if err != nil {
		t.Fatalf("NewClient() error = %s", err)
	}
	return c, q, &disconnected
}

func TestClientEnsureQueueMessage(t *testing.T) {
	c, q, disconnected := newTestClient(t, 2)
	if !c.EnsureQueueMessage([]byte("one")) {
		t.Errorf("EnsureQueueMessage() = false, want true")
	}
	if !c.EnsureQueueMessage([]byte("two")) {
		t.Errorf("EnsureQueueMessage() = false, want true")
	}
	if len(q) != 2 {
		t.Errorf("queue len = %d, want 2", len(q))
	}
	if *disconnected {
		t.Errorf("disconnect triggered before overflow")
	}
}

// A slow consumer overflows its queue and gets torn down instead of
// blocking the hub.
func TestClientQueueOverflowDisconnects(t *testing.T) {
	c, _, disconnected := newTestClient(t, 1)
	c.EnsureQueueMessage([]byte("one"))
	if c.EnsureQueueMessage([]byte("two")) {
		t.Errorf("EnsureQueueMessage() on full queue = true, want false")
	}
	if !*disconnected {
		t.Errorf("overflow did not trigger disconnect")
	}
	if !c.IsClosed() {
		t.Errorf("IsClosed() = false after overflow")
	}
	if c.EnsureQueueMessage([]byte("three")) {
		t.Errorf("EnsureQueueMessage() on closed client = true, want false")
	}
}

func TestClientQueueFatalMessage(t *testing.T) {
	c, q, _ := newTestClient(t, 4)
	c.QueueFatalMessage([]byte("bye"))
	entry := <-q
	if !entry.FatalError {
		t.Errorf("FatalError = false, want true")
	}
	if !c.IsClosed() {
		t.Errorf("IsClosed() = false after fatal message")
	}
}

func TestClientPosition(t *testing.T) {
	c, _, _ := newTestClient(t, 1)
	if c.Position() != nil {
		t.Errorf("Position() = %+v, want nil", c.Position())
	}
	p := &ClientPosition{Cursor: &CursorPosition{Position: 4, Line: 1}}
	c.SetPosition(p)
	if got := c.Position(); got != p {
		t.Errorf("Position() = %+v, want %+v", got, p)
	}
	if c.LastSeen().Before(c.JoinedAt) {
		t.Errorf("LastSeen() before JoinedAt")
	}
}
