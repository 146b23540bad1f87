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

package main

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/oplog"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

type fakeCollabManager struct {
	connectErr error
}

func (f *fakeCollabManager) Connect(_ context.Context, docId uuid.UUID, _ string, writeQueue chan<- types.WriteQueueEntry, disconnect context.CancelFunc) (*types.Client, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	user := sharedTypes.User{Id: uuid.New(), DisplayName: "alice"}
	return types.NewClient(docId, user, writeQueue, disconnect)
}

func (f *fakeCollabManager) Disconnect(*types.Client) {}

func (f *fakeCollabManager) Submit(*types.Client, sharedTypes.Operation) {}

func (f *fakeCollabManager) UpdateCursor(*types.Client, *types.ClientPosition) {}

func (f *fakeCollabManager) GetDocument(context.Context, uuid.UUID, string) (sharedTypes.Snapshot, sharedTypes.Version, error) {
	return nil, 0, nil
}

func (f *fakeCollabManager) GetHistory(context.Context, uuid.UUID, string, sharedTypes.Version) ([]oplog.Entry, error) {
	return nil, nil
}

func (f *fakeCollabManager) SetDocContent(context.Context, uuid.UUID, string, sharedTypes.Snapshot) (sharedTypes.Version, error) {
	return 0, nil
}

func (f *fakeCollabManager) GetConnectedClients(context.Context, uuid.UUID) ([]types.ConnectedClient, error) {
	return nil, nil
}

func (f *fakeCollabManager) PeriodicFlush(context.Context) {}

func (f *fakeCollabManager) InitiateGracefulShutdown() int {
	return 0
}

func dialWS(t *testing.T, cm *fakeCollabManager) (*websocket.Conn, func()) {
	t.Helper()
	ctrl := newHttpController(cm, &types.Options{WriteQueueBound: 16})
	srv := httptest.NewServer(ctrl.GetRouter())
	u := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/documents/" + uuid.New().String() + "?token=secret"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %s", err)
	}
	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func TestWSMalformedFrameKeepsSessionOpen(t *testing.T) {
	conn, cleanup := dialWS(t, &fakeCollabManager{})
	defer cleanup()

	err := conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if err != nil {
		t.Fatalf("write malformed frame: %s", err)
	}
	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("write ping: %s", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, blob, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("connection closed after malformed frame, want pong: %s", err)
	}
	if string(blob) != `{"type":"pong"}` {
		t.Errorf("frame = %q, want pong", string(blob))
	}
}

func TestWSAuthFailureClosesWithoutFrame(t *testing.T) {
	conn, cleanup := dialWS(t, &fakeCollabManager{
		connectErr: &errors.UnauthorizedError{Reason: "bad token"},
	})
	defer cleanup()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, blob, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("got frame %q, want close without frames", string(blob))
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Fatalf("no close within deadline")
	}
}
