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
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

type MessageType string

const (
	ClientMessageOperation      = MessageType("operation")
	ClientMessageCursorPosition = MessageType("cursor_position")
	ClientMessagePing           = MessageType("ping")
)

type CursorPosition struct {
	Position int `json:"position"`
	Line     int `json:"line"`
}

type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// ClientPosition is the presence payload of one session. It is
// coalesced last-writer-wins and never serialized through the op log.
type ClientPosition struct {
	Cursor    *CursorPosition `json:"cursor"`
	Selection *Selection      `json:"selection,omitempty"`
}

// ClientMessage is one inbound text frame.
type ClientMessage struct {
	Type      MessageType            `json:"type"`
	Operation *sharedTypes.Operation `json:"operation,omitempty"`
	Cursor    *CursorPosition        `json:"cursor,omitempty"`
	Selection *Selection             `json:"selection,omitempty"`
}

func (m *ClientMessage) Validate() error {
	switch m.Type {
	case ClientMessageOperation:
		if m.Operation == nil {
			return &errors.ValidationError{Msg: "missing operation payload"}
		}
		return nil
	case ClientMessageCursorPosition, ClientMessagePing:
		return nil
	default:
		return &errors.ValidationError{
			Msg: "unknown message type: " + string(m.Type),
		}
	}
}

// ConnectedClient is one entry of document_state.active_users.
type ConnectedClient struct {
	Id        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	Cursor    *CursorPosition `json:"cursor"`
	Selection *Selection      `json:"selection"`
}

type documentStateMessage struct {
	Type        MessageType          `json:"type"`
	Content     sharedTypes.Snapshot `json:"content"`
	Version     sharedTypes.Version  `json:"version"`
	ActiveUsers []ConnectedClient    `json:"active_users"`
}

func DocumentStateMessage(content sharedTypes.Snapshot, version sharedTypes.Version, users []ConnectedClient) ([]byte, error) {
	if users == nil {
		users = make([]ConnectedClient, 0)
	}
	return json.Marshal(documentStateMessage{
		Type:        "document_state",
		Content:     content,
		Version:     version,
		ActiveUsers: users,
	})
}

type operationMessage struct {
	Type      MessageType           `json:"type"`
	Operation sharedTypes.Operation `json:"operation"`
	Version   sharedTypes.Version   `json:"version"`
	UserId    uuid.UUID             `json:"user_id"`
	Username  string                `json:"username"`
}

func OperationMessage(op sharedTypes.Operation, version sharedTypes.Version, user sharedTypes.User) ([]byte, error) {
	return json.Marshal(operationMessage{
		Type:      "operation",
		Operation: op,
		Version:   version,
		UserId:    user.Id,
		Username:  user.DisplayName,
	})
}

type operationAckMessage struct {
	Type       MessageType         `json:"type"`
	Version    sharedTypes.Version `json:"version"`
	ServerTime string              `json:"server_time"`
}

func OperationAckMessage(version sharedTypes.Version, serverTime time.Time) ([]byte, error) {
	return json.Marshal(operationAckMessage{
		Type:       "operation_ack",
		Version:    version,
		ServerTime: serverTime.UTC().Format(time.RFC3339Nano),
	})
}

type cursorUpdateMessage struct {
	Type      MessageType     `json:"type"`
	UserId    uuid.UUID       `json:"user_id"`
	Username  string          `json:"username"`
	Cursor    *CursorPosition `json:"cursor"`
	Selection *Selection      `json:"selection"`
}

func CursorUpdateMessage(user sharedTypes.User, p *ClientPosition) ([]byte, error) {
	m := cursorUpdateMessage{
		Type:     "cursor_update",
		UserId:   user.Id,
		Username: user.DisplayName,
	}
	if p != nil {
		m.Cursor = p.Cursor
		m.Selection = p.Selection
	}
	return json.Marshal(m)
}

type presenceMessage struct {
	Type     MessageType `json:"type"`
	UserId   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`
}

func UserJoinedMessage(user sharedTypes.User) ([]byte, error) {
	return json.Marshal(presenceMessage{
		Type:     "user_joined",
		UserId:   user.Id,
		Username: user.DisplayName,
	})
}

func UserLeftMessage(user sharedTypes.User) ([]byte, error) {
	return json.Marshal(presenceMessage{
		Type:     "user_left",
		UserId:   user.Id,
		Username: user.DisplayName,
	})
}

var PongMessage = []byte(`{"type":"pong"}`)

type errorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

func ErrorMessage(message, code string) []byte {
	blob, err := json.Marshal(errorMessage{
		Type:    "error",
		Message: message,
		Code:    code,
	})
	if err != nil {
		return []byte(`{"type":"error","message":"internal error"}`)
	}
	return blob
}

// ErrorMessageFor derives the wire error frame from the error taxonomy.
func ErrorMessageFor(err error, fallback string) []byte {
	return ErrorMessage(
		errors.GetPublicMessage(err, fallback),
		errors.GetCode(err),
	)
}
