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
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/managers/collab"
	"github.com/das7pad/collab-go/pkg/oplog"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
	"github.com/das7pad/collab-go/pkg/types"
)

func newHttpController(cm collab.Manager, options *types.Options) *httpController {
	return &httpController{
		cm:      cm,
		options: options,
		u: websocket.Upgrader{
			Subprotocols: []string{"v1.collab"},
		},
	}
}

type httpController struct {
	cm      collab.Manager
	options *types.Options
	u       websocket.Upgrader
}

func (h *httpController) GetRouter() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/status", h.status).
		Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/ws/documents/{documentId}", h.ws).
		Methods(http.MethodGet)

	d := router.PathPrefix("/api/documents/{documentId}").Subrouter()
	d.HandleFunc("", h.getDocument).Methods(http.MethodGet)
	d.HandleFunc("/content", h.setContent).Methods(http.MethodPut)
	d.HandleFunc("/clients", h.getConnectedClients).Methods(http.MethodGet)
	d.HandleFunc("/history", h.getHistory).Methods(http.MethodGet)
	return router
}

func (h *httpController) status(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("collab is alive (go)\n"))
}

func getDocId(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["documentId"]
	docId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, &errors.ValidationError{
			Msg: "invalid document id",
		}
	}
	return docId, nil
}

// getToken accepts the credential as bearer header for plain HTTP and
// as query parameter for the WebSocket handshake, where custom headers
// are not available to browser clients.
func getToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func httpStatus(err error) int {
	switch {
	case errors.IsValidationError(err), errors.IsInvalidStateError(err):
		return http.StatusBadRequest
	case errors.IsUnauthorizedError(err):
		return http.StatusUnauthorized
	case errors.IsNotAuthorizedError(err):
		return http.StatusForbidden
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.IsCodedError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, body interface{}, err error, msg string) {
	if err != nil {
		code := httpStatus(err)
		if code == http.StatusInternalServerError {
			log.Printf("%s: %s", msg, err)
		}
		http.Error(w, errors.GetPublicMessage(err, msg), code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("%s: encode response: %s", msg, err)
	}
}

type documentBody struct {
	Content sharedTypes.Snapshot `json:"content"`
	Version sharedTypes.Version  `json:"version"`
}

func (h *httpController) getDocument(w http.ResponseWriter, r *http.Request) {
	docId, err := getDocId(r)
	if err != nil {
		respond(w, nil, err, "get doc")
		return
	}
	content, version, err := h.cm.GetDocument(r.Context(), docId, getToken(r))
	respond(w, documentBody{
		Content: content,
		Version: version,
	}, err, "get doc")
}

func (h *httpController) setContent(w http.ResponseWriter, r *http.Request) {
	docId, err := getDocId(r)
	if err != nil {
		respond(w, nil, err, "set doc content")
		return
	}
	body := documentBody{}
	if err = json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, nil, &errors.ValidationError{
			Msg: "invalid request body",
		}, "set doc content")
		return
	}
	version, err := h.cm.SetDocContent(
		r.Context(), docId, getToken(r), body.Content,
	)
	respond(w, struct {
		Version sharedTypes.Version `json:"version"`
	}{Version: version}, err, "set doc content")
}

func (h *httpController) getHistory(w http.ResponseWriter, r *http.Request) {
	docId, err := getDocId(r)
	if err != nil {
		respond(w, nil, err, "get history")
		return
	}
	from := sharedTypes.NoVersion
	if raw := r.URL.Query().Get("from"); raw != "" {
		v, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			respond(w, nil, &errors.ValidationError{
				Msg: "invalid from version",
			}, "get history")
			return
		}
		from = sharedTypes.Version(v)
	}
	entries, err := h.cm.GetHistory(r.Context(), docId, getToken(r), from)
	if entries == nil {
		entries = make([]oplog.Entry, 0)
	}
	respond(w, struct {
		Operations []oplog.Entry `json:"operations"`
	}{Operations: entries}, err, "get history")
}

func (h *httpController) getConnectedClients(w http.ResponseWriter, r *http.Request) {
	docId, err := getDocId(r)
	if err != nil {
		respond(w, nil, err, "get connected clients")
		return
	}
	if _, _, err = h.cm.GetDocument(r.Context(), docId, getToken(r)); err != nil {
		respond(w, nil, err, "get connected clients")
		return
	}
	clients, err := h.cm.GetConnectedClients(r.Context(), docId)
	respond(w, clients, err, "get connected clients")
}

func (h *httpController) ws(w http.ResponseWriter, r *http.Request) {
	docId, err := getDocId(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, upgradeErr := h.u.Upgrade(w, r, nil)
	if upgradeErr != nil {
		// A 4xx has been generated already.
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writeQueue := make(chan types.WriteQueueEntry, h.options.WriteQueueBound)
	client, connectErr := h.cm.Connect(
		ctx, docId, getToken(r), writeQueue, cancel,
	)
	if connectErr != nil {
		// Failed credentials and denied access close without a frame;
		// the close itself is the signal.
		if !errors.IsUnauthorizedError(connectErr) &&
			!errors.IsNotAuthorizedError(connectErr) {
			_ = conn.WriteMessage(
				websocket.TextMessage,
				types.ErrorMessageFor(connectErr, "cannot join doc"),
			)
		}
		return
	}
	defer h.cm.Disconnect(client)

	go func() {
		defer func() {
			cancel()
			_ = conn.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case entry := <-writeQueue:
				err2 := conn.WriteMessage(websocket.TextMessage, entry.Blob)
				if err2 != nil {
					return
				}
				if entry.FatalError {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			// Not done yet.
		}
		_, blob, readErr := conn.ReadMessage()
		if readErr != nil {
			return
		}
		msg := types.ClientMessage{}
		if err = json.Unmarshal(blob, &msg); err != nil {
			// Malformed frames are dropped; only transport errors end
			// the session.
			log.Printf("ws: client=%s malformed frame: %s", client, err)
			continue
		}
		if err = msg.Validate(); err != nil {
			client.EnsureQueueMessage(
				types.ErrorMessageFor(err, "invalid message"),
			)
			continue
		}
		switch msg.Type {
		case types.ClientMessageOperation:
			h.cm.Submit(client, *msg.Operation)
		case types.ClientMessageCursorPosition:
			h.cm.UpdateCursor(client, &types.ClientPosition{
				Cursor:    msg.Cursor,
				Selection: msg.Selection,
			})
		case types.ClientMessagePing:
			client.EnsureQueueMessage(types.PongMessage)
		}
	}
}
