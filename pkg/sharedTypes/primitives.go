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

package sharedTypes

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/errors"
)

// PublicId identifies one subscriber session. It is unique across
// reconnects of the same principal.
type PublicId string

func (p PublicId) Validate() error {
	if p == "" {
		return &errors.ValidationError{Msg: "missing public id"}
	}
	return nil
}

func NewPublicId() (PublicId, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Tag(err, "generate public id")
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return PublicId(ts + "-" + hex.EncodeToString(buf)), nil
}

// User is the authenticated principal attached to a session. The engine
// treats it as opaque; it is produced by the external authenticator.
type User struct {
	Id          uuid.UUID `json:"id"`
	DisplayName string    `json:"username"`
}

type Timestamp int64

func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}
