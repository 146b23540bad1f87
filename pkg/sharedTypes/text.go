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
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/das7pad/collab-go/pkg/errors"
)

type Hash string

func (h Hash) CheckMatches(other Hash) error {
	if h == other {
		return nil
	}
	return &errors.CodedError{
		Msg: string("snapshot hash mismatch: " + h + " != " + other),
	}
}

const (
	MaxDocLength = 2 * 1024 * 1024
)

var ErrDocIsTooLarge = &errors.ValidationError{Msg: "doc is too large"}

// Snapshot is the canonical document content. Offsets into a Snapshot
// are Unicode code-point offsets, not byte offsets.
type Snapshot []rune

func (s Snapshot) Validate() error {
	if len(s) > MaxDocLength {
		return ErrDocIsTooLarge
	}
	return nil
}

func (s *Snapshot) UnmarshalJSON(bytes []byte) error {
	var raw string
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}
	*s = Snapshot(raw)
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s Snapshot) Hash() Hash {
	d := sha1.New()
	d.Write(
		[]byte("blob " + strconv.Itoa(len(s)) + "\x00"),
	)
	d.Write([]byte(string(s)))
	return Hash(hex.EncodeToString(d.Sum(nil)))
}

// Slice returns s[start:end] clamped into the snapshot bounds.
func (s Snapshot) Slice(start, end int) Snippet {
	l := len(s)
	if start < 0 {
		start = 0
	}
	if l < start {
		return Snippet("")
	}
	if l < end {
		end = l
	}
	if end < start {
		end = start
	}
	return Snippet(s[start:end])
}

func (s Snapshot) Equals(other Snapshot) bool {
	return string(s) == string(other)
}

type Snippet []rune

func (s *Snippet) UnmarshalJSON(bytes []byte) error {
	var raw string
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}
	*s = Snippet(raw)
	return nil
}

func (s Snippet) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}
