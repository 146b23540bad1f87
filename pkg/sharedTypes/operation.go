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
	"encoding/json"

	"github.com/das7pad/collab-go/pkg/errors"
)

type OpKind string

const (
	OpInsert = OpKind("insert")
	OpDelete = OpKind("delete")
	OpRetain = OpKind("retain")
)

// Operation is one atomic edit. Position and Length are in Unicode
// code points. For deletes, Content carries the removed text once the
// hub has captured it at apply time; clients may send it empty.
type Operation struct {
	Kind        OpKind  `json:"type"`
	Position    int     `json:"position"`
	Content     Snippet `json:"content,omitempty"`
	Length      int     `json:"length,omitempty"`
	BaseVersion Version `json:"client_version,omitempty"`
}

func (o *Operation) UnmarshalJSON(bytes []byte) error {
	type operationAlias Operation
	aliased := operationAlias{BaseVersion: NoVersion}
	if err := json.Unmarshal(bytes, &aliased); err != nil {
		return err
	}
	*o = Operation(aliased)
	return nil
}

func (o *Operation) IsInsertion() bool {
	return o.Kind == OpInsert
}

func (o *Operation) IsDeletion() bool {
	return o.Kind == OpDelete
}

func (o *Operation) IsRetain() bool {
	return o.Kind == OpRetain
}

// IsNoop flags operations that do not change any text. They are
// acknowledged at the current version, neither logged nor broadcast.
func (o *Operation) IsNoop() bool {
	switch o.Kind {
	case OpInsert:
		return len(o.Content) == 0
	case OpDelete:
		return o.Length == 0
	default:
		return true
	}
}

// DeleteEnd returns the exclusive end of the deleted span.
func (o *Operation) DeleteEnd() int {
	return o.Position + o.Length
}

// Normalize fills derived fields: a missing kind becomes retain, insert
// length always equals the inserted text length.
func (o *Operation) Normalize() {
	if o.Kind == "" {
		o.Kind = OpRetain
	}
	if o.Kind == OpInsert {
		o.Length = len(o.Content)
	}
}

func (o *Operation) Validate(contentLength int) error {
	switch o.Kind {
	case OpInsert, OpDelete, OpRetain:
	default:
		return &errors.ValidationError{Msg: "unknown op type: " + string(o.Kind)}
	}
	if o.Position < 0 {
		return &errors.ValidationError{Msg: "position is negative"}
	}
	if o.Position > contentLength {
		return &errors.ValidationError{Msg: "position is out of bounds"}
	}
	if o.Length < 0 {
		return &errors.ValidationError{Msg: "length is negative"}
	}
	if o.IsDeletion() && o.DeleteEnd() > contentLength {
		return &errors.ValidationError{Msg: "delete exceeds doc bounds"}
	}
	if o.IsInsertion() {
		if err := Snapshot(o.Content).Validate(); err != nil {
			return err
		}
	}
	return nil
}
