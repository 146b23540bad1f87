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

package text

import (
	"testing"

	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

func TestInvert(t *testing.T) {
	doc := sharedTypes.Snapshot("hello world")
	tests := []struct {
		name string
		op   sharedTypes.Operation
	}{
		{name: "insert", op: insert(5, " cruel")},
		{
			name: "deleteWithCapturedText",
			op: sharedTypes.Operation{
				Kind:     sharedTypes.OpDelete,
				Position: 5,
				Content:  sharedTypes.Snippet(" worl"),
				Length:   5,
			},
		},
		{name: "retain", op: sharedTypes.Operation{Kind: sharedTypes.OpRetain}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := Apply(doc, tt.op)
			reverted := Apply(applied, Invert(tt.op))
			if !reverted.Equals(doc) {
				t.Errorf(
					"Invert() round trip = %q, want %q",
					string(reverted), string(doc),
				)
			}
		})
	}
}
