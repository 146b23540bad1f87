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

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
	}{
		{name: "noChange", before: "same", after: "same"},
		{name: "fromEmpty", before: "", after: "hello"},
		{name: "toEmpty", before: "hello", after: ""},
		{name: "appendOnly", before: "hello", after: "hello world"},
		{name: "prependOnly", before: "world", after: "hello world"},
		{name: "replaceMiddle", before: "foo bar baz", after: "foo qux baz"},
		{name: "multiByte", before: "über", after: "üben"},
		{
			name:   "scatteredEdits",
			before: "the quick brown fox jumps over the lazy dog",
			after:  "a quick red fox leaps over a lazy cat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sharedTypes.Snapshot(tt.before)
			after := sharedTypes.Snapshot(tt.after)
			got := before
			for _, op := range Diff(before, after) {
				if err := op.Validate(len(got)); err != nil {
					t.Fatalf("Diff() produced invalid op %+v: %s", op, err)
				}
				if op.IsDeletion() && len(op.Content) != op.Length {
					t.Errorf(
						"Diff() delete without captured text: %+v", op,
					)
				}
				got = Apply(got, op)
			}
			if !got.Equals(after) {
				t.Errorf(
					"Diff() replay = %q, want %q", string(got), tt.after,
				)
			}
		})
	}
}
