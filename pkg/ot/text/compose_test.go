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
	"reflect"
	"testing"

	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		ops  []sharedTypes.Operation
		want []sharedTypes.Operation
	}{
		{
			name: "empty",
			ops:  nil,
			want: nil,
		},
		{
			name: "single",
			ops:  []sharedTypes.Operation{insert(0, "a")},
			want: []sharedTypes.Operation{insert(0, "a")},
		},
		{
			name: "typingRun",
			ops: []sharedTypes.Operation{
				insert(0, "h"), insert(1, "e"), insert(2, "y"),
			},
			want: []sharedTypes.Operation{insert(0, "hey")},
		},
		{
			name: "backspaceRun",
			ops: []sharedTypes.Operation{
				deletion(4, 1), deletion(4, 1), deletion(4, 2),
			},
			want: []sharedTypes.Operation{deletion(4, 4)},
		},
		{
			name: "nonAdjacentInsertsStaySplit",
			ops: []sharedTypes.Operation{
				insert(0, "a"), insert(5, "b"),
			},
			want: []sharedTypes.Operation{insert(0, "a"), insert(5, "b")},
		},
		{
			name: "mixedKindsStaySplit",
			ops: []sharedTypes.Operation{
				insert(0, "a"), deletion(1, 2), insert(1, "b"),
			},
			want: []sharedTypes.Operation{
				insert(0, "a"), deletion(1, 2), insert(1, "b"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.ops); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compose() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Composing must not change the effect of a sequence.
func TestComposePreservesEffect(t *testing.T) {
	doc := sharedTypes.Snapshot("the quick brown fox")
	seqs := [][]sharedTypes.Operation{
		{insert(3, " very"), insert(8, ","), insert(9, " very")},
		{deletion(0, 4), deletion(0, 6), insert(0, "a ")},
		{insert(0, "x"), insert(1, "y"), deletion(0, 2)},
	}
	for _, ops := range seqs {
		want := doc
		for _, op := range ops {
			want = Apply(want, op)
		}
		got := doc
		for _, op := range Compose(ops) {
			got = Apply(got, op)
		}
		if !got.Equals(want) {
			t.Errorf(
				"composed %+v: got %q, want %q",
				ops, string(got), string(want),
			)
		}
	}
}
