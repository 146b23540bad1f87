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

func TestApply(t *testing.T) {
	type args struct {
		snapshot string
		op       sharedTypes.Operation
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "insertStart",
			args: args{snapshot: "world", op: insert(0, "hello ")},
			want: "hello world",
		},
		{
			name: "insertMiddle",
			args: args{snapshot: "horld", op: insert(1, "ello w")},
			want: "hello world",
		},
		{
			name: "insertEnd",
			args: args{snapshot: "hello", op: insert(5, " world")},
			want: "hello world",
		},
		{
			name: "insertBeyondEndClamps",
			args: args{snapshot: "ab", op: insert(10, "c")},
			want: "abc",
		},
		{
			name: "insertNegativeClamps",
			args: args{snapshot: "ab", op: insert(-3, "c")},
			want: "cab",
		},
		{
			name: "insertEmptyIsNoop",
			args: args{snapshot: "ab", op: insert(1, "")},
			want: "ab",
		},
		{
			name: "insertMultiByte",
			args: args{snapshot: "día", op: insert(3, "s ✓")},
			want: "días ✓",
		},
		{
			name: "deleteMiddle",
			args: args{snapshot: "hello world", op: deletion(5, 6)},
			want: "hello",
		},
		{
			name: "deleteBeyondEndClamps",
			args: args{snapshot: "hello", op: deletion(3, 10)},
			want: "hel",
		},
		{
			name: "deleteZeroIsNoop",
			args: args{snapshot: "hello", op: deletion(2, 0)},
			want: "hello",
		},
		{
			name: "retainIsNoop",
			args: args{
				snapshot: "hello",
				op:       sharedTypes.Operation{Kind: sharedTypes.OpRetain},
			},
			want: "hello",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sharedTypes.Snapshot(tt.args.snapshot), tt.args.op)
			if string(got) != tt.want {
				t.Errorf("Apply() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	snapshot := sharedTypes.Snapshot("abc")
	Apply(snapshot, insert(1, "x"))
	Apply(snapshot, deletion(0, 2))
	if string(snapshot) != "abc" {
		t.Errorf("Apply() mutated input: %q", string(snapshot))
	}
}
