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
	"testing"
)

func TestOperationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want Operation
	}{
		{
			name: "insertWithBaseVersion",
			blob: `{"type":"insert","position":3,"content":"hi","client_version":7}`,
			want: Operation{
				Kind:        OpInsert,
				Position:    3,
				Content:     Snippet("hi"),
				BaseVersion: 7,
			},
		},
		{
			name: "missingBaseVersionDefaultsToNoVersion",
			blob: `{"type":"delete","position":0,"length":2}`,
			want: Operation{
				Kind:        OpDelete,
				Length:      2,
				BaseVersion: NoVersion,
			},
		},
		{
			name: "explicitZeroBaseVersion",
			blob: `{"type":"insert","position":0,"content":"x","client_version":0}`,
			want: Operation{
				Kind:        OpInsert,
				Content:     Snippet("x"),
				BaseVersion: 0,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Operation{}
			if err := json.Unmarshal([]byte(tt.blob), &got); err != nil {
				t.Fatalf("Unmarshal() error = %s", err)
			}
			if got.Kind != tt.want.Kind ||
				got.Position != tt.want.Position ||
				string(got.Content) != string(tt.want.Content) ||
				got.Length != tt.want.Length ||
				got.BaseVersion != tt.want.BaseVersion {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOperationNormalize(t *testing.T) {
	o := Operation{Kind: OpInsert, Content: Snippet("héllo")}
	o.Normalize()
	if o.Length != 5 {
		t.Errorf("Normalize() insert length = %d, want 5", o.Length)
	}
	o = Operation{Position: 3}
	o.Normalize()
	if o.Kind != OpRetain {
		t.Errorf("Normalize() kind = %q, want retain", o.Kind)
	}
}

func TestOperationValidate(t *testing.T) {
	tests := []struct {
		name          string
		op            Operation
		contentLength int
		wantErr       bool
	}{
		{
			name:          "insertAtEnd",
			op:            Operation{Kind: OpInsert, Position: 5, Content: Snippet("x")},
			contentLength: 5,
		},
		{
			name:          "insertPastEnd",
			op:            Operation{Kind: OpInsert, Position: 6, Content: Snippet("x")},
			contentLength: 5,
			wantErr:       true,
		},
		{
			name:          "negativePosition",
			op:            Operation{Kind: OpInsert, Position: -1},
			contentLength: 5,
			wantErr:       true,
		},
		{
			name:          "deleteInBounds",
			op:            Operation{Kind: OpDelete, Position: 2, Length: 3},
			contentLength: 5,
		},
		{
			name:          "deletePastEnd",
			op:            Operation{Kind: OpDelete, Position: 2, Length: 4},
			contentLength: 5,
			wantErr:       true,
		},
		{
			name:          "negativeLength",
			op:            Operation{Kind: OpDelete, Position: 2, Length: -1},
			contentLength: 5,
			wantErr:       true,
		},
		{
			name:          "unknownKind",
			op:            Operation{Kind: "replace"},
			contentLength: 5,
			wantErr:       true,
		},
		{
			name:          "retain",
			op:            Operation{Kind: OpRetain, Position: 5},
			contentLength: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate(tt.contentLength)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOperationIsNoop(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want bool
	}{
		{name: "emptyInsert", op: Operation{Kind: OpInsert}, want: true},
		{
			name: "insert",
			op:   Operation{Kind: OpInsert, Content: Snippet("x")},
			want: false,
		},
		{name: "zeroDelete", op: Operation{Kind: OpDelete}, want: true},
		{
			name: "delete",
			op:   Operation{Kind: OpDelete, Length: 1},
			want: false,
		},
		{name: "retain", op: Operation{Kind: OpRetain, Position: 3}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.IsNoop(); got != tt.want {
				t.Errorf("IsNoop() = %v, want %v", got, tt.want)
			}
		})
	}
}
