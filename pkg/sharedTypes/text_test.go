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

func TestSnapshotJSONRoundTrip(t *testing.T) {
	s := Snapshot("grüße ✓")
	blob, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %s", err)
	}
	var back Snapshot
	if err = json.Unmarshal(blob, &back); err != nil {
		t.Fatalf("Unmarshal() error = %s", err)
	}
	if !back.Equals(s) {
		t.Errorf("round trip = %q, want %q", string(back), string(s))
	}
}

func TestSnapshotSlice(t *testing.T) {
	s := Snapshot("hello")
	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{name: "inBounds", start: 1, end: 3, want: "el"},
		{name: "endClamped", start: 3, end: 99, want: "lo"},
		{name: "startPastEnd", start: 9, end: 12, want: ""},
		{name: "negativeStart", start: -2, end: 2, want: "he"},
		{name: "invertedRange", start: 3, end: 1, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Slice(tt.start, tt.end); string(got) != tt.want {
				t.Errorf("Slice() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestSnapshotHash(t *testing.T) {
	// Matches `git hash-object` over the code points.
	s := Snapshot("hello world\n")
	want := Hash("3b18e512dba79e4c8300dd08aeb37f8e728b8dad")
	if got := s.Hash(); got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
	if err := s.Hash().CheckMatches(want); err != nil {
		t.Errorf("CheckMatches() error = %s", err)
	}
	if err := s.Hash().CheckMatches("other"); err == nil {
		t.Errorf("CheckMatches() expected mismatch error")
	}
}

func TestNewPublicId(t *testing.T) {
	a, err := NewPublicId()
	if err != nil {
		t.Fatalf("NewPublicId() error = %s", err)
	}
	if err = a.Validate(); err != nil {
		t.Errorf("Validate() error = %s", err)
	}
	b, err := NewPublicId()
	if err != nil {
		t.Fatalf("NewPublicId() error = %s", err)
	}
	if a == b {
		t.Errorf("NewPublicId() returned duplicate id %s", a)
	}
}
