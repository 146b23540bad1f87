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
	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

// Apply splices op into snapshot and returns the new snapshot. Offsets
// are clamped into the snapshot bounds; Apply never fails. Validation
// against the current content happens before any mutation, in the hub.
func Apply(snapshot sharedTypes.Snapshot, op sharedTypes.Operation) sharedTypes.Snapshot {
	op.Normalize()
	switch op.Kind {
	case sharedTypes.OpInsert:
		if len(op.Content) == 0 {
			return snapshot
		}
		pos := clamp(op.Position, 0, len(snapshot))
		next := make(sharedTypes.Snapshot, 0, len(snapshot)+len(op.Content))
		next = append(next, snapshot[:pos]...)
		next = append(next, op.Content...)
		next = append(next, snapshot[pos:]...)
		return next
	case sharedTypes.OpDelete:
		pos := clamp(op.Position, 0, len(snapshot))
		end := clamp(pos+op.Length, pos, len(snapshot))
		if pos == end {
			return snapshot
		}
		next := make(sharedTypes.Snapshot, 0, len(snapshot)-(end-pos))
		next = append(next, snapshot[:pos]...)
		next = append(next, snapshot[end:]...)
		return next
	default:
		return snapshot
	}
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
