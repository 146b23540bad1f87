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
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

var dmp = diffmatchpatch.New()

func init() {
	dmp.DiffTimeout = 100 * time.Millisecond
}

// Diff computes the sequential operations turning before into after.
// Applying them in order via Apply yields after; deletes carry the
// removed text, so the result is invertible.
func Diff(before, after sharedTypes.Snapshot) []sharedTypes.Operation {
	diffs := dmp.DiffMainRunes(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ops := make([]sharedTypes.Operation, 0, len(diffs))
	pos := 0
	for _, diff := range diffs {
		s := sharedTypes.Snippet(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			ops = append(ops, sharedTypes.Operation{
				Kind:     sharedTypes.OpInsert,
				Position: pos,
				Content:  s,
				Length:   len(s),
			})
			pos += len(s)
		case diffmatchpatch.DiffDelete:
			ops = append(ops, sharedTypes.Operation{
				Kind:     sharedTypes.OpDelete,
				Position: pos,
				Content:  s,
				Length:   len(s),
			})
		case diffmatchpatch.DiffEqual:
			pos += len(s)
		}
	}
	return ops
}
