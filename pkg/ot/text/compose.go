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

// Compose folds a sequence of sequential operations, merging adjacent
// inserts that continue at the end of the previous insert and adjacent
// deletes at the same position. Compose is not commutative.
func Compose(ops []sharedTypes.Operation) []sharedTypes.Operation {
	if len(ops) == 0 {
		return nil
	}
	composed := make([]sharedTypes.Operation, 0, len(ops))
	for _, op := range ops {
		op.Normalize()
		if len(composed) == 0 {
			composed = append(composed, op)
			continue
		}
		last := &composed[len(composed)-1]
		switch {
		case last.IsInsertion() && op.IsInsertion() &&
			last.Position+len(last.Content) == op.Position:
			merged := make(sharedTypes.Snippet, 0, len(last.Content)+len(op.Content))
			merged = append(merged, last.Content...)
			merged = append(merged, op.Content...)
			last.Content = merged
			last.Length = len(merged)
		case last.IsDeletion() && op.IsDeletion() &&
			last.Position == op.Position:
			last.Length += op.Length
			if len(last.Content) != 0 && len(op.Content) != 0 {
				merged := make(sharedTypes.Snippet, 0, len(last.Content)+len(op.Content))
				merged = append(merged, last.Content...)
				merged = append(merged, op.Content...)
				last.Content = merged
			} else {
				last.Content = nil
			}
		default:
			composed = append(composed, op)
		}
	}
	return composed
}
