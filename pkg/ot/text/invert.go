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

// Invert returns the operation undoing op. Deletes must carry the
// removed text; the hub captures it at apply time before logging.
func Invert(op sharedTypes.Operation) sharedTypes.Operation {
	op.Normalize()
	switch op.Kind {
	case sharedTypes.OpInsert:
		return sharedTypes.Operation{
			Kind:     sharedTypes.OpDelete,
			Position: op.Position,
			Content:  op.Content,
			Length:   len(op.Content),
		}
	case sharedTypes.OpDelete:
		return sharedTypes.Operation{
			Kind:     sharedTypes.OpInsert,
			Position: op.Position,
			Content:  op.Content,
			Length:   len(op.Content),
		}
	default:
		return op
	}
}
