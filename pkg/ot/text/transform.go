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

// Package text implements the operational-transform algebra over
// single-component insert/delete/retain operations. All functions are
// pure and deterministic; offsets are Unicode code points.
package text

import (
	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

// Transform reconciles two concurrent operations based on the same
// document state. It returns (a', b') such that applying a then b'
// yields the same text as applying b then a'. Ties between concurrent
// inserts at the same position break in favor of a: a keeps the prefix
// and shifts b rightward.
func Transform(a, b sharedTypes.Operation) (sharedTypes.Operation, sharedTypes.Operation) {
	a.Normalize()
	b.Normalize()
	switch {
	case a.IsInsertion() && b.IsInsertion():
		return transformInsertInsert(a, b)
	case a.IsDeletion() && b.IsDeletion():
		return transformDeleteDelete(a, b)
	case a.IsInsertion() && b.IsDeletion():
		return transformInsertDelete(a, b)
	case a.IsDeletion() && b.IsInsertion():
		bT, aT := transformInsertDelete(b, a)
		return aT, bT
	default:
		// Retain pairs and unknown combinations pass through unchanged.
		return a, b
	}
}

// TransformOne rebases op over one already accepted operation. This is
// the fold step for replaying an op across a log tail; pending clients
// transform the broadcast with the mirrored argument order, keeping
// both sides on the same branch of the tie break.
func TransformOne(op, against sharedTypes.Operation) sharedTypes.Operation {
	op, _ = Transform(op, against)
	return op
}

func transformInsertInsert(a, b sharedTypes.Operation) (sharedTypes.Operation, sharedTypes.Operation) {
	if a.Position <= b.Position {
		b.Position += len(a.Content)
	} else {
		a.Position += len(b.Content)
	}
	return a, b
}

func transformDeleteDelete(a, b sharedTypes.Operation) (sharedTypes.Operation, sharedTypes.Operation) {
	aEnd := a.DeleteEnd()
	bEnd := b.DeleteEnd()
	switch {
	case aEnd <= b.Position:
		b.Position -= a.Length
	case bEnd <= a.Position:
		a.Position -= b.Length
	default:
		// Overlap: each side keeps only the span the other has not
		// already removed.
		overlap := max(0, min(aEnd, bEnd)-max(a.Position, b.Position))
		switch {
		case a.Position == b.Position:
			// The common span is gone either way; each side keeps its
			// remainder beyond the shorter delete.
			a.Length -= overlap
			b.Length -= overlap
		case a.Position < b.Position:
			a.Length = b.Position - a.Position
			b.Position = a.Position
			b.Length = max(0, b.Length-overlap)
		default:
			b.Length = a.Position - b.Position
			a.Position = b.Position
			a.Length = max(0, a.Length-overlap)
		}
		// Any captured text no longer matches the new spans.
		a.Content = nil
		b.Content = nil
	}
	return a, b
}

func transformInsertDelete(i, d sharedTypes.Operation) (sharedTypes.Operation, sharedTypes.Operation) {
	switch {
	case i.Position <= d.Position:
		d.Position += len(i.Content)
	case i.Position >= d.DeleteEnd():
		i.Position -= d.Length
	default:
		// Insert lands inside the deleted span: the insertion is
		// preserved and the delete grows to subsume it on replay in the
		// other ordering.
		i.Position = d.Position
		d.Length += len(i.Content)
		d.Content = nil
	}
	return i, d
}
