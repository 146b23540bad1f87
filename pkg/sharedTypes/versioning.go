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
	"strconv"
)

// Version is the server-assigned, per-document operation sequence
// number. It increases by exactly one per accepted operation.
type Version int64

// NoVersion marks an absent client_version on the wire.
const NoVersion = Version(-1)

func (v Version) Equals(other Version) bool {
	return v == other
}

func (v Version) String() string {
	return strconv.FormatInt(int64(v), 10)
}
