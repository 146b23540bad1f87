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

package main

import (
	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/types"
)

func getOptions() *types.Options {
	o := &types.Options{}
	o.FillFromEnv()
	if err := o.Validate(); err != nil {
		panic(errors.Tag(err, "invalid options"))
	}
	return o
}
