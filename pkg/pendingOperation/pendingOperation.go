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

package pendingOperation

import (
	"context"
	"sync"

	"github.com/das7pad/collab-go/pkg/errors"
)

var errOperationStillPending = errors.New("operation is still pending")

type PendingOperation interface {
	Done() <-chan struct{}
	Err() error
	IsPending() bool
	Wait(ctx context.Context) error
}

type pendingOperation struct {
	c   chan struct{}
	err error
	mu  sync.Mutex
}

func (p *pendingOperation) Done() <-chan struct{} {
	return p.c
}

func (p *pendingOperation) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *pendingOperation) IsPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err == errOperationStillPending
}

func (p *pendingOperation) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if !p.IsPending() {
			return p.Err()
		}
		return ctx.Err()
	case <-p.Done():
		return p.Err()
	}
}

func (p *pendingOperation) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	close(p.c)
}

func TrackOperation(fn func() error) PendingOperation {
	p := &pendingOperation{
		c:   make(chan struct{}),
		err: errOperationStillPending,
	}
	go func() {
		p.setErr(fn())
	}()
	return p
}
