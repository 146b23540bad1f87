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

// Package oplog holds the per-document, append-only record of accepted
// operations, indexed by server version. Only the document hub appends;
// readers may run concurrently.
package oplog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

// ErrVersionTruncated flags a base version older than the retained
// window. The client must resync from a fresh snapshot.
var ErrVersionTruncated = &errors.CodedError{
	Msg:  "base version outside retention window",
	Code: "resync_required",
}

var ErrFutureVersion = &errors.ValidationError{
	Msg: "base version is ahead of the document",
}

// Entry is immutable after append.
type Entry struct {
	Op         sharedTypes.Operation `json:"op"`
	UserId     uuid.UUID             `json:"user_id"`
	Version    sharedTypes.Version   `json:"v"`
	AcceptedAt time.Time             `json:"ts"`
}

type Log struct {
	mu        sync.RWMutex
	entries   []Entry
	start     int
	base      sharedTypes.Version
	retention int
}

// New creates a log for a document loaded at base. The retained window
// covers at most retention entries.
func New(base sharedTypes.Version, retention int) *Log {
	if retention < 1 {
		retention = 1
	}
	return &Log{
		base:      base,
		retention: retention,
	}
}

// Version returns the version of the last appended entry, or the load
// baseline for an empty log.
func (l *Log) Version() sharedTypes.Version {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.versionLocked()
}

func (l *Log) versionLocked() sharedTypes.Version {
	return l.base + sharedTypes.Version(len(l.entries)-l.start)
}

// Length returns the number of retained entries.
func (l *Log) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries) - l.start
}

// Append assigns the next server version to op and records it.
func (l *Log) Append(op sharedTypes.Operation, userId uuid.UUID, at time.Time) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{
		Op:         op,
		UserId:     userId,
		Version:    l.versionLocked() + 1,
		AcceptedAt: at,
	}
	if len(l.entries)-l.start >= l.retention {
		l.start++
		l.base++
	}
	if l.start > l.retention/2 && l.start > 64 {
		compacted := make([]Entry, len(l.entries)-l.start, l.retention)
		copy(compacted, l.entries[l.start:])
		l.entries = compacted
		l.start = 0
	}
	l.entries = append(l.entries, e)
	return e
}

// Tail returns every retained entry in version order.
func (l *Log) Tail() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tail := make([]Entry, len(l.entries)-l.start)
	copy(tail, l.entries[l.start:])
	return tail
}

// TailSince returns the entries with version > v in version order. The
// slice is a snapshot; entries are immutable.
func (l *Log) TailSince(v sharedTypes.Version) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	current := l.versionLocked()
	if v > current {
		return nil, ErrFutureVersion
	}
	if v < l.base {
		return nil, ErrVersionTruncated
	}
	n := int(current - v)
	if n == 0 {
		return nil, nil
	}
	tail := make([]Entry, n)
	copy(tail, l.entries[len(l.entries)-n:])
	return tail, nil
}
