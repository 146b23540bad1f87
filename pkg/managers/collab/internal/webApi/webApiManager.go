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

// Package webApi talks to the postgres backing store: credential
// lookup, document access checks and the canonical document snapshot.
// All calls happen outside the per-document critical section.
package webApi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/das7pad/collab-go/pkg/errors"
	"github.com/das7pad/collab-go/pkg/sharedTypes"
)

type Manager interface {
	ValidateCredential(ctx context.Context, token string) (sharedTypes.User, error)
	CheckAccess(ctx context.Context, docId, userId uuid.UUID) error
	LoadDocument(ctx context.Context, docId uuid.UUID) (sharedTypes.Snapshot, sharedTypes.Version, error)
	PersistDocument(ctx context.Context, docId uuid.UUID, content sharedTypes.Snapshot, version sharedTypes.Version) error
	OpenDocument(ctx context.Context, docId, userId uuid.UUID) (sharedTypes.Snapshot, sharedTypes.Version, error)
}

func New(db *pgxpool.Pool, authCacheSize int) (Manager, error) {
	cache, err := lru.New[string, sharedTypes.User](authCacheSize)
	if err != nil {
		return nil, errors.Tag(err, "create auth cache")
	}
	return &manager{db: db, authCache: cache}, nil
}

type manager struct {
	db *pgxpool.Pool

	// Keyed by token digest. Tokens are opaque bearer secrets issued by
	// the accounts service; only their sha256 digest is stored.
	authCache *lru.Cache[string, sharedTypes.User]
}

func (m *manager) ValidateCredential(ctx context.Context, token string) (sharedTypes.User, error) {
	if token == "" {
		return sharedTypes.User{}, &errors.UnauthorizedError{
			Reason: "missing token",
		}
	}
	raw := sha256.Sum256([]byte(token))
	digest := hex.EncodeToString(raw[:])
	if user, ok := m.authCache.Get(digest); ok {
		return user, nil
	}
	user := sharedTypes.User{}
	err := m.db.QueryRow(ctx, `
SELECT u.id, u.display_name
FROM auth_tokens t
         INNER JOIN users u ON u.id = t.user_id
WHERE t.digest = $1
  AND (t.expires_at IS NULL OR t.expires_at > now())
`, digest).Scan(&user.Id, &user.DisplayName)
	if err == pgx.ErrNoRows {
		return sharedTypes.User{}, &errors.UnauthorizedError{
			Reason: "token is invalid or expired",
		}
	}
	if err != nil {
		return sharedTypes.User{}, errors.Tag(err, "lookup token")
	}
	m.authCache.Add(digest, user)
	return user, nil
}

func (m *manager) CheckAccess(ctx context.Context, docId, userId uuid.UUID) error {
	var isPublic, isOwner, isCollaborator bool
	err := m.db.QueryRow(ctx, `
SELECT d.is_public,
       d.owner_id = $2,
       EXISTS(SELECT 1
              FROM document_collaborators c
              WHERE c.document_id = d.id
                AND c.user_id = $2)
FROM documents d
WHERE d.id = $1
`, docId, userId).Scan(&isPublic, &isOwner, &isCollaborator)
	if err == pgx.ErrNoRows {
		return &errors.NotFoundError{}
	}
	if err != nil {
		return errors.Tag(err, "check doc access")
	}
	if !isPublic && !isOwner && !isCollaborator {
		return &errors.NotAuthorizedError{}
	}
	if isCollaborator {
		go m.touchCollaborator(docId, userId)
	}
	return nil
}

// touchCollaborator refreshes the access audit trail. Failures only
// cost audit precision.
func (m *manager) touchCollaborator(docId, userId uuid.UUID) {
	ctx := context.Background()
	_, _ = m.db.Exec(ctx, `
UPDATE document_collaborators
SET last_seen = now()
WHERE document_id = $1
  AND user_id = $2
`, docId, userId)
}

func (m *manager) LoadDocument(ctx context.Context, docId uuid.UUID) (sharedTypes.Snapshot, sharedTypes.Version, error) {
	var content string
	var version sharedTypes.Version
	err := m.db.QueryRow(ctx, `
SELECT content, version
FROM documents
WHERE id = $1
`, docId).Scan(&content, &version)
	if err == pgx.ErrNoRows {
		return nil, 0, &errors.NotFoundError{}
	}
	if err != nil {
		return nil, 0, errors.Tag(err, "load doc")
	}
	snapshot := sharedTypes.Snapshot(content)
	if err = snapshot.Validate(); err != nil {
		return nil, 0, errors.Tag(err, "stored doc is invalid")
	}
	return snapshot, version, nil
}

// PersistDocument writes the snapshot back, guarded against racing a
// newer flush from another instance.
func (m *manager) PersistDocument(ctx context.Context, docId uuid.UUID, content sharedTypes.Snapshot, version sharedTypes.Version) error {
	_, err := m.db.Exec(ctx, `
UPDATE documents
SET content    = $2,
    version    = $3,
    updated_at = now()
WHERE id = $1
  AND version <= $3
`, docId, string(content), version)
	if err != nil {
		return errors.Tag(err, "persist doc")
	}
	return nil
}

// OpenDocument fans the access check and the snapshot load out in
// parallel; access errors take precedence over load errors.
func (m *manager) OpenDocument(ctx context.Context, docId, userId uuid.UUID) (sharedTypes.Snapshot, sharedTypes.Version, error) {
	var content sharedTypes.Snapshot
	var version sharedTypes.Version
	eg, pCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return m.CheckAccess(pCtx, docId, userId)
	})
	eg.Go(func() error {
		var err error
		content, version, err = m.LoadDocument(pCtx, docId)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	return content, version, nil
}
