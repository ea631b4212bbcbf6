package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feudhq/feud/internal/game"
)

// Postgres persists sessions as one JSONB document per code, mirroring the
// single-document-per-session model. A version column provides the optimistic
// concurrency token checked on every overwrite.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a pgx pool as a session store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ game.Store = (*Postgres)(nil)

// Get loads a session by code. Codes are case-insensitive.
func (p *Postgres) Get(ctx context.Context, code string) (*game.Session, error) {
	const query = `SELECT doc, version FROM sessions WHERE code = $1`

	var (
		doc     []byte
		version int64
	)
	err := p.pool.QueryRow(ctx, query, normalizeCode(code)).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess game.Session
	if err := json.Unmarshal(doc, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	sess.Version = version
	return &sess, nil
}

// Put overwrites the session document. A zero version inserts (replacing any
// expired leftover under a recycled code); otherwise the stored version must
// match or ErrVersionConflict is returned. On success the session's Version
// is bumped to the stored value.
func (p *Postgres) Put(ctx context.Context, s *game.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	code := normalizeCode(s.Code)

	if s.Version == 0 {
		const insert = `
			INSERT INTO sessions (code, doc, version, created_at, expires_at)
			VALUES ($1, $2, 1, $3, $4)
			ON CONFLICT (code) DO UPDATE
			SET doc = EXCLUDED.doc, version = 1,
			    created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`
		if _, err := p.pool.Exec(ctx, insert, code, doc, s.CreatedAt, s.ExpiresAt); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		s.Version = 1
		return nil
	}

	const update = `
		UPDATE sessions
		SET doc = $2, version = version + 1, expires_at = $3
		WHERE code = $1 AND version = $4
		RETURNING version`
	var newVersion int64
	err = p.pool.QueryRow(ctx, update, code, doc, s.ExpiresAt, s.Version).Scan(&newVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	s.Version = newVersion
	return nil
}

// Delete removes a session by code.
func (p *Postgres) Delete(ctx context.Context, code string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE code = $1`, normalizeCode(code)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListExpired returns sessions whose TTL elapsed before now.
func (p *Postgres) ListExpired(ctx context.Context, now time.Time) ([]*game.Session, error) {
	rows, err := p.pool.Query(ctx, `SELECT doc, version FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	defer rows.Close()

	var sessions []*game.Session
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		var sess game.Session
		if err := json.Unmarshal(doc, &sess); err != nil {
			return nil, fmt.Errorf("unmarshal expired session: %w", err)
		}
		sess.Version = version
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
