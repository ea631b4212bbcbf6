package game

import (
	"context"
	"time"
)

// Store persists one session document per code. Lookups are case-insensitive;
// implementations normalize codes to uppercase. Put performs a full overwrite
// of the document and returns ErrVersionConflict when the session's Version
// no longer matches the stored one.
type Store interface {
	Get(ctx context.Context, code string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, code string) error
	ListExpired(ctx context.Context, now time.Time) ([]*Session, error)
}
