package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession records a session opened for email under kind ("patient" or
// "doctor").
func (s *Store) CreateSession(ctx context.Context, id, email, kind string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, email, kind, expires_at) VALUES ($1,$2,$3,$4)`,
		id, email, kind, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionActive reports whether the session exists and has not been revoked,
// along with the kind it was opened for. Expiry is carried by the signed
// token itself.
func (s *Store) SessionActive(ctx context.Context, id string) (string, bool, error) {
	var (
		kind    string
		revoked bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, revoked FROM sessions WHERE id = $1`, id,
	).Scan(&kind, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session active: %w", err)
	}
	return kind, !revoked, nil
}

func (s *Store) RevokeSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked = TRUE WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeSessions deletes sessions that expired before now, returning how many
// were removed.
func (s *Store) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
