// Package keychain persists oauth credentials and the authentication
// status between runs. All secrets live in a local sqlite database.
package keychain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/davideneu/hattrick-matchview/lib/scrapers/chpp"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const (
	nameConsumerKey       = "consumer_key"
	nameConsumerSecret    = "consumer_secret"
	nameAccessToken       = "access_token"
	nameAccessTokenSecret = "access_token_secret"
)

// Auth status values as stored in auth_state.
const (
	StatusUnauthenticated = "unauthenticated"
	StatusAuthenticated   = "authenticated"
	StatusFailed          = "failed"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the keychain database at path and
// applies the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, fmt.Errorf("open keychain db: %w", err)
	}
	_, err = database.Exec(schema)
	if err != nil {
		database.Close()
		return Store{}, fmt.Errorf("apply keychain schema: %w", err)
	}
	return Store{db: database}, nil
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Credentials reads whatever credential fields have been persisted.
// Missing fields come back empty, callers use Complete() to decide
// whether the set is usable.
func (s Store) Credentials(ctx context.Context) (chpp.Credentials, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM credentials`)
	if err != nil {
		return chpp.Credentials{}, err
	}
	defer rows.Close()

	var creds chpp.Credentials
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return chpp.Credentials{}, err
		}
		switch name {
		case nameConsumerKey:
			creds.ConsumerKey = value
		case nameConsumerSecret:
			creds.ConsumerSecret = value
		case nameAccessToken:
			creds.AccessToken = value
		case nameAccessTokenSecret:
			creds.AccessTokenSecret = value
		}
	}
	return creds, rows.Err()
}

// SetCredentials writes the full credential set in one transaction so
// a crash can never leave a partial handshake persisted.
func (s Store) SetCredentials(ctx context.Context, creds chpp.Credentials) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := map[string]string{
		nameConsumerKey:       creds.ConsumerKey,
		nameConsumerSecret:    creds.ConsumerSecret,
		nameAccessToken:       creds.AccessToken,
		nameAccessTokenSecret: creds.AccessTokenSecret,
	}
	for name, value := range pairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (name, value) VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET value = excluded.value
		`, name, value)
		if err != nil {
			return err
		}
	}

	status := StatusUnauthenticated
	if creds.Complete() {
		status = StatusAuthenticated
	}
	if err := setStatusTx(ctx, tx, status, ""); err != nil {
		return err
	}
	return tx.Commit()
}

// SetStatus records the authentication status and, for failures, the
// message of the error that caused it.
func (s Store) SetStatus(ctx context.Context, status, lastError string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := setStatusTx(ctx, tx, status, lastError); err != nil {
		return err
	}
	return tx.Commit()
}

func setStatusTx(ctx context.Context, tx *sql.Tx, status, lastError string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO auth_state (id, status, last_error, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, status, lastError, time.Now().Unix())
	return err
}

// Status returns the recorded status and last error message,
// defaulting to unauthenticated when nothing was ever stored.
func (s Store) Status(ctx context.Context) (string, string, error) {
	var status, lastError string
	err := s.db.QueryRowContext(ctx,
		`SELECT status, last_error FROM auth_state WHERE id = 1`,
	).Scan(&status, &lastError)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusUnauthenticated, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return status, lastError, nil
}

// Clear wipes every stored secret and resets the status.
func (s Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return err
	}
	if err := setStatusTx(ctx, tx, StatusUnauthenticated, ""); err != nil {
		return err
	}
	return tx.Commit()
}
