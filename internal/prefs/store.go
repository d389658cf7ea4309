package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/db"
)

// Pref is a stored color-mode choice.
type Pref struct {
	ClientID  string    `json:"client_id"`
	Mode      string    `json:"mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists color-mode choices per client.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the stored preference for clientID; ok is false when the
// client has none.
func (s *Store) Get(ctx context.Context, clientID string) (Pref, bool, error) {
	var p Pref
	err := s.db.QueryRowContext(ctx, `
		SELECT client_id, mode, updated_at FROM color_mode_prefs WHERE client_id = ?`, clientID,
	).Scan(&p.ClientID, &p.Mode, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Pref{}, false, nil
	}
	if err != nil {
		return Pref{}, false, fmt.Errorf("reading color mode for %s: %w", clientID, err)
	}
	return p, true, nil
}

// Set stores mode for clientID, replacing any previous choice.
func (s *Store) Set(ctx context.Context, clientID, mode string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO color_mode_prefs (client_id, mode, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET mode = excluded.mode, updated_at = excluded.updated_at`,
		clientID, mode, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing color mode for %s: %w", clientID, err)
	}
	return nil
}

// Delete forgets the choice of clientID. Deleting a missing client is not an
// error.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM color_mode_prefs WHERE client_id = ?`, clientID); err != nil {
		return fmt.Errorf("deleting color mode for %s: %w", clientID, err)
	}
	return nil
}

// ForClient binds the store to one client for use by a colormode.Controller.
func (s *Store) ForClient(clientID string) colormode.ModeStore {
	return clientStore{store: s, id: clientID}
}

type clientStore struct {
	store *Store
	id    string
}

func (c clientStore) StoredMode(ctx context.Context) (string, bool, error) {
	p, ok, err := c.store.Get(ctx, c.id)
	return p.Mode, ok, err
}

func (c clientStore) StoreMode(ctx context.Context, value string) error {
	return c.store.Set(ctx, c.id, value)
}
