package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
)

// StatementStore persists the canonical statement as JSON under a named
// slot. Session-scoped convenience storage, not a durability guarantee.
type StatementStore struct {
	db *sql.DB
}

func NewStatementStore(db *sql.DB) *StatementStore {
	return &StatementStore{db: db}
}

// Save serializes the statement into the slot, replacing any prior payload.
func (s *StatementStore) Save(slot string, statement *models.Statement) error {
	payload, err := json.Marshal(statement)
	if err != nil {
		return fmt.Errorf("failed to serialize statement: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO statement_slots (slot, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		slot, string(payload))
	if err != nil {
		return fmt.Errorf("failed to persist statement slot %q: %w", slot, err)
	}
	return nil
}

// Load reads the statement stored under the slot. A payload that fails to
// parse is discarded (state reverts to empty), never surfaced as an error:
// a stale or corrupt slot must not break the caller.
func (s *StatementStore) Load(slot string) (*models.Statement, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM statement_slots WHERE slot = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statement slot %q: %w", slot, err)
	}

	var statement models.Statement
	if err := json.Unmarshal([]byte(payload), &statement); err != nil {
		logger.L.Warn("Discarding unparseable statement payload", "slot", slot, "error", err)
		s.Clear(slot)
		return nil, nil
	}
	return &statement, nil
}

// Clear drops the slot's payload.
func (s *StatementStore) Clear(slot string) {
	if _, err := s.db.Exec(`DELETE FROM statement_slots WHERE slot = ?`, slot); err != nil {
		logger.L.Warn("Failed to clear statement slot", "slot", slot, "error", err)
	}
}
