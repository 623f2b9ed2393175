package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CreateRun inserts a new run and returns its UUIDv7 id.
func (s *Store) CreateRun(ctx context.Context, label string, strs []string, configJSON string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	stringsJSON, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	if configJSON == "" {
		configJSON = "{}"
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, label, strings, config)
		VALUES (?, ?, ?, ?)
	`, id.String(), label, string(stringsJSON), configJSON)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	return id.String(), nil
}

// WriteTransition appends a transition to a run.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting the same seq is
// silently ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteTransition(ctx context.Context, runID string, rec TransitionRecord) error {
	paused := 0
	if rec.Paused {
		paused = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transitions
		(run_id, seq, at_ms, kind, phase, string_index, typed_length, iteration, text, paused, warning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		rec.Seq,
		rec.AtMS,
		rec.Kind,
		rec.Phase,
		rec.StringIndex,
		rec.TypedLength,
		rec.Iteration,
		rec.Text,
		paused,
		rec.Warning,
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}

	return nil
}

// WriteTransitions appends many transitions in one SQL transaction.
func (s *Store) WriteTransitions(ctx context.Context, runID string, recs []TransitionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write transitions: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transitions
		(run_id, seq, at_ms, kind, phase, string_index, typed_length, iteration, text, paused, warning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write transitions: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		paused := 0
		if rec.Paused {
			paused = 1
		}
		if _, err := stmt.ExecContext(ctx,
			runID, rec.Seq, rec.AtMS, rec.Kind, rec.Phase, rec.StringIndex,
			rec.TypedLength, rec.Iteration, rec.Text, paused, rec.Warning,
		); err != nil {
			return fmt.Errorf("write transitions: seq %d: %w", rec.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write transitions: %w", err)
	}
	return nil
}
