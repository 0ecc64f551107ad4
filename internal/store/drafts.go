// Package store persists wizard draft snapshots and staged-file metadata
// in Postgres so a session survives step navigation and service restarts.
// The persisted form is lossy: file binaries are never stored, only their
// metadata and any hosted URL.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"estate-listing-backend/internal/uploads"
)

type DraftStore struct {
	db *sql.DB
}

func NewDraftStore(connectionString string) (*DraftStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DraftStore{db: db}, nil
}

// Snapshot is the persisted form of one wizard session.
type Snapshot struct {
	DraftID uuid.UUID
	UserID  uuid.UUID
	Step    int
	Draft   json.RawMessage
	Files   []uploads.StagedFileMeta
}

// SaveSnapshot upserts the draft row and replaces its staged-file rows in
// one transaction.
func (s *DraftStore) SaveSnapshot(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO wizard_drafts (id, user_id, step, draft, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET step = $3, draft = $4, updated_at = NOW()
	`, snap.DraftID, snap.UserID, snap.Step, snap.Draft)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save draft: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM staged_files WHERE draft_id = $1`, snap.DraftID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear staged files: %w", err)
	}

	for _, f := range snap.Files {
		_, err := tx.Exec(`
			INSERT INTO staged_files (id, draft_id, category, filename, byte_size, mime_type, server_url, status, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, f.ID, snap.DraftID, string(f.Category), f.DisplayName, f.ByteSize,
			f.MimeType, nullable(f.ServerURI), string(f.Status), f.Position)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save staged file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores one session's persisted state.
func (s *DraftStore) LoadSnapshot(draftID, userID uuid.UUID) (*Snapshot, error) {
	snap := Snapshot{DraftID: draftID, UserID: userID}
	err := s.db.QueryRow(`
		SELECT step, draft
		FROM wizard_drafts
		WHERE id = $1 AND user_id = $2
	`, draftID, userID).Scan(&snap.Step, &snap.Draft)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, category, filename, byte_size, mime_type, server_url, status, position
		FROM staged_files
		WHERE draft_id = $1
		ORDER BY category, position
	`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f uploads.StagedFileMeta
		var category, status string
		var serverURL sql.NullString
		err := rows.Scan(&f.ID, &category, &f.DisplayName, &f.ByteSize,
			&f.MimeType, &serverURL, &status, &f.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staged file: %w", err)
		}
		f.Category = uploads.Category(category)
		f.Status = uploads.Status(status)
		f.ServerURI = serverURL.String
		snap.Files = append(snap.Files, f)
	}

	return &snap, nil
}

// DeleteSnapshot drops a session's persisted state after publish or
// explicit discard. Staged-file rows cascade.
func (s *DraftStore) DeleteSnapshot(draftID, userID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM wizard_drafts
		WHERE id = $1 AND user_id = $2
	`, draftID, userID)
	return err
}

func (s *DraftStore) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
