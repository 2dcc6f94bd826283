package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowtap/internal/workflow"
)

// ErrNotFound marks a lookup that matched no record.
var ErrNotFound = errors.New("store: record not found")

// WorkflowRecord is one stored workflow definition with metadata.
type WorkflowRecord struct {
	ID          string
	Name        string
	Description string
	Definition  workflow.Definition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkflowListItem is the definition-free listing row.
type WorkflowListItem struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaveWorkflow inserts a workflow or updates it in place by ID.
func SaveWorkflow(ctx context.Context, db *sql.DB, rec WorkflowRecord) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	if rec.ID == "" {
		return errors.New("store: workflow ID is required")
	}
	definition, err := json.Marshal(rec.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	if _, err := db.ExecContext(
		ctx,
		`INSERT INTO workflows (workflow_id, name, description, definition, created_at, updated_at)
		 VALUES (?, ?, ?, ?, now(), now())
		 ON CONFLICT (workflow_id) DO UPDATE SET
		     name = excluded.name,
		     description = excluded.description,
		     definition = excluded.definition,
		     updated_at = now()`,
		rec.ID,
		rec.Name,
		rec.Description,
		string(definition),
	); err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}
	return nil
}

// GetWorkflow loads one workflow with its full definition.
func GetWorkflow(ctx context.Context, db *sql.DB, id string) (WorkflowRecord, error) {
	if db == nil {
		return WorkflowRecord{}, errors.New("store: db is nil")
	}
	row := db.QueryRowContext(
		ctx,
		`SELECT workflow_id, name, description, definition, created_at, updated_at
		 FROM workflows WHERE workflow_id = ?`,
		id,
	)
	var rec WorkflowRecord
	var definition string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &definition, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WorkflowRecord{}, ErrNotFound
		}
		return WorkflowRecord{}, fmt.Errorf("get workflow: %w", err)
	}
	if err := json.Unmarshal([]byte(definition), &rec.Definition); err != nil {
		return WorkflowRecord{}, fmt.Errorf("decode stored definition: %w", err)
	}
	return rec, nil
}

// ListWorkflows returns listing rows ordered by last update, newest first.
// The full definition stays out of the listing.
func ListWorkflows(ctx context.Context, db *sql.DB) ([]WorkflowListItem, error) {
	if db == nil {
		return nil, errors.New("store: db is nil")
	}
	rows, err := db.QueryContext(
		ctx,
		`SELECT workflow_id, name, description, created_at, updated_at
		 FROM workflows ORDER BY updated_at DESC, workflow_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var items []WorkflowListItem
	for rows.Next() {
		var item WorkflowListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteWorkflow removes one workflow. Deleting a missing workflow is an
// ErrNotFound, so callers can report it.
func DeleteWorkflow(ctx context.Context, db *sql.DB, id string) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	result, err := db.ExecContext(ctx, `DELETE FROM workflows WHERE workflow_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DuplicateWorkflow copies a workflow under a fresh ID and a "Copy of" name,
// returning the new record.
func DuplicateWorkflow(ctx context.Context, db *sql.DB, id string) (WorkflowRecord, error) {
	original, err := GetWorkflow(ctx, db, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	duplicate := original
	duplicate.ID = uuid.NewString()
	duplicate.Name = "Copy of " + original.Name
	duplicate.Definition.ID = duplicate.ID
	duplicate.Definition.Name = duplicate.Name
	if err := SaveWorkflow(ctx, db, duplicate); err != nil {
		return WorkflowRecord{}, err
	}
	return GetWorkflow(ctx, db, duplicate.ID)
}
