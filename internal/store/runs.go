package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flowtap/internal/stream"
)

// RunListItem is one archived run in a listing.
type RunListItem struct {
	RunID      string
	WorkflowID string
	Status     stream.RunStatus
	Err        string
	StartedAt  time.Time
	FinishedAt time.Time
	ArchivedAt time.Time
}

// ArchiveRun persists a finished run's snapshot: run row, block rows, and
// per-channel text. Archiving the same run again replaces its previous rows.
func ArchiveRun(ctx context.Context, db *sql.DB, workflowID string, snap stream.RunSnapshot) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	if snap.RunID == "" {
		return errors.New("store: run ID is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRunTx(ctx, tx, snap.RunID); err != nil {
		return err
	}

	payloads, err := marshalPayloads(snap.Payloads)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, workflow_id, status, error, payloads, started_at, finished_at, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, now())`,
		snap.RunID,
		workflowID,
		string(snap.Status),
		snap.Err,
		payloads,
		nullableTime(snap.StartedAt),
		nullableTime(snap.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, block := range snap.Blocks {
		blockPayloads, err := marshalPayloads(block.Payloads)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_blocks (block_id, run_id, step_id, position, status, error, payloads, started_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			block.BlockID,
			snap.RunID,
			block.StepID,
			position,
			string(block.Status),
			block.Err,
			blockPayloads,
			nullableTime(block.StartedAt),
			nullableTime(block.CompletedAt),
		); err != nil {
			return fmt.Errorf("insert block: %w", err)
		}
		for channelPos, name := range block.ChannelOrder {
			channel := block.Channels[name]
			committed, err := json.Marshal(channel.Committed)
			if err != nil {
				return fmt.Errorf("marshal committed chunks: %w", err)
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO run_channels (block_id, channel, position, committed, live)
				 VALUES (?, ?, ?, ?, ?)`,
				block.BlockID,
				name,
				channelPos,
				string(committed),
				channel.Live,
			); err != nil {
				return fmt.Errorf("insert channel: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	return nil
}

// ListRuns returns archived runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]RunListItem, error) {
	if db == nil {
		return nil, errors.New("store: db is nil")
	}
	rows, err := db.QueryContext(
		ctx,
		`SELECT run_id, workflow_id, status, error, started_at, finished_at, archived_at
		 FROM runs ORDER BY archived_at DESC, run_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var items []RunListItem
	for rows.Next() {
		var item RunListItem
		var status string
		var started, finished sql.NullTime
		if err := rows.Scan(&item.RunID, &item.WorkflowID, &status, &item.Err, &started, &finished, &item.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		item.Status = stream.RunStatus(status)
		item.StartedAt = started.Time
		item.FinishedAt = finished.Time
		items = append(items, item)
	}
	return items, rows.Err()
}

// LoadRun reconstructs an archived run's snapshot.
func LoadRun(ctx context.Context, db *sql.DB, runID string) (stream.RunSnapshot, error) {
	if db == nil {
		return stream.RunSnapshot{}, errors.New("store: db is nil")
	}
	row := db.QueryRowContext(
		ctx,
		`SELECT run_id, status, error, payloads, started_at, finished_at FROM runs WHERE run_id = ?`,
		runID,
	)
	var snap stream.RunSnapshot
	var status, payloads string
	var started, finished sql.NullTime
	if err := row.Scan(&snap.RunID, &status, &snap.Err, &payloads, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stream.RunSnapshot{}, ErrNotFound
		}
		return stream.RunSnapshot{}, fmt.Errorf("load run: %w", err)
	}
	snap.Status = stream.RunStatus(status)
	snap.StartedAt = started.Time
	snap.FinishedAt = finished.Time
	if err := unmarshalPayloads(payloads, &snap.Payloads); err != nil {
		return stream.RunSnapshot{}, err
	}

	blocks, err := loadBlocks(ctx, db, runID)
	if err != nil {
		return stream.RunSnapshot{}, err
	}
	snap.Blocks = blocks
	return snap, nil
}

// ClearHistory deletes every archived run. Workflow definitions stay.
func ClearHistory(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("store: db is nil")
	}
	statements := []string{
		`DELETE FROM run_channels`,
		`DELETE FROM run_blocks`,
		`DELETE FROM runs`,
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
	}
	return nil
}

// loadBlocks reads the block and channel rows of one run in stored order.
func loadBlocks(ctx context.Context, db *sql.DB, runID string) ([]stream.ExecutionBlock, error) {
	rows, err := db.QueryContext(
		ctx,
		`SELECT block_id, step_id, status, error, payloads, started_at, completed_at
		 FROM run_blocks WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	var blocks []stream.ExecutionBlock
	for rows.Next() {
		block := stream.ExecutionBlock{
			RunID:    runID,
			Channels: make(map[string]stream.Channel),
		}
		var status, payloads string
		var started, completed sql.NullTime
		if err := rows.Scan(&block.BlockID, &block.StepID, &status, &block.Err, &payloads, &started, &completed); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		block.Status = stream.BlockStatus(status)
		block.StartedAt = started.Time
		block.CompletedAt = completed.Time
		if err := unmarshalPayloads(payloads, &block.Payloads); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range blocks {
		if err := loadChannels(ctx, db, &blocks[i]); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// loadChannels fills one block's channel map in stored order.
func loadChannels(ctx context.Context, db *sql.DB, block *stream.ExecutionBlock) error {
	rows, err := db.QueryContext(
		ctx,
		`SELECT channel, committed, live FROM run_channels WHERE block_id = ? ORDER BY position`,
		block.BlockID,
	)
	if err != nil {
		return fmt.Errorf("load channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, committed, live string
		if err := rows.Scan(&name, &committed, &live); err != nil {
			return fmt.Errorf("scan channel row: %w", err)
		}
		var chunks []string
		if err := json.Unmarshal([]byte(committed), &chunks); err != nil {
			return fmt.Errorf("decode committed chunks: %w", err)
		}
		block.Channels[name] = stream.Channel{Committed: chunks, Live: live}
		block.ChannelOrder = append(block.ChannelOrder, name)
	}
	return rows.Err()
}

// deleteRunTx removes one run's rows inside a transaction.
func deleteRunTx(ctx context.Context, tx *sql.Tx, runID string) error {
	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM run_channels WHERE block_id IN (SELECT block_id FROM run_blocks WHERE run_id = ?)`,
		runID,
	); err != nil {
		return fmt.Errorf("delete channels: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_blocks WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// marshalPayloads encodes raw payloads as one JSON array string.
func marshalPayloads(payloads []json.RawMessage) (string, error) {
	if len(payloads) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(payloads)
	if err != nil {
		return "", fmt.Errorf("marshal payloads: %w", err)
	}
	return string(data), nil
}

// unmarshalPayloads decodes a stored JSON array string.
func unmarshalPayloads(data string, out *[]json.RawMessage) error {
	if data == "" || data == "[]" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode payloads: %w", err)
	}
	return nil
}

// nullableTime maps a zero time to NULL.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
