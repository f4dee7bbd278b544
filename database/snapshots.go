package database

import (
	"context"
	"fmt"

	"github.com/Soypete/streambuddy/types"
	"github.com/google/uuid"
)

// InsertSnapshots writes one flush worth of analytics snapshots in a single transaction.
func (d *DB) InsertSnapshots(ctx context.Context, snapshots []types.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	tx, err := d.connections.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(`INSERT INTO stream_snapshots
		(id, stream_id, total_messages, total_mentions, total_responses, fallback_responses, unique_viewers, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, s := range snapshots {
		_, err := tx.ExecContext(ctx, query, uuid.New(), s.StreamID, s.TotalMessages, s.TotalMentions,
			s.TotalResponses, s.FallbackResponses, s.UniqueViewers, s.CapturedAt)
		if err != nil {
			return fmt.Errorf("error inserting snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshots: %w", err)
	}
	return nil
}

// StreamSnapshots returns the most recent snapshots for a stream, newest first.
func (d *DB) StreamSnapshots(ctx context.Context, streamID string, limit int) ([]types.Snapshot, error) {
	query := d.connections.Rebind(`SELECT stream_id, total_messages, total_mentions, total_responses, fallback_responses, unique_viewers, captured_at
		FROM stream_snapshots WHERE stream_id = ? ORDER BY captured_at DESC LIMIT ?`)
	var snapshots []types.Snapshot
	if err := d.connections.SelectContext(ctx, &snapshots, query, streamID, limit); err != nil {
		return nil, fmt.Errorf("error selecting snapshots: %w", err)
	}
	return snapshots, nil
}
