package database

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/Soypete/streambuddy/types"
	"github.com/google/uuid"
)

// InsertResponse records that the co-host answered msg. Only the response
// length is stored, not the chat text.
func (d *DB) InsertResponse(ctx context.Context, msg types.IncomingMessage, resp types.Response) error {
	query := d.connections.Rebind(`INSERT INTO bot_responses
		(id, stream_id, sender_id, platform, game, source, response_length, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := d.connections.ExecContext(ctx, query, uuid.New(), msg.StreamID, msg.SenderID, string(msg.Platform),
		string(resp.Game), string(resp.Source), utf8.RuneCountInString(resp.Text), resp.Cost)
	if err != nil {
		return fmt.Errorf("error inserting response: %w", err)
	}
	return nil
}
