package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Soypete/streambuddy/types"
	"github.com/google/uuid"
)

type templateRow struct {
	types.ResponseTemplate
	Keywords string `db:"keywords"`
}

func (r templateRow) toTemplate() (types.ResponseTemplate, error) {
	t := r.ResponseTemplate
	if err := json.Unmarshal([]byte(r.Keywords), &t.Keywords); err != nil {
		return t, fmt.Errorf("template %s has malformed keywords: %w", t.ID, err)
	}
	return t, nil
}

const templateColumns = "id, game, keywords, response, priority, position, is_active"

// ActiveTemplates returns the active templates for game, highest priority first.
func (d *DB) ActiveTemplates(ctx context.Context, game types.GameContext) ([]types.ResponseTemplate, error) {
	query := d.connections.Rebind("SELECT " + templateColumns + " FROM response_templates WHERE game = ? AND is_active = ? ORDER BY priority DESC, position ASC")
	return d.selectTemplates(ctx, query, string(game), true)
}

// ListTemplates returns every template, active or not. An empty game lists all games.
func (d *DB) ListTemplates(ctx context.Context, game types.GameContext) ([]types.ResponseTemplate, error) {
	if game == types.NoGame {
		query := "SELECT " + templateColumns + " FROM response_templates ORDER BY game ASC, priority DESC, position ASC"
		return d.selectTemplates(ctx, query)
	}
	query := d.connections.Rebind("SELECT " + templateColumns + " FROM response_templates WHERE game = ? ORDER BY priority DESC, position ASC")
	return d.selectTemplates(ctx, query, string(game))
}

func (d *DB) selectTemplates(ctx context.Context, query string, args ...any) ([]types.ResponseTemplate, error) {
	var rows []templateRow
	if err := d.connections.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting templates: %w", err)
	}

	templates := make([]types.ResponseTemplate, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTemplate()
		if err != nil {
			d.logger.Warn("skipping template", "templateID", r.ID.String(), "error", err.Error())
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// SyncTemplates replaces the whole template table with templates in one transaction.
func (d *DB) SyncTemplates(ctx context.Context, templates []types.ResponseTemplate) error {
	tx, err := d.connections.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM response_templates"); err != nil {
		return fmt.Errorf("error clearing templates: %w", err)
	}

	query := tx.Rebind("INSERT INTO response_templates (" + templateColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	for _, t := range templates {
		keywords, err := json.Marshal(t.Keywords)
		if err != nil {
			return fmt.Errorf("error encoding keywords: %w", err)
		}
		id := t.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.ExecContext(ctx, query, id, string(t.Game), string(keywords), t.Response, t.Priority, t.Position, t.Active); err != nil {
			return fmt.Errorf("error inserting template: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing templates: %w", err)
	}
	d.logger.Info("templates synced", "count", len(templates))
	return nil
}
