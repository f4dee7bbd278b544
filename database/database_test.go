package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &DB{connections: sqlx.NewDb(db, "postgres"), logger: logging.Discard()}, mock
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn     string
		driver  string
		dialect string
		source  string
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost/db", driver: "postgres", dialect: "postgres", source: "postgres://u:p@localhost/db"},
		{dsn: "postgresql://localhost/db", driver: "postgres", dialect: "postgres", source: "postgresql://localhost/db"},
		{dsn: "sqlite://streambuddy.db", driver: "sqlite", dialect: "sqlite3", source: "streambuddy.db"},
		{dsn: "file:test.db?cache=shared", driver: "sqlite", dialect: "sqlite3", source: "file:test.db?cache=shared"},
		{dsn: "mysql://localhost", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, dialect, source, err := driverFor(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dialect, dialect)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestActiveTemplates(t *testing.T) {
	d, mock := newMockDB(t)
	id := uuid.New()
	bad := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "game", "keywords", "response", "priority", "position", "is_active"}).
		AddRow(id.String(), "mobile_legends", `["build","item"]`, "Build {hero}", 10, 0, true).
		AddRow(bad.String(), "mobile_legends", `not json`, "broken", 5, 1, true)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, game, keywords, response, priority, position, is_active FROM response_templates WHERE game = $1 AND is_active = $2 ORDER BY priority DESC, position ASC")).
		WithArgs("mobile_legends", true).
		WillReturnRows(rows)

	got, err := d.ActiveTemplates(context.Background(), "mobile_legends")
	require.NoError(t, err)
	assert.Equal(t, []types.ResponseTemplate{{
		ID:       id,
		Game:     "mobile_legends",
		Keywords: []string{"build", "item"},
		Response: "Build {hero}",
		Priority: 10,
		Position: 0,
		Active:   true,
	}}, got, "malformed rows are skipped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveTemplates_Error(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .* FROM response_templates").WillReturnError(errors.New("connection reset"))

	_, err := d.ActiveTemplates(context.Background(), "valorant")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTemplates_AllGames(t *testing.T) {
	d, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{"id", "game", "keywords", "response", "priority", "position", "is_active"}).
		AddRow(uuid.New().String(), "general", `["jadwal"]`, "malam", 1, 0, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM response_templates ORDER BY game ASC")).WillReturnRows(rows)

	got, err := d.ListTemplates(context.Background(), types.NoGame)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTemplates(t *testing.T) {
	d, mock := newMockDB(t)
	id := uuid.New()
	templates := []types.ResponseTemplate{
		{ID: id, Game: "valorant", Keywords: []string{"crosshair"}, Response: "cyan", Priority: 8, Position: 0, Active: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM response_templates").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO response_templates (id, game, keywords, response, priority, position, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7)")).
		WithArgs(id, "valorant", `["crosshair"]`, "cyan", 8, 0, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, d.SyncTemplates(context.Background(), templates))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTemplates_RollsBack(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM response_templates").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO response_templates").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := d.SyncTemplates(context.Background(), []types.ResponseTemplate{{Game: "x", Keywords: []string{"a"}, Response: "b"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSnapshots(t *testing.T) {
	d, mock := newMockDB(t)
	at := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
	snaps := []types.Snapshot{
		{StreamID: "a", TotalMessages: 5, TotalMentions: 5, TotalResponses: 3, FallbackResponses: 1, UniqueViewers: 3, CapturedAt: at},
		{StreamID: "b", CapturedAt: at},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO stream_snapshots").
		WithArgs(sqlmock.AnyArg(), "a", 5, 5, 3, 1, 3, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO stream_snapshots").
		WithArgs(sqlmock.AnyArg(), "b", 0, 0, 0, 0, 0, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, d.InsertSnapshots(context.Background(), snaps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSnapshots_Empty(t *testing.T) {
	d, mock := newMockDB(t)
	require.NoError(t, d.InsertSnapshots(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreamSnapshots(t *testing.T) {
	d, mock := newMockDB(t)
	at := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"stream_id", "total_messages", "total_mentions", "total_responses", "fallback_responses", "unique_viewers", "captured_at"}).
		AddRow("a", 5, 4, 3, 1, 2, at)
	mock.ExpectQuery("FROM stream_snapshots WHERE stream_id = \\$1 ORDER BY captured_at DESC LIMIT \\$2").
		WithArgs("a", 10).
		WillReturnRows(rows)

	got, err := d.StreamSnapshots(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Equal(t, []types.Snapshot{{StreamID: "a", TotalMessages: 5, TotalMentions: 4, TotalResponses: 3, FallbackResponses: 1, UniqueViewers: 2, CapturedAt: at}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertResponse(t *testing.T) {
	d, mock := newMockDB(t)
	msg := types.IncomingMessage{StreamID: "soypete", SenderID: "42", Platform: types.PlatformTwitch}
	resp := types.Response{Text: "Gas!", Source: types.SourceFallback, Game: "valorant", Cost: 0.0002}

	mock.ExpectExec("INSERT INTO bot_responses").
		WithArgs(sqlmock.AnyArg(), "soypete", "42", "twitch", "valorant", "fallback", 4, 0.0002).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, d.InsertResponse(context.Background(), msg, resp))
	assert.NoError(t, mock.ExpectationsWereMet())
}
