package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beratbay/broadcast-engage/internal/domain"
)

type BroadcastRepo struct {
	db *sqlx.DB
}

func NewBroadcastRepo(db *sqlx.DB) *BroadcastRepo {
	return &BroadcastRepo{db: db}
}

type broadcastRow struct {
	ID               uuid.UUID       `db:"id"`
	Partition        string          `db:"partition"`
	Title            string          `db:"title"`
	ChannelID        *string         `db:"channel_id"`
	AllUsers         bool            `db:"all_users"`
	TeamIDs          json.RawMessage `db:"team_ids"`
	GroupIDs         json.RawMessage `db:"group_ids"`
	Succeeded        int             `db:"succeeded"`
	Failed           int             `db:"failed"`
	Unknown          int             `db:"unknown"`
	Throttled        int             `db:"throttled"`
	Reads            int             `db:"reads"`
	TotalCount       int             `db:"total_count"`
	ErrorMessage     *string         `db:"error_message"`
	WarningMessage   *string         `db:"warning_message"`
	ButtonClicks     string          `db:"button_clicks"`
	CreatedAt        time.Time       `db:"created_at"`
	SendingStartedAt *time.Time      `db:"sending_started_at"`
	SentAt           *time.Time      `db:"sent_at"`
}

const broadcastColumns = `id, partition, title, channel_id, all_users, team_ids, group_ids,
	succeeded, failed, unknown, throttled, reads, total_count,
	error_message, warning_message, button_clicks,
	created_at, sending_started_at, sent_at`

// MoveDraftToSent relocates a draft into the sent partition inside one
// transaction: the sent copy is inserted under a fresh id and the draft row is
// deleted, so the record never exists in both partitions.
func (r *BroadcastRepo) MoveDraftToSent(ctx context.Context, draftID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var row broadcastRow
	err = tx.GetContext(ctx, &row,
		`SELECT `+broadcastColumns+` FROM broadcasts WHERE id = $1 AND partition = 'draft' FOR UPDATE`,
		draftID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}

	draft, err := rowToBroadcast(row)
	if err != nil {
		return uuid.Nil, err
	}
	sent := draft.ToSent()

	teamIDs, _ := json.Marshal(sent.TeamIDs)
	groupIDs, _ := json.Marshal(sent.GroupIDs)
	clicks, err := sent.ButtonClicks.Encode()
	if err != nil {
		return uuid.Nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO broadcasts (`+broadcastColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		sent.ID, sent.Partition, sent.Title, sent.ChannelID, sent.AllUsers, teamIDs, groupIDs,
		sent.Succeeded, sent.Failed, sent.Unknown, sent.Throttled, sent.Reads, sent.TotalCount,
		sent.ErrorMessage, sent.WarningMessage, clicks,
		sent.CreatedAt, sent.SendingStartedAt, sent.SentAt,
	)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM broadcasts WHERE id = $1`, draftID); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return sent.ID, nil
}

func (r *BroadcastRepo) GetSent(ctx context.Context, id uuid.UUID) (*domain.Broadcast, error) {
	var row broadcastRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+broadcastColumns+` FROM broadcasts WHERE id = $1 AND partition = 'sent'`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBroadcastNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToBroadcast(row)
}

func (r *BroadcastRepo) ListSent(ctx context.Context) ([]*domain.Broadcast, error) {
	var rows []broadcastRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+broadcastColumns+` FROM broadcasts WHERE partition = 'sent'
		ORDER BY sending_started_at DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, err
	}
	return rowsToBroadcasts(rows)
}

func (r *BroadcastRepo) ListSentByChannel(ctx context.Context, channelID string) ([]*domain.Broadcast, error) {
	var rows []broadcastRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+broadcastColumns+` FROM broadcasts WHERE partition = 'sent' AND channel_id = $1
		ORDER BY sending_started_at DESC NULLS LAST, created_at DESC`, channelID)
	if err != nil {
		return nil, err
	}
	return rowsToBroadcasts(rows)
}

func (r *BroadcastRepo) GetButtonClicks(ctx context.Context, id uuid.UUID) (domain.ButtonClicks, error) {
	var encoded string
	err := r.db.GetContext(ctx, &encoded,
		`SELECT button_clicks FROM broadcasts WHERE id = $1 AND partition = 'sent'`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBroadcastNotFound
	}
	if err != nil {
		return nil, err
	}
	return domain.DecodeButtonClicks(encoded)
}

// SaveButtonClicks writes the whole encoded collection back. Concurrent
// writers race on this column with last-writer-wins semantics; lost click
// increments are an accepted trade-off of the blob encoding.
func (r *BroadcastRepo) SaveButtonClicks(ctx context.Context, id uuid.UUID, clicks domain.ButtonClicks) error {
	encoded, err := clicks.Encode()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE broadcasts SET button_clicks = $2 WHERE id = $1 AND partition = 'sent'`,
		id, encoded)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBroadcastNotFound
	}
	return nil
}

func (r *BroadcastRepo) IncrementReads(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE broadcasts SET reads = reads + 1 WHERE id = $1 AND partition = 'sent'`, id)
	return err
}

func rowToBroadcast(row broadcastRow) (*domain.Broadcast, error) {
	clicks, err := domain.DecodeButtonClicks(row.ButtonClicks)
	if err != nil {
		return nil, err
	}

	b := &domain.Broadcast{
		ID:               row.ID,
		Partition:        domain.Partition(row.Partition),
		Title:            row.Title,
		ChannelID:        row.ChannelID,
		AllUsers:         row.AllUsers,
		Succeeded:        row.Succeeded,
		Failed:           row.Failed,
		Unknown:          row.Unknown,
		Throttled:        row.Throttled,
		Reads:            row.Reads,
		TotalCount:       row.TotalCount,
		ErrorMessage:     row.ErrorMessage,
		WarningMessage:   row.WarningMessage,
		ButtonClicks:     clicks,
		CreatedAt:        row.CreatedAt,
		SendingStartedAt: row.SendingStartedAt,
		SentAt:           row.SentAt,
	}

	if row.TeamIDs != nil {
		_ = json.Unmarshal(row.TeamIDs, &b.TeamIDs)
	}
	if row.GroupIDs != nil {
		_ = json.Unmarshal(row.GroupIDs, &b.GroupIDs)
	}

	return b, nil
}

func rowsToBroadcasts(rows []broadcastRow) ([]*domain.Broadcast, error) {
	result := make([]*domain.Broadcast, len(rows))
	for i, row := range rows {
		b, err := rowToBroadcast(row)
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}
