package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beratbay/broadcast-engage/internal/domain"
)

type DeliveryRepo struct {
	db *sqlx.DB
}

func NewDeliveryRepo(db *sqlx.DB) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

type deliveryRow struct {
	BroadcastID  uuid.UUID  `db:"broadcast_id"`
	RecipientKey string     `db:"recipient_key"`
	ReadStatus   bool       `db:"read_status"`
	ReadAt       *time.Time `db:"read_at"`
	ButtonClicks string     `db:"button_clicks"`
	CreatedAt    time.Time  `db:"created_at"`
}

// EnsureTable creates the per-recipient delivery table if it does not exist
// yet. Called on every send transition; the external delivery workers insert
// the rows, this service only mutates the engagement fields.
func (r *DeliveryRepo) EnsureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS recipient_deliveries (
			broadcast_id UUID NOT NULL,
			recipient_key TEXT NOT NULL,
			read_status BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMPTZ,
			button_clicks TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (broadcast_id, recipient_key)
		)`)
	return err
}

func (r *DeliveryRepo) Get(ctx context.Context, broadcastID uuid.UUID, recipientKey string) (*domain.RecipientDelivery, error) {
	var row deliveryRow
	err := r.db.GetContext(ctx, &row,
		`SELECT broadcast_id, recipient_key, read_status, read_at, button_clicks, created_at
		FROM recipient_deliveries WHERE broadcast_id = $1 AND recipient_key = $2`,
		broadcastID, recipientKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecipientNotFound
	}
	if err != nil {
		return nil, err
	}

	clicks, err := domain.DecodeRecipientButtonClicks(row.ButtonClicks)
	if err != nil {
		return nil, err
	}

	return &domain.RecipientDelivery{
		BroadcastID:  row.BroadcastID,
		RecipientKey: row.RecipientKey,
		Read:         row.ReadStatus,
		ReadAt:       row.ReadAt,
		ButtonClicks: clicks,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// MarkRead performs the false->true transition with a single conditional
// update, so concurrent read events cannot double-count. A missing row and an
// already-read row both report false without an error.
func (r *DeliveryRepo) MarkRead(ctx context.Context, broadcastID uuid.UUID, recipientKey string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE recipient_deliveries SET read_status = TRUE, read_at = NOW()
		WHERE broadcast_id = $1 AND recipient_key = $2 AND read_status = FALSE`,
		broadcastID, recipientKey)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *DeliveryRepo) SaveButtonClicks(ctx context.Context, broadcastID uuid.UUID, recipientKey string, clicks domain.RecipientButtonClicks) error {
	encoded, err := clicks.Encode()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE recipient_deliveries SET button_clicks = $3
		WHERE broadcast_id = $1 AND recipient_key = $2`,
		broadcastID, recipientKey, encoded)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrRecipientNotFound
	}
	return nil
}
