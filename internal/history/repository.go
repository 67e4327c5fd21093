package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one delivered quote line as stored in quote_history. Multi
// product quotations produce one entry per priced line.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Channel     string    `db:"channel" json:"channel"`
	RequestText string    `db:"request_text" json:"requestText"`
	Product     string    `db:"product" json:"product"`
	Size        string    `db:"size" json:"size"`
	GlaseoPct   *int      `db:"glaseo_pct" json:"glaseoPct,omitempty"`
	Freight     *float64  `db:"freight" json:"freight,omitempty"`
	Destination *string   `db:"destination" json:"destination,omitempty"`
	FOBPrice    float64   `db:"fob_price" json:"fobPrice"`
	CFRPrice    *float64  `db:"cfr_price" json:"cfrPrice,omitempty"`
	DDPPrice    *float64  `db:"ddp_price" json:"ddpPrice,omitempty"`
	Language    string    `db:"language" json:"language"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Repository provides database operations for the quote history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a quote history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertEntryQuery = `
	INSERT INTO quote_history (
		id, user_id, channel, request_text, product, size,
		glaseo_pct, freight, destination, fob_price, cfr_price, ddp_price,
		language, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Append inserts one delivered quote line.
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := r.pool.Exec(ctx, insertEntryQuery,
		entry.ID, entry.UserID, entry.Channel, entry.RequestText,
		entry.Product, entry.Size,
		entry.GlaseoPct, entry.Freight, entry.Destination,
		entry.FOBPrice, entry.CFRPrice, entry.DDPPrice,
		entry.Language, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quote history entry: %w", err)
	}
	return nil
}

const deleteOlderThanQuery = `DELETE FROM quote_history WHERE created_at < $1`

// DeleteOlderThan prunes entries created before the cutoff and returns
// the number of rows removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteOlderThanQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune quote history: %w", err)
	}
	return tag.RowsAffected(), nil
}

const listByUserQuery = `
	SELECT id, user_id, channel, request_text, product, size,
	       glaseo_pct, freight, destination, fob_price, cfr_price, ddp_price,
	       language, created_at
	FROM quote_history
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

// ListByUser returns the most recent quotes delivered to a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, listByUserQuery, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Channel, &e.RequestText, &e.Product, &e.Size,
			&e.GlaseoPct, &e.Freight, &e.Destination,
			&e.FOBPrice, &e.CFRPrice, &e.DDPPrice,
			&e.Language, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quote history rows: %w", err)
	}
	return entries, nil
}
