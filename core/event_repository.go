package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEventNotFound is returned when an id matches no event.
var ErrEventNotFound = errors.New("event not found")

// Event is a site announcement/campaign shown on the public pages and
// managed from the admin screens. ImageURL points at the CDN object uploaded
// through Storage; it may be empty.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInput carries the writable fields for create/update.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type EventRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, in EventInput) (*Event, error)
	Update(ctx context.Context, id int64, in EventInput) (*Event, error)
	Delete(ctx context.Context, id int64) error
}

// PgEventRepository implements EventRepository using pgxpool.
type PgEventRepository struct {
	db *pgxpool.Pool
}

func NewPgEventRepository(db *pgxpool.Pool) *PgEventRepository {
	return &PgEventRepository{db: db}
}

const eventColumns = `id, title, description, COALESCE(image_url, ''), starts_at, ends_at, created_at, updated_at`

// ListActive returns events whose window covers now, soonest-ending first.
func (r *PgEventRepository) ListActive(ctx context.Context, now time.Time) ([]Event, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+eventColumns+`
FROM events
WHERE starts_at <= $1 AND ends_at >= $1
ORDER BY ends_at ASC, id ASC
`, now)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ListAll returns every event, newest window first.
func (r *PgEventRepository) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+eventColumns+`
FROM events
ORDER BY starts_at DESC, id DESC
`)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	var items []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *PgEventRepository) Get(ctx context.Context, id int64) (*Event, error) {
	var e Event
	err := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgEventRepository) Create(ctx context.Context, in EventInput) (*Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	const q = `
INSERT INTO events (title, description, image_url, starts_at, ends_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at, updated_at
`
	e := Event{Title: in.Title, Description: in.Description, ImageURL: in.ImageURL, StartsAt: in.StartsAt, EndsAt: in.EndsAt}
	if err := r.db.QueryRow(ctx, q, in.Title, in.Description, in.ImageURL, in.StartsAt, in.EndsAt).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgEventRepository) Update(ctx context.Context, id int64, in EventInput) (*Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	const q = `
UPDATE events SET title=$1, description=$2, image_url=$3, starts_at=$4, ends_at=$5, updated_at=now()
WHERE id=$6
RETURNING id, created_at, updated_at
`
	e := Event{Title: in.Title, Description: in.Description, ImageURL: in.ImageURL, StartsAt: in.StartsAt, EndsAt: in.EndsAt}
	err := r.db.QueryRow(ctx, q, in.Title, in.Description, in.ImageURL, in.StartsAt, in.EndsAt, id).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgEventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
