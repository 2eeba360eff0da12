package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Work visibility values as stored by the main site.
const (
	VisibilityPublic        = 1
	VisibilityForcedPrivate = 3
)

// ErrWorkNotFound is returned when a slug matches no work.
var ErrWorkNotFound = errors.New("work not found")

// WorkAuthor is the posting user shown in the admin listing.
type WorkAuthor struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// AdminWork is the moderation projection of a work: the work row plus
// author, style, category/tag names, media keys, and reaction counts.
type AdminWork struct {
	ID            int64      `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Visibility    int        `json:"visibility"`
	Author        WorkAuthor `json:"user"`
	Style         string     `json:"style"`
	Categories    []string   `json:"categories"`
	Tags          []string   `json:"tags"`
	MediaKeys     []string   `json:"media_keys"`
	LikeCount     int        `json:"like_count"`
	BookmarkCount int        `json:"bookmark_count"`
	CommentCount  int        `json:"comment_count"`
	ViewCount     int64      `json:"view_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// WorkRepository defines the moderation operations over works. The schema is
// owned by the main site; this service only reads and flips visibility.
type WorkRepository interface {
	List(ctx context.Context) ([]AdminWork, error)
	ForcePrivate(ctx context.Context, slug string) error
	Restore(ctx context.Context, slug string) error
}

// PgWorkRepository implements WorkRepository using pgxpool.
type PgWorkRepository struct {
	db *pgxpool.Pool
}

func NewPgWorkRepository(db *pgxpool.Pool) *PgWorkRepository {
	return &PgWorkRepository{db: db}
}

// List returns every work with its related data, newest first.
func (r *PgWorkRepository) List(ctx context.Context) ([]AdminWork, error) {
	const q = `
SELECT w.id, w.slug, w.title, COALESCE(w.description, ''), w.visibility, w.created_at,
       u.id, u.name, u.username,
       COALESCE(s.name, ''),
       COALESCE((SELECT array_agg(c.name ORDER BY c.name)
                 FROM work_categories wc JOIN categories c ON c.id = wc.category_id
                 WHERE wc.work_id = w.id), '{}'),
       COALESCE((SELECT array_agg(t.name ORDER BY t.name)
                 FROM work_tags wt JOIN tags t ON t.id = wt.tag_id
                 WHERE wt.work_id = w.id), '{}'),
       COALESCE((SELECT array_agg(m.key ORDER BY m.id)
                 FROM work_media wm JOIN media m ON m.id = wm.media_id
                 WHERE wm.work_id = w.id), '{}'),
       (SELECT COUNT(*) FROM like_works lw WHERE lw.work_id = w.id),
       (SELECT COUNT(*) FROM bookmark_works bw WHERE bw.work_id = w.id),
       (SELECT COUNT(*) FROM work_comments wc WHERE wc.work_id = w.id)
FROM works w
JOIN users u ON u.id = w.user_id
LEFT JOIN styles s ON s.id = w.style_id
ORDER BY w.created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AdminWork
	for rows.Next() {
		var w AdminWork
		if err := rows.Scan(
			&w.ID, &w.Slug, &w.Title, &w.Description, &w.Visibility, &w.CreatedAt,
			&w.Author.ID, &w.Author.Name, &w.Author.Username,
			&w.Style, &w.Categories, &w.Tags, &w.MediaKeys,
			&w.LikeCount, &w.BookmarkCount, &w.CommentCount,
		); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// ForcePrivate hides a work from the site regardless of the author's setting.
func (r *PgWorkRepository) ForcePrivate(ctx context.Context, slug string) error {
	return r.setVisibility(ctx, slug, VisibilityForcedPrivate)
}

// Restore lifts a forced-private restriction back to public.
func (r *PgWorkRepository) Restore(ctx context.Context, slug string) error {
	return r.setVisibility(ctx, slug, VisibilityPublic)
}

func (r *PgWorkRepository) setVisibility(ctx context.Context, slug string, visibility int) error {
	tag, err := r.db.Exec(ctx, `UPDATE works SET visibility=$1 WHERE slug=$2`, visibility, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkNotFound
	}
	return nil
}
