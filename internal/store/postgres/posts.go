package postgres

import (
	"context"

	"backend-friendbook/internal/db"
	"backend-friendbook/internal/store"

	"github.com/jackc/pgx/v5"
)

const postColumns = `id, owner_id, message, image, like_counter, comment_counter, created_at, updated_at`

type Posts struct {
	db db.Querier
}

var _ store.Posts = (*Posts)(nil)

func NewPosts(q db.Querier) *Posts {
	return &Posts{db: q}
}

func scanPost(row pgx.Row) (store.Post, error) {
	var (
		p     store.Post
		image []byte
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Message, &image, &p.LikeCounter, &p.CommentCounter, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return store.Post{}, mapErr(err)
	}
	m, err := decodeMedia(image)
	if err != nil {
		return store.Post{}, err
	}
	p.Image = m
	return p, nil
}

func (r *Posts) queryPosts(ctx context.Context, sql string, args ...any) ([]store.Post, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var posts []store.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, mapErr(rows.Err())
}

func (r *Posts) Create(ctx context.Context, p *store.Post) error {
	if err := store.CheckID(p.ID, p.OwnerID); err != nil {
		return err
	}
	image, err := encodeMedia(p.Image)
	if err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO posts (id, owner_id, message, image)
		VALUES ($1,$2,$3,$4)
		RETURNING like_counter, comment_counter, created_at, updated_at
	`, p.ID, p.OwnerID, p.Message, image)
	return mapErr(row.Scan(&p.LikeCounter, &p.CommentCounter, &p.CreatedAt, &p.UpdatedAt))
}

func (r *Posts) ByID(ctx context.Context, id string) (store.Post, error) {
	if err := store.CheckID(id); err != nil {
		return store.Post{}, err
	}
	return scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *Posts) Exists(ctx context.Context, id string) (bool, error) {
	if err := store.CheckID(id); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&ok)
	return ok, mapErr(err)
}

func (r *Posts) UpdateOwned(ctx context.Context, id, ownerID string, patch store.PostPatch) (store.Post, error) {
	if err := store.CheckID(id, ownerID); err != nil {
		return store.Post{}, err
	}
	image, err := encodeMedia(patch.Image)
	if err != nil {
		return store.Post{}, err
	}
	return scanPost(r.db.QueryRow(ctx, `
		UPDATE posts
		SET message = COALESCE($3, message),
		    image = COALESCE($4, image),
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+postColumns,
		id, ownerID, patch.Message, image))
}

func (r *Posts) DeleteOwned(ctx context.Context, id, ownerID string) (store.Post, error) {
	if err := store.CheckID(id, ownerID); err != nil {
		return store.Post{}, err
	}
	return scanPost(r.db.QueryRow(ctx, `
		DELETE FROM posts WHERE id = $1 AND owner_id = $2 RETURNING `+postColumns,
		id, ownerID))
}

func (r *Posts) ListByOwner(ctx context.Context, ownerID string) ([]store.Post, error) {
	if err := store.CheckID(ownerID); err != nil {
		return nil, err
	}
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts WHERE owner_id = $1 ORDER BY created_at DESC, id DESC
	`, ownerID)
}

func (r *Posts) List(ctx context.Context) ([]store.Post, error) {
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
}

func (r *Posts) IncLikes(ctx context.Context, id string, delta int) (int, error) {
	return r.inc(ctx, `
		UPDATE posts SET like_counter = GREATEST(like_counter + $2, 0) WHERE id = $1 RETURNING like_counter
	`, id, delta)
}

func (r *Posts) IncComments(ctx context.Context, id string, delta int) (int, error) {
	return r.inc(ctx, `
		UPDATE posts SET comment_counter = GREATEST(comment_counter + $2, 0) WHERE id = $1 RETURNING comment_counter
	`, id, delta)
}

func (r *Posts) inc(ctx context.Context, sql, id string, delta int) (int, error) {
	if err := store.CheckID(id); err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, id, delta).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}
