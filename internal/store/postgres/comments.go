package postgres

import (
	"context"

	"backend-friendbook/internal/db"
	"backend-friendbook/internal/store"

	"github.com/jackc/pgx/v5"
)

const commentColumns = `id, owner_id, post_id, message, created_at, updated_at`

type Comments struct {
	db db.Querier
}

var _ store.Comments = (*Comments)(nil)

func NewComments(q db.Querier) *Comments {
	return &Comments{db: q}
}

func scanComment(row pgx.Row) (store.Comment, error) {
	var c store.Comment
	err := row.Scan(&c.ID, &c.OwnerID, &c.PostID, &c.Message, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr(err)
}

func (r *Comments) queryComments(ctx context.Context, sql string, arg string) ([]store.Comment, error) {
	if err := store.CheckID(arg); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var comments []store.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, mapErr(rows.Err())
}

func (r *Comments) Create(ctx context.Context, c *store.Comment) error {
	if err := store.CheckID(c.ID, c.OwnerID, c.PostID); err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO comments (id, owner_id, post_id, message)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, c.ID, c.OwnerID, c.PostID, c.Message)
	return mapErr(row.Scan(&c.CreatedAt, &c.UpdatedAt))
}

func (r *Comments) UpdateOwned(ctx context.Context, id, ownerID, message string) (store.Comment, error) {
	if err := store.CheckID(id, ownerID); err != nil {
		return store.Comment{}, err
	}
	return scanComment(r.db.QueryRow(ctx, `
		UPDATE comments SET message = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+commentColumns,
		id, ownerID, message))
}

func (r *Comments) DeleteOwned(ctx context.Context, id, ownerID string) (store.Comment, error) {
	if err := store.CheckID(id, ownerID); err != nil {
		return store.Comment{}, err
	}
	return scanComment(r.db.QueryRow(ctx, `
		DELETE FROM comments WHERE id = $1 AND owner_id = $2 RETURNING `+commentColumns,
		id, ownerID))
}

func (r *Comments) ListByPost(ctx context.Context, postID string) ([]store.Comment, error) {
	return r.queryComments(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at, id
	`, postID)
}

func (r *Comments) ListByOwner(ctx context.Context, ownerID string) ([]store.Comment, error) {
	return r.queryComments(ctx, `
		SELECT `+commentColumns+` FROM comments WHERE owner_id = $1 ORDER BY created_at, id
	`, ownerID)
}

func (r *Comments) Delete(ctx context.Context, id string) (bool, error) {
	if err := store.CheckID(id); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Comments) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	if err := store.CheckID(postID); err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
