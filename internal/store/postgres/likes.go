package postgres

import (
	"context"

	"backend-friendbook/internal/db"
	"backend-friendbook/internal/store"
)

type Likes struct {
	db db.Querier
}

var _ store.Likes = (*Likes)(nil)

func NewLikes(q db.Querier) *Likes {
	return &Likes{db: q}
}

// Create relies on the (owner_id, post_id) unique index: a duplicate surfaces
// as store.ErrConflict.
func (r *Likes) Create(ctx context.Context, l *store.Like) error {
	if err := store.CheckID(l.ID, l.OwnerID, l.PostID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO likes (id, owner_id, post_id) VALUES ($1,$2,$3)
	`, l.ID, l.OwnerID, l.PostID)
	return mapErr(err)
}

func (r *Likes) DeleteByOwnerAndPost(ctx context.Context, ownerID, postID string) (bool, error) {
	if err := store.CheckID(ownerID, postID); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM likes WHERE owner_id = $1 AND post_id = $2`, ownerID, postID)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Likes) Exists(ctx context.Context, ownerID, postID string) (bool, error) {
	if err := store.CheckID(ownerID, postID); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM likes WHERE owner_id = $1 AND post_id = $2)
	`, ownerID, postID).Scan(&ok)
	return ok, mapErr(err)
}

func (r *Likes) ListByOwner(ctx context.Context, ownerID string) ([]store.Like, error) {
	if err := store.CheckID(ownerID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, post_id FROM likes WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var likes []store.Like
	for rows.Next() {
		var l store.Like
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.PostID); err != nil {
			return nil, mapErr(err)
		}
		likes = append(likes, l)
	}
	return likes, mapErr(rows.Err())
}

func (r *Likes) Delete(ctx context.Context, id string) (bool, error) {
	if err := store.CheckID(id); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Likes) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	if err := store.CheckID(postID); err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
