package memory

import (
	"context"

	"backend-friendbook/internal/store"
)

type Comments struct {
	db *DB
}

var _ store.Comments = (*Comments)(nil)

func (r *Comments) Create(_ context.Context, c *store.Comment) error {
	if err := store.CheckID(c.ID, c.PostID, c.OwnerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.db.comments[c.ID] = &cp
	r.db.commSeq[c.ID] = r.db.next()
	return nil
}

func (r *Comments) UpdateOwned(_ context.Context, id, ownerID, message string) (store.Comment, error) {
	if err := store.CheckID(id); err != nil {
		return store.Comment{}, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok || c.OwnerID != ownerID {
		return store.Comment{}, store.ErrNotFound
	}
	c.Message = message
	c.UpdatedAt = r.db.now()
	return *c, nil
}

func (r *Comments) DeleteOwned(_ context.Context, id, ownerID string) (store.Comment, error) {
	if err := store.CheckID(id); err != nil {
		return store.Comment{}, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok || c.OwnerID != ownerID {
		return store.Comment{}, store.ErrNotFound
	}
	delete(r.db.comments, id)
	delete(r.db.commSeq, id)
	return *c, nil
}

func (r *Comments) ListByPost(_ context.Context, postID string) ([]store.Comment, error) {
	if err := store.CheckID(postID); err != nil {
		return nil, err
	}
	return r.list(func(c *store.Comment) bool { return c.PostID == postID }), nil
}

func (r *Comments) ListByOwner(_ context.Context, ownerID string) ([]store.Comment, error) {
	if err := store.CheckID(ownerID); err != nil {
		return nil, err
	}
	return r.list(func(c *store.Comment) bool { return c.OwnerID == ownerID }), nil
}

func (r *Comments) list(keep func(*store.Comment) bool) []store.Comment {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []store.Comment
	for _, c := range r.db.comments {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sortCommentsAsc(r.db, out)
	return out
}

func (r *Comments) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return false, nil
	}
	delete(r.db.comments, id)
	delete(r.db.commSeq, id)
	return true, nil
}

func (r *Comments) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, c := range r.db.comments {
		if c.PostID == postID {
			delete(r.db.comments, id)
			delete(r.db.commSeq, id)
			n++
		}
	}
	return n, nil
}
