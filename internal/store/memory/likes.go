package memory

import (
	"context"

	"backend-friendbook/internal/store"
)

type Likes struct {
	db *DB
}

var _ store.Likes = (*Likes)(nil)

func (r *Likes) Create(_ context.Context, l *store.Like) error {
	if err := store.CheckID(l.ID, l.OwnerID, l.PostID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.likes {
		if existing.OwnerID == l.OwnerID && existing.PostID == l.PostID {
			return store.ErrConflict
		}
	}
	cp := *l
	r.db.likes[l.ID] = &cp
	return nil
}

func (r *Likes) DeleteByOwnerAndPost(_ context.Context, ownerID, postID string) (bool, error) {
	if err := store.CheckID(ownerID, postID); err != nil {
		return false, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, l := range r.db.likes {
		if l.OwnerID == ownerID && l.PostID == postID {
			delete(r.db.likes, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *Likes) Exists(_ context.Context, ownerID, postID string) (bool, error) {
	if err := store.CheckID(ownerID, postID); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, l := range r.db.likes {
		if l.OwnerID == ownerID && l.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Likes) ListByOwner(_ context.Context, ownerID string) ([]store.Like, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []store.Like
	for _, l := range r.db.likes {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *Likes) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.likes[id]; !ok {
		return false, nil
	}
	delete(r.db.likes, id)
	return true, nil
}

func (r *Likes) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, l := range r.db.likes {
		if l.PostID == postID {
			delete(r.db.likes, id)
			n++
		}
	}
	return n, nil
}
