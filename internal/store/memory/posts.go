package memory

import (
	"context"

	"backend-friendbook/internal/store"
)

type Posts struct {
	db *DB
}

var _ store.Posts = (*Posts)(nil)

func (r *Posts) Create(_ context.Context, p *store.Post) error {
	if err := store.CheckID(p.ID, p.OwnerID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[p.ID]; ok {
		return store.ErrConflict
	}
	now := r.db.now()
	p.CreatedAt, p.UpdatedAt = now, now
	c := clonePost(p)
	r.db.posts[p.ID] = &c
	r.db.postSeq[p.ID] = r.db.next()
	return nil
}

func (r *Posts) ByID(_ context.Context, id string) (store.Post, error) {
	if err := store.CheckID(id); err != nil {
		return store.Post{}, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.posts[id]
	if !ok {
		return store.Post{}, store.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *Posts) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.ByID(ctx, id)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *Posts) UpdateOwned(_ context.Context, id, ownerID string, patch store.PostPatch) (store.Post, error) {
	if err := store.CheckID(id); err != nil {
		return store.Post{}, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok || p.OwnerID != ownerID {
		return store.Post{}, store.ErrNotFound
	}
	if patch.Message != nil {
		p.Message = *patch.Message
	}
	if patch.Image != nil {
		p.Image = cloneMedia(patch.Image)
	}
	p.UpdatedAt = r.db.now()
	return clonePost(p), nil
}

func (r *Posts) DeleteOwned(_ context.Context, id, ownerID string) (store.Post, error) {
	if err := store.CheckID(id); err != nil {
		return store.Post{}, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok || p.OwnerID != ownerID {
		return store.Post{}, store.ErrNotFound
	}
	delete(r.db.posts, id)
	delete(r.db.postSeq, id)
	return clonePost(p), nil
}

func (r *Posts) ListByOwner(_ context.Context, ownerID string) ([]store.Post, error) {
	if err := store.CheckID(ownerID); err != nil {
		return nil, err
	}
	return r.list(func(p *store.Post) bool { return p.OwnerID == ownerID }), nil
}

func (r *Posts) List(_ context.Context) ([]store.Post, error) {
	return r.list(func(*store.Post) bool { return true }), nil
}

func (r *Posts) list(keep func(*store.Post) bool) []store.Post {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []store.Post
	for _, p := range r.db.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	sortPostsDesc(r.db, out)
	return out
}

func (r *Posts) IncLikes(_ context.Context, id string, delta int) (int, error) {
	return r.inc(id, func(p *store.Post) *int { return &p.LikeCounter }, delta)
}

func (r *Posts) IncComments(_ context.Context, id string, delta int) (int, error) {
	return r.inc(id, func(p *store.Post) *int { return &p.CommentCounter }, delta)
}

func (r *Posts) inc(id string, field func(*store.Post) *int, delta int) (int, error) {
	if err := store.CheckID(id); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	counter := field(p)
	*counter = max(*counter+delta, 0)
	return *counter, nil
}
