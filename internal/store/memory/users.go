package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"backend-friendbook/internal/store"
)

type Users struct {
	db *DB
}

var _ store.Users = (*Users)(nil)

func (r *Users) Create(_ context.Context, u *store.User) error {
	if err := store.CheckID(u.ID); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[u.ID]; ok {
		return store.ErrConflict
	}
	for _, existing := range r.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
	}
	now := r.db.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Followings == nil {
		u.Followings = []string{}
	}
	c := cloneUser(u)
	r.db.users[u.ID] = &c
	return nil
}

func (r *Users) ByID(_ context.Context, id string) (store.User, error) {
	if err := store.CheckID(id); err != nil {
		return store.User{}, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Users) ByEmail(_ context.Context, email string) (store.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (r *Users) ByUsername(_ context.Context, username string) (store.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.sorted() {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (r *Users) ByIDs(_ context.Context, ids []string) ([]store.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]store.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.ByEmail(ctx, email)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *Users) List(_ context.Context, excludeID string, limit int) ([]store.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []store.User
	for _, u := range r.sorted() {
		if u.ID == excludeID {
			continue
		}
		out = append(out, cloneUser(u))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// sorted gives deterministic iteration; callers hold the lock.
func (r *Users) sorted() []*store.User {
	out := make([]*store.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt) || (out[i].CreatedAt.Equal(out[j].CreatedAt) && out[i].ID < out[j].ID)
	})
	return out
}

func (r *Users) mutate(id string, fn func(u *store.User)) error {
	if err := store.CheckID(id); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.db.now()
	return nil
}

func setOf(u *store.User, rel store.Relation) *[]string {
	if rel == store.Followers {
		return &u.Followers
	}
	return &u.Followings
}

func (r *Users) AddRelation(_ context.Context, userID string, rel store.Relation, member string) error {
	return r.mutate(userID, func(u *store.User) {
		set := setOf(u, rel)
		if !slices.Contains(*set, member) {
			*set = append(*set, member)
		}
	})
}

func (r *Users) RemoveRelation(_ context.Context, userID string, rel store.Relation, member string) error {
	return r.mutate(userID, func(u *store.User) {
		set := setOf(u, rel)
		*set = slices.DeleteFunc(*set, func(id string) bool { return id == member })
	})
}

func (r *Users) AppendToken(_ context.Context, userID, token string) error {
	return r.mutate(userID, func(u *store.User) {
		u.Tokens = append(u.Tokens, token)
	})
}

func (r *Users) RemoveToken(_ context.Context, userID, token string) error {
	return r.mutate(userID, func(u *store.User) {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
	})
}

func (r *Users) HasToken(_ context.Context, userID, token string) (bool, error) {
	if err := store.CheckID(userID); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[userID]
	if !ok {
		return false, nil
	}
	return slices.Contains(u.Tokens, token), nil
}

func (r *Users) UpdatePassword(_ context.Context, userID, hash string) error {
	return r.mutate(userID, func(u *store.User) {
		u.PasswordHash = hash
	})
}

func (r *Users) UpdateProfile(ctx context.Context, userID string, p store.ProfilePatch) (store.User, error) {
	err := r.mutate(userID, func(u *store.User) {
		assign(&u.Username, p.Username)
		assign(&u.Description, p.Description)
		assign(&u.Age, p.Age)
		assign(&u.Gender, p.Gender)
		assign(&u.Relationship, p.Relationship)
		assign(&u.Location, p.Location)
		assign(&u.Facebook, p.Facebook)
		assign(&u.LinkedIn, p.LinkedIn)
		assign(&u.Twitter, p.Twitter)
		assign(&u.Instagram, p.Instagram)
		assign(&u.Pinterest, p.Pinterest)
	})
	if err != nil {
		return store.User{}, err
	}
	return r.ByID(ctx, userID)
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (r *Users) SetMedia(_ context.Context, userID string, kind store.MediaKind, m *store.Media) error {
	return r.mutate(userID, func(u *store.User) {
		switch kind {
		case store.MediaProfilePicture:
			u.ProfilePicture = cloneMedia(m)
		case store.MediaCoverPicture:
			u.CoverPicture = cloneMedia(m)
		case store.MediaStory:
			u.Story = cloneMedia(m)
		}
	})
}

func (r *Users) Delete(_ context.Context, id string) (bool, error) {
	if err := store.CheckID(id); err != nil {
		return false, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return false, nil
	}
	delete(r.db.users, id)
	return true, nil
}
