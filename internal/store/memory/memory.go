// Package memory is an in-process implementation of the store contract.
// Every call takes the single lock, so each call is atomic on its own, and
// nothing spans two calls: callers see the same consistency windows as with
// PostgreSQL.
package memory

import (
	"sort"
	"sync"
	"time"

	"backend-friendbook/internal/store"
)

type DB struct {
	mu       sync.RWMutex
	users    map[string]*store.User
	posts    map[string]*store.Post
	comments map[string]*store.Comment
	likes    map[string]*store.Like
	// seq orders posts and comments by insertion, as time alone can tie.
	seq     int64
	postSeq map[string]int64
	commSeq map[string]int64
	now     func() time.Time
}

func New() *DB {
	return &DB{
		users:    map[string]*store.User{},
		posts:    map[string]*store.Post{},
		comments: map[string]*store.Comment{},
		likes:    map[string]*store.Like{},
		postSeq:  map[string]int64{},
		commSeq:  map[string]int64{},
		now:      time.Now,
	}
}

// Store returns the four collections backed by db.
func (db *DB) Store() store.Store {
	return store.Store{
		Users:    &Users{db: db},
		Posts:    &Posts{db: db},
		Comments: &Comments{db: db},
		Likes:    &Likes{db: db},
	}
}

func (db *DB) next() int64 {
	db.seq++
	return db.seq
}

func cloneUser(u *store.User) store.User {
	c := *u
	c.Followers = append([]string{}, u.Followers...)
	c.Followings = append([]string{}, u.Followings...)
	c.Tokens = append([]string{}, u.Tokens...)
	c.ProfilePicture = cloneMedia(u.ProfilePicture)
	c.CoverPicture = cloneMedia(u.CoverPicture)
	c.Story = cloneMedia(u.Story)
	return c
}

func cloneMedia(m *store.Media) *store.Media {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func clonePost(p *store.Post) store.Post {
	c := *p
	c.Image = cloneMedia(p.Image)
	return c
}

func sortPostsDesc(db *DB, posts []store.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return db.postSeq[posts[i].ID] > db.postSeq[posts[j].ID]
	})
}

func sortCommentsAsc(db *DB, comments []store.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return db.commSeq[comments[i].ID] < db.commSeq[comments[j].ID]
	})
}
