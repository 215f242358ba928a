// Package store defines the persistence contract for users, posts, comments
// and likes. Implementations offer conditional update/delete by filter and
// atomic single-field increments; none of them spans several documents in a
// transaction, so callers own the consistency of denormalized fields.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrInvalidID = errors.New("invalid id format")
)

// Relation names one of the two follow sets kept on every user.
type Relation string

const (
	Followers  Relation = "followers"
	Followings Relation = "followings"
)

type Users interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id string) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	ByIDs(ctx context.Context, ids []string) ([]User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// List returns every user except excludeID. limit <= 0 means no limit.
	List(ctx context.Context, excludeID string, limit int) ([]User, error)

	// AddRelation adds member to the user's set; it is a no-op if present.
	AddRelation(ctx context.Context, userID string, rel Relation, member string) error
	// RemoveRelation removes member from the user's set; missing is a no-op.
	RemoveRelation(ctx context.Context, userID string, rel Relation, member string) error

	AppendToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	HasToken(ctx context.Context, userID, token string) (bool, error)

	UpdatePassword(ctx context.Context, userID, hash string) error
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (User, error)
	// SetMedia stores or, with a nil media, clears one of the user's media slots.
	SetMedia(ctx context.Context, userID string, kind MediaKind, m *Media) error
	Delete(ctx context.Context, id string) (bool, error)
}

type Posts interface {
	Create(ctx context.Context, p *Post) error
	ByID(ctx context.Context, id string) (Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	// UpdateOwned applies patch only if the post belongs to ownerID.
	UpdateOwned(ctx context.Context, id, ownerID string, patch PostPatch) (Post, error)
	// DeleteOwned deletes the post only if it belongs to ownerID.
	DeleteOwned(ctx context.Context, id, ownerID string) (Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]Post, error)
	IncLikes(ctx context.Context, id string, delta int) (int, error)
	IncComments(ctx context.Context, id string, delta int) (int, error)
}

type Comments interface {
	Create(ctx context.Context, c *Comment) error
	UpdateOwned(ctx context.Context, id, ownerID, message string) (Comment, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Comment, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

type Likes interface {
	// Create fails with ErrConflict if the owner already likes the post.
	Create(ctx context.Context, l *Like) error
	DeleteByOwnerAndPost(ctx context.Context, ownerID, postID string) (bool, error)
	Exists(ctx context.Context, ownerID, postID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Like, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// Store groups the four collections.
type Store struct {
	Users    Users
	Posts    Posts
	Comments Comments
	Likes    Likes
}
