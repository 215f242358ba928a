// Package postgres implements the store contract on PostgreSQL. Every method
// is one statement; follow sets and session tokens are TEXT[] columns on the
// user row so each side of a relationship changes with a single UPDATE.
package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"backend-friendbook/internal/db"
	"backend-friendbook/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidTextRepr = "22P02"
)

// New builds the four repositories on top of q.
func New(q db.Querier) store.Store {
	return store.Store{
		Users:    NewUsers(q),
		Posts:    NewPosts(q),
		Comments: NewComments(q),
		Likes:    NewLikes(q),
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return store.ErrConflict
		case codeInvalidTextRepr:
			return store.ErrInvalidID
		}
	}
	return err
}

type mediaDoc struct {
	Key      string `json:"key"`
	Mimetype string `json:"mimetype"`
	Link     string `json:"link"`
}

func encodeMedia(m *store.Media) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(mediaDoc{Key: m.Key, Mimetype: m.Mimetype, Link: m.Link})
}

func decodeMedia(raw []byte) (*store.Media, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var doc mediaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	return &store.Media{Key: doc.Key, Mimetype: doc.Mimetype, Link: doc.Link}, nil
}
