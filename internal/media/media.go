// Package media stores uploaded images as blobs and derives their public links.
package media

import (
	"context"
	"errors"
	"fmt"

	"backend-friendbook/internal/store"
)

var ErrNotFound = errors.New("blob not found")

// Blobs is a flat key/value store for image bytes.
type Blobs interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

func UserKey(kind store.MediaKind, userID string) string {
	return fmt.Sprintf("users/%s/%s", userID, kind)
}

func PostKey(postID string) string {
	return "posts/" + postID
}

func UserLink(kind store.MediaKind, userID string) string {
	return fmt.Sprintf("/api/user/%s/%s", kind, userID)
}

func PostImageLink(postID string) string {
	return "/api/post/image/" + postID
}

// Save writes up under key and returns the descriptor kept on the entity.
func Save(ctx context.Context, blobs Blobs, key, link string, up Upload) (*store.Media, error) {
	if err := blobs.Put(ctx, key, up.Data, up.Mimetype); err != nil {
		return nil, err
	}
	return &store.Media{Key: key, Mimetype: up.Mimetype, Link: link}, nil
}
