package content

import (
	"time"

	"backend-friendbook/internal/store"
)

type PostInput struct {
	Message *string `json:"message" form:"message"`
}

// Post is the public view of a post: the image is referenced by link only.
type Post struct {
	ID             string            `json:"id"`
	Message        string            `json:"message,omitempty"`
	HasImage       bool              `json:"hasImage"`
	ImageLink      string            `json:"imageLink,omitempty"`
	LikeCounter    int               `json:"likeCounter"`
	CommentCounter int               `json:"commentCounter"`
	Owner          store.UserSummary `json:"owner"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type DeletePostResult struct {
	PostID string `json:"postId"`
}

type Image struct {
	Data     []byte
	Mimetype string
}

func newPost(p store.Post, owner store.UserSummary) Post {
	out := Post{
		ID:             p.ID,
		Message:        p.Message,
		LikeCounter:    p.LikeCounter,
		CommentCounter: p.CommentCounter,
		Owner:          owner,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Image != nil {
		out.HasImage = true
		out.ImageLink = p.Image.Link
	}
	return out
}
