package engagement

import (
	"time"

	"backend-friendbook/internal/store"
)

type LikeResult struct {
	Liked       bool `json:"liked"`
	LikeCounter int  `json:"likeCounter"`
}

type LikeStatus struct {
	Liked bool `json:"liked"`
}

type CommentInput struct {
	Message string `json:"message"`
}

// Comment is a stored comment with its author resolved.
type Comment struct {
	ID        string            `json:"id"`
	PostID    string            `json:"postId"`
	Message   string            `json:"message"`
	Owner     store.UserSummary `json:"owner"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type AddCommentResult struct {
	Comment        Comment `json:"comment"`
	CommentCounter int     `json:"commentCounter"`
}

type DeleteCommentResult struct {
	CommentID      string `json:"commentId"`
	CommentCounter int    `json:"commentCounter"`
}

func newComment(c store.Comment, owner store.UserSummary) Comment {
	return Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Message:   c.Message,
		Owner:     owner,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
