// Package engagement records likes and comments and keeps each post's
// likeCounter and commentCounter equal to the number of records behind them.
package engagement

import (
	"context"
	"errors"
	"strings"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/store"
	"backend-friendbook/internal/stream"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const maxCommentLength = 1000

var (
	errPostNotFound    = apperr.New(apperr.NotFound, "post not found")
	errEmptyComment    = apperr.New(apperr.BadRequest, "comment message is required")
	errCommentTooLong  = apperr.New(apperr.BadRequest, "comment message is too long")
	errNotCommentOwner = apperr.New(apperr.Forbidden, "you can only change your own comments")
)

type Service struct {
	st     store.Store
	events stream.Publisher
}

func NewService(st store.Store, events stream.Publisher) *Service {
	if events == nil {
		events = stream.Nop{}
	}
	return &Service{st: st, events: events}
}

func (s *Service) post(ctx context.Context, postID string) (store.Post, error) {
	p, err := s.st.Posts.ByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Post{}, errPostNotFound
	}
	if err != nil {
		return store.Post{}, apperr.FromStore(err, "load post %s", postID)
	}
	return p, nil
}

// ToggleLike removes the user's like on the post if there is one and adds it
// otherwise. The counter only moves when a like record was actually removed
// or created, so a lost race between two toggles cannot skew it.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (LikeResult, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return LikeResult{}, err
	}

	removed, err := s.st.Likes.DeleteByOwnerAndPost(ctx, userID, postID)
	if err != nil {
		return LikeResult{}, apperr.FromStore(err, "unlike post %s", postID)
	}
	if removed {
		n, err := s.st.Posts.IncLikes(ctx, postID, -1)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return LikeResult{}, apperr.FromStore(err, "decrement likes of %s", postID)
		}
		metrics.Action(metrics.ActionUnlike)
		return LikeResult{Liked: false, LikeCounter: n}, nil
	}

	err = s.st.Likes.Create(ctx, &store.Like{ID: uuid.NewString(), OwnerID: userID, PostID: postID})
	if errors.Is(err, store.ErrConflict) {
		return LikeResult{Liked: true, LikeCounter: p.LikeCounter}, nil
	}
	if err != nil {
		return LikeResult{}, apperr.FromStore(err, "like post %s", postID)
	}
	n, err := s.st.Posts.IncLikes(ctx, postID, 1)
	if err != nil {
		return LikeResult{}, apperr.FromStore(err, "increment likes of %s", postID)
	}

	metrics.Action(metrics.ActionLike)
	if p.OwnerID != userID {
		s.events.Publish(ctx, p.OwnerID, stream.Event{Type: stream.EventLike, ActorID: userID, PostID: postID})
	}
	return LikeResult{Liked: true, LikeCounter: n}, nil
}

func (s *Service) LikeStatus(ctx context.Context, userID, postID string) (LikeStatus, error) {
	ok, err := s.st.Likes.Exists(ctx, userID, postID)
	if err != nil {
		return LikeStatus{}, apperr.FromStore(err, "like status of %s", postID)
	}
	return LikeStatus{Liked: ok}, nil
}

func cleanMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errEmptyComment
	}
	if len([]rune(message)) > maxCommentLength {
		return "", errCommentTooLong
	}
	return message, nil
}

func (s *Service) AddComment(ctx context.Context, userID, postID, message string) (AddCommentResult, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return AddCommentResult{}, err
	}
	p, err := s.post(ctx, postID)
	if err != nil {
		return AddCommentResult{}, err
	}

	c := store.Comment{ID: uuid.NewString(), OwnerID: userID, PostID: postID, Message: message}
	if err := s.st.Comments.Create(ctx, &c); err != nil {
		return AddCommentResult{}, apperr.FromStore(err, "create comment on %s", postID)
	}

	var (
		counter int
		owner   store.UserSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.st.Posts.IncComments(gctx, postID, 1)
		counter = n
		return err
	})
	g.Go(func() error {
		var err error
		owner, err = s.owner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return AddCommentResult{}, apperr.FromStore(err, "finish comment on %s", postID)
	}

	metrics.Action(metrics.ActionComment)
	if p.OwnerID != userID {
		s.events.Publish(ctx, p.OwnerID, stream.Event{Type: stream.EventComment, ActorID: userID, PostID: postID, CommentID: c.ID})
	}
	return AddCommentResult{Comment: newComment(c, owner), CommentCounter: counter}, nil
}

func (s *Service) UpdateComment(ctx context.Context, userID, commentID, message string) (Comment, error) {
	message, err := cleanMessage(message)
	if err != nil {
		return Comment{}, err
	}
	c, err := s.st.Comments.UpdateOwned(ctx, commentID, userID, message)
	if errors.Is(err, store.ErrNotFound) {
		return Comment{}, errNotCommentOwner
	}
	if err != nil {
		return Comment{}, apperr.FromStore(err, "update comment %s", commentID)
	}
	owner, err := s.owner(ctx, userID)
	if err != nil {
		return Comment{}, apperr.FromStore(err, "load comment owner")
	}
	return newComment(c, owner), nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) (DeleteCommentResult, error) {
	c, err := s.st.Comments.DeleteOwned(ctx, commentID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return DeleteCommentResult{}, errNotCommentOwner
	}
	if err != nil {
		return DeleteCommentResult{}, apperr.FromStore(err, "delete comment %s", commentID)
	}

	n, err := s.st.Posts.IncComments(ctx, c.PostID, -1)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return DeleteCommentResult{}, apperr.FromStore(err, "decrement comments of %s", c.PostID)
	}
	return DeleteCommentResult{CommentID: c.ID, CommentCounter: n}, nil
}

// PostComments lists a post's comments oldest first.
func (s *Service) PostComments(ctx context.Context, postID string) ([]Comment, error) {
	if _, err := s.post(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.st.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperr.FromStore(err, "list comments of %s", postID)
	}

	ownerIDs := lo.Uniq(lo.Map(comments, func(c store.Comment, _ int) string { return c.OwnerID }))
	owners, err := s.st.Users.ByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, apperr.FromStore(err, "load comment owners")
	}
	byID := lo.KeyBy(owners, func(u store.User) string { return u.ID })

	return lo.Map(comments, func(c store.Comment, _ int) Comment {
		owner, ok := byID[c.OwnerID]
		if !ok {
			return newComment(c, store.UserSummary{ID: c.OwnerID})
		}
		return newComment(c, owner.Summary())
	}), nil
}

func (s *Service) owner(ctx context.Context, userID string) (store.UserSummary, error) {
	u, err := s.st.Users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.UserSummary{ID: userID}, nil
	}
	if err != nil {
		return store.UserSummary{}, err
	}
	return u.Summary(), nil
}
