// Package content owns posts: only the author may change or delete one, and
// deleting a post takes its likes, comments and image with it.
package content

import (
	"context"
	"errors"
	"strings"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/logger"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/store"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const maxMessageLength = 1000

var (
	errEmptyPost     = apperr.New(apperr.BadRequest, "a post needs a message or an image")
	errEmptyUpdate   = apperr.New(apperr.BadRequest, "nothing to update")
	errMessageLength = apperr.New(apperr.BadRequest, "post message is too long")
	errNotPostOwner  = apperr.New(apperr.Forbidden, "you can only change your own posts")
	errPostNotFound  = apperr.New(apperr.NotFound, "post not found")
	errNoImage       = apperr.New(apperr.NotFound, "post has no image")
)

type Service struct {
	st    store.Store
	blobs media.Blobs
	log   *logger.Logger
}

func NewService(st store.Store, blobs media.Blobs, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{st: st, blobs: blobs, log: log}
}

func cleanMessage(message *string) (string, error) {
	if message == nil {
		return "", nil
	}
	m := strings.TrimSpace(*message)
	if len([]rune(m)) > maxMessageLength {
		return "", errMessageLength
	}
	return m, nil
}

func (s *Service) CreatePost(ctx context.Context, userID string, message *string, image *media.Upload) (Post, error) {
	msg, err := cleanMessage(message)
	if err != nil {
		return Post{}, err
	}
	if msg == "" && image == nil {
		return Post{}, errEmptyPost
	}

	p := store.Post{ID: uuid.NewString(), OwnerID: userID, Message: msg}
	if image != nil {
		p.Image, err = media.Save(ctx, s.blobs, media.PostKey(p.ID), media.PostImageLink(p.ID), *image)
		if err != nil {
			return Post{}, apperr.Internalf(err, "store image of post %s", p.ID)
		}
	}

	if err := s.st.Posts.Create(ctx, &p); err != nil {
		if p.Image != nil {
			s.dropBlob(ctx, p.Image.Key)
		}
		return Post{}, apperr.FromStore(err, "create post")
	}
	metrics.Action(metrics.ActionPost)

	owner, err := s.owner(ctx, userID)
	if err != nil {
		return Post{}, err
	}
	return newPost(p, owner), nil
}

// UpdatePost changes the message, the image or both of a post the user owns.
func (s *Service) UpdatePost(ctx context.Context, userID, postID string, message *string, image *media.Upload) (Post, error) {
	msg, err := cleanMessage(message)
	if err != nil {
		return Post{}, err
	}
	// A blank message counts as no message.
	if msg == "" && image == nil {
		return Post{}, errEmptyUpdate
	}

	var patch store.PostPatch
	if msg != "" {
		patch.Message = &msg
	}
	if image != nil {
		existing, err := s.st.Posts.ByID(ctx, postID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && existing.OwnerID != userID) {
			return Post{}, errNotPostOwner
		}
		if err != nil {
			return Post{}, apperr.FromStore(err, "load post %s", postID)
		}
		patch.Image, err = media.Save(ctx, s.blobs, media.PostKey(postID), media.PostImageLink(postID), *image)
		if err != nil {
			return Post{}, apperr.Internalf(err, "store image of post %s", postID)
		}
	}

	p, err := s.st.Posts.UpdateOwned(ctx, postID, userID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return Post{}, errNotPostOwner
	}
	if err != nil {
		return Post{}, apperr.FromStore(err, "update post %s", postID)
	}

	owner, err := s.owner(ctx, userID)
	if err != nil {
		return Post{}, err
	}
	return newPost(p, owner), nil
}

// DeletePost removes the post and then, independently of each other, the
// likes, comments and image that belong to it.
func (s *Service) DeletePost(ctx context.Context, userID, postID string) (DeletePostResult, error) {
	p, err := s.st.Posts.DeleteOwned(ctx, postID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return DeletePostResult{}, errNotPostOwner
	}
	if err != nil {
		return DeletePostResult{}, apperr.FromStore(err, "delete post %s", postID)
	}
	if err := Cascade(ctx, s.st, s.blobs, p); err != nil {
		return DeletePostResult{}, apperr.Internalf(err, "clean up post %s", postID)
	}
	return DeletePostResult{PostID: p.ID}, nil
}

// Cascade deletes the likes, comments and image of a deleted post.
func Cascade(ctx context.Context, st store.Store, blobs media.Blobs, p store.Post) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := st.Likes.DeleteByPost(gctx, p.ID)
		return err
	})
	g.Go(func() error {
		_, err := st.Comments.DeleteByPost(gctx, p.ID)
		return err
	})
	if p.Image != nil {
		g.Go(func() error { return blobs.Delete(gctx, p.Image.Key) })
	}
	return g.Wait()
}

// Timeline returns every post, newest first.
func (s *Service) Timeline(ctx context.Context) ([]Post, error) {
	posts, err := s.st.Posts.List(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "list posts")
	}
	return s.withOwners(ctx, posts)
}

func (s *Service) UserPosts(ctx context.Context, userID string) ([]Post, error) {
	posts, err := s.st.Posts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.FromStore(err, "list posts of %s", userID)
	}
	return s.withOwners(ctx, posts)
}

func (s *Service) PostImage(ctx context.Context, postID string) (Image, error) {
	p, err := s.st.Posts.ByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return Image{}, errPostNotFound
	}
	if err != nil {
		return Image{}, apperr.FromStore(err, "load post %s", postID)
	}
	if p.Image == nil {
		return Image{}, errNoImage
	}

	data, err := s.blobs.Get(ctx, p.Image.Key)
	if errors.Is(err, media.ErrNotFound) {
		return Image{}, errNoImage
	}
	if err != nil {
		return Image{}, apperr.Internalf(err, "read image of post %s", postID)
	}
	return Image{Data: data, Mimetype: p.Image.Mimetype}, nil
}

func (s *Service) withOwners(ctx context.Context, posts []store.Post) ([]Post, error) {
	ownerIDs := lo.Uniq(lo.Map(posts, func(p store.Post, _ int) string { return p.OwnerID }))
	owners, err := s.st.Users.ByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, apperr.FromStore(err, "load post owners")
	}
	byID := lo.KeyBy(owners, func(u store.User) string { return u.ID })

	return lo.Map(posts, func(p store.Post, _ int) Post {
		owner, ok := byID[p.OwnerID]
		if !ok {
			return newPost(p, store.UserSummary{ID: p.OwnerID})
		}
		return newPost(p, owner.Summary())
	}), nil
}

func (s *Service) owner(ctx context.Context, userID string) (store.UserSummary, error) {
	u, err := s.st.Users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.UserSummary{ID: userID}, nil
	}
	if err != nil {
		return store.UserSummary{}, apperr.FromStore(err, "load user %s", userID)
	}
	return u.Summary(), nil
}

func (s *Service) dropBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn("orphaned blob", "key", key, "error", err)
	}
}
