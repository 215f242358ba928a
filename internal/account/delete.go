package account

import (
	"context"
	"errors"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/content"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/store"

	"golang.org/x/sync/errgroup"
)

// deleteFanOut bounds the store calls one deletion step runs at once.
const deleteFanOut = 8

// DeleteAccount removes the user and everything that points at them. The
// steps run in order, each one fanned out; a failure stops the remaining
// steps and nothing already deleted is restored.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func(context.Context, store.User) error
	}{
		{"comments", s.deleteComments},
		{"likes", s.deleteLikes},
		{"posts", s.deletePosts},
		{"followings", s.leaveFollowings},
		{"followers", s.leaveFollowers},
		{"user", s.deleteUser},
	}
	for _, step := range steps {
		if err := step.run(ctx, u); err != nil {
			return apperr.Internalf(err, "delete %s of %s", step.name, userID)
		}
	}
	metrics.Action(metrics.ActionDeleteUser)
	s.log.Info("account deleted", "user_id", userID)
	return nil
}

func fanOut[T any](ctx context.Context, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteFanOut)
	for _, item := range items {
		g.Go(func() error { return fn(gctx, item) })
	}
	return g.Wait()
}

func ignoreMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// deleteComments removes each comment and, when it was still there,
// decrements the counter of its post.
func (s *Service) deleteComments(ctx context.Context, u store.User) error {
	comments, err := s.st.Comments.ListByOwner(ctx, u.ID)
	if err != nil {
		return err
	}
	return fanOut(ctx, comments, func(ctx context.Context, c store.Comment) error {
		deleted, err := s.st.Comments.Delete(ctx, c.ID)
		if err != nil || !deleted {
			return err
		}
		_, err = s.st.Posts.IncComments(ctx, c.PostID, -1)
		return ignoreMissing(err)
	})
}

func (s *Service) deleteLikes(ctx context.Context, u store.User) error {
	likes, err := s.st.Likes.ListByOwner(ctx, u.ID)
	if err != nil {
		return err
	}
	return fanOut(ctx, likes, func(ctx context.Context, l store.Like) error {
		deleted, err := s.st.Likes.Delete(ctx, l.ID)
		if err != nil || !deleted {
			return err
		}
		_, err = s.st.Posts.IncLikes(ctx, l.PostID, -1)
		return ignoreMissing(err)
	})
}

func (s *Service) deletePosts(ctx context.Context, u store.User) error {
	posts, err := s.st.Posts.ListByOwner(ctx, u.ID)
	if err != nil {
		return err
	}
	return fanOut(ctx, posts, func(ctx context.Context, p store.Post) error {
		deleted, err := s.st.Posts.DeleteOwned(ctx, p.ID, u.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return content.Cascade(ctx, s.st, s.blobs, deleted)
	})
}

func (s *Service) leaveFollowings(ctx context.Context, u store.User) error {
	return fanOut(ctx, u.Followings, func(ctx context.Context, id string) error {
		return ignoreMissing(s.st.Users.RemoveRelation(ctx, id, store.Followers, u.ID))
	})
}

func (s *Service) leaveFollowers(ctx context.Context, u store.User) error {
	return fanOut(ctx, u.Followers, func(ctx context.Context, id string) error {
		return ignoreMissing(s.st.Users.RemoveRelation(ctx, id, store.Followings, u.ID))
	})
}

func (s *Service) deleteUser(ctx context.Context, u store.User) error {
	keys := make([]string, 0, 3)
	for _, kind := range []store.MediaKind{store.MediaProfilePicture, store.MediaCoverPicture, store.MediaStory} {
		if m := u.Media(kind); m != nil {
			keys = append(keys, m.Key)
		}
	}
	if err := fanOut(ctx, keys, s.blobs.Delete); err != nil {
		return err
	}
	_, err := s.st.Users.Delete(ctx, u.ID)
	return err
}
