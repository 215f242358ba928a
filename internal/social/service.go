// Package social keeps the follow graph symmetric: B is among A's followers
// exactly when A is among B's followings.
package social

import (
	"context"
	"errors"
	"sort"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/store"
	"backend-friendbook/internal/stream"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const coldStartSuggestions = 5

var errInvalidUser = apperr.New(apperr.BadRequest, "invalid user")

type Service struct {
	users  store.Users
	events stream.Publisher
}

func NewService(users store.Users, events stream.Publisher) *Service {
	if events == nil {
		events = stream.Nop{}
	}
	return &Service{users: users, events: events}
}

func (s *Service) target(ctx context.Context, id string) (store.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return store.User{}, apperr.FromStore(err, "load user %s", id)
	}
	return u, nil
}

// subject loads the user whose lists are requested; a missing one is the
// caller's mistake.
func (s *Service) subject(ctx context.Context, id string) (store.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, errInvalidUser
	}
	if err != nil {
		return store.User{}, apperr.FromStore(err, "load user %s", id)
	}
	return u, nil
}

// FollowOrUnfollow toggles the follow edge from currentID to targetID. Both
// sides are written by independent updates; a failure in one is not undone.
func (s *Service) FollowOrUnfollow(ctx context.Context, currentID, targetID string) (FollowResult, error) {
	if currentID == targetID {
		return FollowResult{}, apperr.ErrSelfFollow
	}
	if _, err := s.target(ctx, targetID); err != nil {
		return FollowResult{}, err
	}
	current, err := s.target(ctx, currentID)
	if err != nil {
		return FollowResult{}, err
	}

	following := lo.Contains(current.Followings, targetID)
	update := s.users.AddRelation
	if following {
		update = s.users.RemoveRelation
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return update(gctx, currentID, store.Followings, targetID) })
	g.Go(func() error { return update(gctx, targetID, store.Followers, currentID) })
	if err := g.Wait(); err != nil {
		return FollowResult{}, apperr.FromStore(err, "update follow %s -> %s", currentID, targetID)
	}

	if following {
		metrics.Action(metrics.ActionUnfollow)
		return FollowResult{Followed: false}, nil
	}
	metrics.Action(metrics.ActionFollow)
	s.events.Publish(ctx, targetID, stream.Event{Type: stream.EventFollow, ActorID: currentID})
	return FollowResult{Followed: true}, nil
}

// RemoveFriend drops every edge between the two users in both directions.
func (s *Service) RemoveFriend(ctx context.Context, currentID, targetID string) error {
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, edge := range []struct {
		user, member string
		rel          store.Relation
	}{
		{currentID, targetID, store.Followers},
		{currentID, targetID, store.Followings},
		{targetID, currentID, store.Followers},
		{targetID, currentID, store.Followings},
	} {
		g.Go(func() error {
			err := s.users.RemoveRelation(gctx, edge.user, edge.rel, edge.member)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return apperr.FromStore(err, "remove friend %s <-> %s", currentID, targetID)
	}
	return nil
}

func (s *Service) FollowStatus(ctx context.Context, currentID, targetID string) (FollowStatus, error) {
	if err := store.CheckID(targetID); err != nil {
		return FollowStatus{}, apperr.FromStore(err, "follow status")
	}
	current, err := s.target(ctx, currentID)
	if err != nil {
		return FollowStatus{}, err
	}
	return FollowStatus{Following: lo.Contains(current.Followings, targetID)}, nil
}

// Friends returns followers and followings once each, ordered by id.
func (s *Service) Friends(ctx context.Context, userID string) ([]Friend, error) {
	u, err := s.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.resolve(ctx, lo.Union(u.Followers, u.Followings))
	if err != nil {
		return nil, err
	}
	return lo.Map(friends, func(f store.User, _ int) Friend {
		return Friend{UserSummary: f.Summary(), FollowsMe: lo.Contains(u.Followers, f.ID)}
	}), nil
}

func (s *Service) Followers(ctx context.Context, userID string) ([]store.UserSummary, error) {
	u, err := s.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, u.Followers)
}

func (s *Service) Followings(ctx context.Context, userID string) ([]store.UserSummary, error) {
	u, err := s.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, u.Followings)
}

// Suggestions proposes friends of friends the user is not connected to yet,
// or a handful of other users when there are none.
func (s *Service) Suggestions(ctx context.Context, userID string) ([]store.UserSummary, error) {
	u, err := s.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	direct := lo.Union(u.Followers, u.Followings)
	neighbours, err := s.resolve(ctx, direct)
	if err != nil {
		return nil, err
	}

	candidates := lo.Uniq(lo.FlatMap(neighbours, func(n store.User, _ int) []string {
		return append(append([]string{}, n.Followers...), n.Followings...)
	}))
	candidates = lo.Without(candidates, append(direct, userID)...)
	if len(candidates) > 0 {
		suggested, err := s.summaries(ctx, candidates)
		if err != nil {
			return nil, err
		}
		if len(suggested) > 0 {
			return suggested, nil
		}
	}

	others, err := s.users.List(ctx, userID, coldStartSuggestions)
	if err != nil {
		return nil, apperr.FromStore(err, "list users")
	}
	return lo.Map(others, func(o store.User, _ int) store.UserSummary { return o.Summary() }), nil
}

func (s *Service) AllUsers(ctx context.Context, userID string) ([]store.UserSummary, error) {
	users, err := s.users.List(ctx, userID, 0)
	if err != nil {
		return nil, apperr.FromStore(err, "list users")
	}
	return lo.Map(users, func(u store.User, _ int) store.UserSummary { return u.Summary() }), nil
}

// TimelineStories lists the stories currently set by the user's friends.
func (s *Service) TimelineStories(ctx context.Context, userID string) ([]Story, error) {
	u, err := s.subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.resolve(ctx, lo.Union(u.Followers, u.Followings))
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(friends, func(f store.User, _ int) (Story, bool) {
		if f.Story == nil {
			return Story{}, false
		}
		return Story{ID: f.ID, Username: f.Username, StoryLink: f.Story.Link}, true
	}), nil
}

// resolve loads ids, skipping users that no longer exist, sorted by id.
func (s *Service) resolve(ctx context.Context, ids []string) ([]store.User, error) {
	users, err := s.users.ByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.FromStore(err, "load users")
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Service) summaries(ctx context.Context, ids []string) ([]store.UserSummary, error) {
	users, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u store.User, _ int) store.UserSummary { return u.Summary() }), nil
}
