package engagement

import (
	"context"
	"sync"
	"testing"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/store"
	"backend-friendbook/internal/store/memory"
	"backend-friendbook/internal/stream"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []stream.Event
}

func (r *recorder) Publish(_ context.Context, _ string, ev stream.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixture struct {
	svc   *Service
	st    store.Store
	rec   *recorder
	owner store.User
	fan   store.User
	post  store.Post
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New().Store()
	rec := &recorder{}

	owner := store.User{ID: uuid.NewString(), Username: "owner", Email: "owner@example.com"}
	fan := store.User{ID: uuid.NewString(), Username: "fan", Email: "fan@example.com"}
	require.NoError(t, st.Users.Create(ctx, &owner))
	require.NoError(t, st.Users.Create(ctx, &fan))
	post := store.Post{ID: uuid.NewString(), OwnerID: owner.ID, Message: "hello"}
	require.NoError(t, st.Posts.Create(ctx, &post))

	return fixture{svc: NewService(st, rec), st: st, rec: rec, owner: owner, fan: fan, post: post}
}

func (f fixture) counters(t *testing.T) (int, int) {
	t.Helper()
	p, err := f.st.Posts.ByID(context.Background(), f.post.ID)
	require.NoError(t, err)
	return p.LikeCounter, p.CommentCounter
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res, err := f.svc.ToggleLike(ctx, f.fan.ID, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikeCounter: 1}, res)
	require.Len(t, f.rec.events, 1)
	assert.Equal(t, stream.EventLike, f.rec.events[0].Type)

	status, err := f.svc.LikeStatus(ctx, f.fan.ID, f.post.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)

	res, err = f.svc.ToggleLike(ctx, f.fan.ID, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikeCounter: 0}, res)

	_, err = f.svc.ToggleLike(ctx, f.fan.ID, uuid.NewString())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestLikeCounterMatchesRecords(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	var fans []string
	for i := 0; i < 5; i++ {
		u := store.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com"}
		require.NoError(t, f.st.Users.Create(ctx, &u))
		fans = append(fans, u.ID)
	}
	for _, id := range fans {
		_, err := f.svc.ToggleLike(ctx, id, f.post.ID)
		require.NoError(t, err)
	}
	for _, id := range fans[:2] {
		_, err := f.svc.ToggleLike(ctx, id, f.post.ID)
		require.NoError(t, err)
	}

	likes, _ := f.counters(t)
	assert.Equal(t, 3, likes)
}

// racyLikes misses the existing like on delete, as when another toggle
// created it in between.
type racyLikes struct {
	store.Likes
}

func (racyLikes) DeleteByOwnerAndPost(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestDuplicateLikeDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.ToggleLike(ctx, f.fan.ID, f.post.ID)
	require.NoError(t, err)

	st := f.st
	st.Likes = racyLikes{Likes: f.st.Likes}
	svc := NewService(st, nil)

	res, err := svc.ToggleLike(ctx, f.fan.ID, f.post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	likes, _ := f.counters(t)
	assert.Equal(t, 1, likes)
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.AddComment(ctx, f.fan.ID, f.post.ID, "   ")
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	added, err := f.svc.AddComment(ctx, f.fan.ID, f.post.ID, "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", added.Comment.Message)
	assert.Equal(t, 1, added.CommentCounter)
	assert.Equal(t, "fan", added.Comment.Owner.Username)

	_, err = f.svc.UpdateComment(ctx, f.owner.ID, added.Comment.ID, "hijack")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	updated, err := f.svc.UpdateComment(ctx, f.fan.ID, added.Comment.ID, "nicer")
	require.NoError(t, err)
	assert.Equal(t, "nicer", updated.Message)

	list, err := f.svc.PostComments(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.fan.ID, list[0].Owner.ID)

	_, err = f.svc.DeleteComment(ctx, f.owner.ID, added.Comment.ID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	deleted, err := f.svc.DeleteComment(ctx, f.fan.ID, added.Comment.ID)
	require.NoError(t, err)
	assert.Equal(t, DeleteCommentResult{CommentID: added.Comment.ID, CommentCounter: 0}, deleted)

	_, comments := f.counters(t)
	assert.Equal(t, 0, comments)
}

func TestAddCommentMissingPost(t *testing.T) {
	f := setup(t)
	_, err := f.svc.AddComment(context.Background(), f.fan.ID, uuid.NewString(), "hi")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = f.svc.AddComment(context.Background(), f.fan.ID, "bad-id", "hi")
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestCommentOnOwnPostIsNotAnnounced(t *testing.T) {
	f := setup(t)
	_, err := f.svc.AddComment(context.Background(), f.owner.ID, f.post.ID, "thanks")
	require.NoError(t, err)
	assert.Empty(t, f.rec.events)
}
