package inmem

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus360/internal/model"
	"campus360/internal/repo"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func mustPost(t *testing.T, store *Store, author model.Author, text string, now time.Time) *model.Post {
	t.Helper()
	p, err := model.NewPost(author, text, now)
	require.NoError(t, err)
	require.NoError(t, store.CreatePost(context.Background(), p))
	return p
}

func TestPostVisibleUntilTTL(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "u1", Name: "Ann"}, "see you at the quad", start)

	clock.Advance(time.Hour + 59*time.Minute)
	got, err := store.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	feed, err := store.ListActivePosts(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	// One second past the two hour mark the post reads as deleted.
	clock.Advance(time.Minute + time.Second)
	_, err = store.GetPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	feed, err = store.ListActivePosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestPostExpiredExactlyAtBoundary(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)

	p := mustPost(t, store, model.Author{ID: "u1"}, "boundary", start)

	clock.Advance(model.ChatTTL)
	_, err := store.GetPostByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestFeedOrderedNewestFirst(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)

	first := mustPost(t, store, model.Author{ID: "u1"}, "first", start)
	second := mustPost(t, store, model.Author{ID: "u2"}, "second", start.Add(time.Minute))

	feed, err := store.ListActivePosts(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}

func TestReplyBumpsParentCounter(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "u1"}, "parent", start)

	reply, err := model.NewReply(p.ID, model.Author{ID: "u2"}, "child", start.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, store.CreateReplyTx(ctx, reply))

	got, err := store.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReplyCount)

	replies, err := store.ListActiveReplies(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 1)
}

func TestReplyCounterSurvivesConcurrency(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "u1"}, "parent", start)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply, err := model.NewReply(p.ID, model.Author{ID: "u2"}, "child", start)
			require.NoError(t, err)
			assert.NoError(t, store.CreateReplyTx(ctx, reply))
		}()
	}
	wg.Wait()

	got, err := store.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.ReplyCount)
}

func TestReplyUnderExpiredParent(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "u1"}, "parent", start)

	// Parent expires, but its row is still there; a reply is allowed and
	// lives on its own clock.
	clock.Advance(model.ChatTTL + time.Minute)
	reply, err := model.NewReply(p.ID, model.Author{ID: "u2"}, "late reply", clock.Now())
	require.NoError(t, err)
	require.NoError(t, store.CreateReplyTx(ctx, reply))

	_, err = store.GetPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	replies, err := store.ListActiveReplies(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 1)
}

func TestExpiredRepliesFiltered(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "u1"}, "parent", start)

	early, err := model.NewReply(p.ID, model.Author{ID: "u2"}, "early", start)
	require.NoError(t, err)
	require.NoError(t, store.CreateReplyTx(ctx, early))

	clock.Advance(time.Hour)
	late, err := model.NewReply(p.ID, model.Author{ID: "u3"}, "late", clock.Now())
	require.NoError(t, err)
	require.NoError(t, store.CreateReplyTx(ctx, late))

	// 90 more minutes: the early reply is past TTL, the late one is not.
	clock.Advance(90 * time.Minute)
	replies, err := store.ListActiveReplies(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, late.ID, replies[0].ID)
}

func TestDeletePostAuthorization(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "author"}, "mine", start)

	err := store.DeletePost(ctx, p.ID, "stranger", false)
	assert.ErrorIs(t, err, repo.ErrForbidden)

	require.NoError(t, store.DeletePost(ctx, p.ID, "author", false))
	_, err = store.GetPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeletePostAsAdminRemovesReplies(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := NewWithClock(clock.Now)
	ctx := context.Background()

	p := mustPost(t, store, model.Author{ID: "author"}, "mine", start)
	reply, err := model.NewReply(p.ID, model.Author{ID: "u2"}, "child", start)
	require.NoError(t, err)
	require.NoError(t, store.CreateReplyTx(ctx, reply))

	require.NoError(t, store.DeletePost(ctx, p.ID, "moderator", true))

	replies, err := store.ListActiveReplies(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestDeleteMissingPost(t *testing.T) {
	store := New()
	err := store.DeletePost(context.Background(), "nope", "u1", true)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
