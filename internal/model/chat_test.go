package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChatText(t *testing.T) {
	assert.ErrorIs(t, ValidateChatText(""), ErrTextLength)
	assert.NoError(t, ValidateChatText("a"))
	assert.NoError(t, ValidateChatText(strings.Repeat("x", 300)))
	assert.ErrorIs(t, ValidateChatText(strings.Repeat("x", 301)), ErrTextLength)

	// Length is counted in runes, not bytes.
	assert.NoError(t, ValidateChatText(strings.Repeat("я", 300)))
	assert.ErrorIs(t, ValidateChatText(strings.Repeat("я", 301)), ErrTextLength)
}

func TestNewPostStampsExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	p, err := NewPost(Author{ID: "u1", Name: "Ann"}, "hello", now)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now.Add(ChatTTL), p.ExpiresAt)
	assert.Zero(t, p.ReplyCount)
}

func TestNewPostRejectsBadText(t *testing.T) {
	now := time.Now()
	_, err := NewPost(Author{ID: "u1"}, "", now)
	assert.ErrorIs(t, err, ErrTextLength)
}

func TestActiveAtBoundary(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	p, err := NewPost(Author{ID: "u1"}, "hi", created)
	require.NoError(t, err)

	assert.True(t, p.ActiveAt(created))
	assert.True(t, p.ActiveAt(created.Add(ChatTTL-time.Second)))
	// Exactly at the expiry instant the post is already gone.
	assert.False(t, p.ActiveAt(created.Add(ChatTTL)))
	assert.False(t, p.ActiveAt(created.Add(ChatTTL+time.Second)))
}

func TestReplyExpiryIndependentOfParent(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	post, err := NewPost(Author{ID: "u1"}, "parent", t0)
	require.NoError(t, err)

	// Reply created 90 minutes in: it outlives the parent by 90 minutes.
	t1 := t0.Add(90 * time.Minute)
	reply, err := NewReply(post.ID, Author{ID: "u2"}, "child", t1)
	require.NoError(t, err)

	afterParent := post.ExpiresAt.Add(time.Minute)
	assert.False(t, post.ActiveAt(afterParent))
	assert.True(t, reply.ActiveAt(afterParent))
	assert.Equal(t, t1.Add(ChatTTL), reply.ExpiresAt)
}
