package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Community chat content is time-boxed: every post and reply carries its own
// expiry stamped at creation, and readers filter against it. Nothing is
// physically removed when the clock passes expires_at; items simply stop
// showing up.
const (
	ChatTTL    = 2 * time.Hour
	MinTextLen = 1
	MaxTextLen = 300
)

var ErrTextLength = errors.New("text must be between 1 and 300 characters")

type Author struct {
	ID     string `db:"author_id" json:"id"`
	Name   string `db:"author_name" json:"name"`
	Email  string `db:"author_email" json:"email,omitempty"`
	Avatar string `db:"author_avatar" json:"avatar,omitempty"`
}

type Post struct {
	ID         string    `db:"id" json:"id"`
	Author     Author    `db:"-" json:"author"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	ReplyCount int       `db:"reply_count" json:"reply_count"`
}

type Reply struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	Author    Author    `db:"-" json:"author"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// ValidateChatText enforces the [1,300] rune length gate shared by posts and
// replies.
func ValidateChatText(text string) error {
	n := len([]rune(text))
	if n < MinTextLen || n > MaxTextLen {
		return ErrTextLength
	}
	return nil
}

// NewPost stamps identity and the expiry window. Expiry is always exactly
// ChatTTL after creation.
func NewPost(author Author, text string, now time.Time) (*Post, error) {
	if err := ValidateChatText(text); err != nil {
		return nil, err
	}
	return &Post{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(ChatTTL),
	}, nil
}

// NewReply computes its own expiry independently of the parent post, so a
// reply may outlive the post it hangs under.
func NewReply(postID string, author Author, text string, now time.Time) (*Reply, error) {
	if err := ValidateChatText(text); err != nil {
		return nil, err
	}
	return &Reply{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(ChatTTL),
	}, nil
}

// ActiveAt reports whether the post is still visible at t. An item exactly at
// its expiry boundary is already expired.
func (p *Post) ActiveAt(t time.Time) bool { return p.ExpiresAt.After(t) }

func (r *Reply) ActiveAt(t time.Time) bool { return r.ExpiresAt.After(t) }
