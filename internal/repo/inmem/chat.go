package inmem

import (
	"context"
	"sort"
	"time"

	"campus360/internal/model"
	"campus360/internal/repo"
)

func sortByTimeDesc[T any](s []T, key func(T) time.Time) {
	sort.Slice(s, func(i, j int) bool { return key(s[i]).After(key(s[j])) })
}

func sortByTimeAsc[T any](s []T, key func(T) time.Time) {
	sort.Slice(s, func(i, j int) bool { return key(s[i]).Before(key(s[j])) })
}

func sortByString[T any](s []T, key func(T) string) {
	sort.Slice(s, func(i, j int) bool { return key(s[i]) < key(s[j]) })
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok || !p.ActiveAt(s.now()) {
		// An expired post reads the same as a deleted one.
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListActivePosts(ctx context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var posts []model.Post
	for _, p := range s.posts {
		if p.ActiveAt(now) {
			posts = append(posts, *p)
		}
	}
	sortByTimeDesc(posts, func(p model.Post) time.Time { return p.CreatedAt })
	return posts, nil
}

func (s *Store) CreateReplyTx(ctx context.Context, reply *model.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Parent must exist but may already be expired.
	parent, ok := s.posts[reply.PostID]
	if !ok {
		return repo.ErrNotFound
	}

	cp := *reply
	s.replies[reply.PostID] = append(s.replies[reply.PostID], &cp)
	parent.ReplyCount++
	return nil
}

func (s *Store) ListActiveReplies(ctx context.Context, postID string) ([]model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var replies []model.Reply
	for _, rp := range s.replies[postID] {
		if rp.ActiveAt(now) {
			replies = append(replies, *rp)
		}
	}
	sortByTimeAsc(replies, func(r model.Reply) time.Time { return r.CreatedAt })
	return replies, nil
}

func (s *Store) DeletePost(ctx context.Context, postID, requesterID string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return repo.ErrNotFound
	}
	if !admin && p.Author.ID != requesterID {
		return repo.ErrForbidden
	}
	delete(s.posts, postID)
	delete(s.replies, postID)
	return nil
}
