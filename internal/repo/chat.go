package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus360/internal/model"
)

func (r *repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO community_posts
			(id, author_id, author_name, author_email, author_avatar, text, created_at, expires_at, reply_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Author.ID, post.Author.Name, post.Author.Email, post.Author.Avatar,
		post.Text, post.CreatedAt, post.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *repository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	query := `
		SELECT id, author_id, author_name, author_email, author_avatar,
		       text, created_at, expires_at, reply_count
		FROM community_posts
		WHERE id = $1 AND expires_at > $2
	`
	row := r.db.QueryRowContext(ctx, query, id, time.Now().UTC())

	var p model.Post
	if err := row.Scan(
		&p.ID, &p.Author.ID, &p.Author.Name, &p.Author.Email, &p.Author.Avatar,
		&p.Text, &p.CreatedAt, &p.ExpiresAt, &p.ReplyCount,
	); err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *repository) ListActivePosts(ctx context.Context) ([]model.Post, error) {
	query := `
		SELECT id, author_id, author_name, author_email, author_avatar,
		       text, created_at, expires_at, reply_count
		FROM community_posts
		WHERE expires_at > $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Author.ID, &p.Author.Name, &p.Author.Email, &p.Author.Avatar,
			&p.Text, &p.CreatedAt, &p.ExpiresAt, &p.ReplyCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *repository) CreateReplyTx(ctx context.Context, reply *model.Reply) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	// The parent must exist but may already be expired: a reply lives on its
	// own expiry clock.
	var parentID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM community_posts WHERE id = $1 FOR UPDATE
	`, reply.PostID).Scan(&parentID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock parent post: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO community_replies
			(id, post_id, author_id, author_name, author_email, author_avatar, text, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, reply.ID, reply.PostID, reply.Author.ID, reply.Author.Name, reply.Author.Email,
		reply.Author.Avatar, reply.Text, reply.CreatedAt, reply.ExpiresAt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert reply: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE community_posts SET reply_count = reply_count + 1 WHERE id = $1
	`, reply.PostID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to bump reply counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reply transaction: %w", err)
	}
	return nil
}

func (r *repository) ListActiveReplies(ctx context.Context, postID string) ([]model.Reply, error) {
	query := `
		SELECT id, post_id, author_id, author_name, author_email, author_avatar,
		       text, created_at, expires_at
		FROM community_replies
		WHERE post_id = $1 AND expires_at > $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, postID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	defer rows.Close()

	var replies []model.Reply
	for rows.Next() {
		var rp model.Reply
		if err := rows.Scan(
			&rp.ID, &rp.PostID, &rp.Author.ID, &rp.Author.Name, &rp.Author.Email,
			&rp.Author.Avatar, &rp.Text, &rp.CreatedAt, &rp.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, rp)
	}
	return replies, rows.Err()
}

func (r *repository) DeletePost(ctx context.Context, postID, requesterID string, admin bool) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var authorID string
	err = tx.QueryRowContext(ctx, `
		SELECT author_id FROM community_posts WHERE id = $1 FOR UPDATE
	`, postID).Scan(&authorID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock post: %w", err)
	}

	if !admin && authorID != requesterID {
		_ = tx.Rollback()
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM community_replies WHERE post_id = $1`, postID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete replies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM community_posts WHERE id = $1`, postID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return nil
}
