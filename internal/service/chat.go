package service

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/internal/ws"
	"campus360/pkg/validator"
)

func (s *service) CreatePost(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	post, err := model.NewPost(model.Author{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}, req.Text, time.Now().UTC())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	if err := s.repo.CreatePost(ctx.Request.Context(), post); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("post_id", post.ID).Str("author_id", user.ID).Msg("post created")
	s.broadcast("new_post", post)
	dto.SuccessCreatedResponse(ctx, post)
}

func (s *service) GetFeed(ctx *ginext.Context) {
	posts, err := s.repo.ListActivePosts(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	dto.SuccessResponse(ctx, posts)
}

func (s *service) GetPost(ctx *ginext.Context) {
	postID := ctx.Param("id")

	post, err := s.repo.GetPostByID(ctx.Request.Context(), postID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	replies, err := s.repo.ListActiveReplies(ctx.Request.Context(), postID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if replies == nil {
		replies = []model.Reply{}
	}

	dto.SuccessResponse(ctx, struct {
		Post    *model.Post   `json:"post"`
		Replies []model.Reply `json:"replies"`
	}{post, replies})
}

func (s *service) DeletePost(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}
	postID := ctx.Param("id")

	if err := s.repo.DeletePost(ctx.Request.Context(), postID, user.ID, user.IsAdmin()); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("post_id", postID).Str("requester", user.ID).Msg("post deleted")
	s.broadcast("delete_post", map[string]string{"id": postID})
	dto.SuccessResponse(ctx, map[string]string{"id": postID})
}

func (s *service) CreateReply(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}
	postID := ctx.Param("id")

	var req dto.CreateReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	reply, err := model.NewReply(postID, model.Author{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}, req.Text, time.Now().UTC())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	if err := s.repo.CreateReplyTx(ctx.Request.Context(), reply); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("post_id", postID).Str("reply_id", reply.ID).Msg("reply created")
	s.broadcast("new_reply", reply)
	dto.SuccessCreatedResponse(ctx, reply)
}

func (s *service) GetReplies(ctx *ginext.Context) {
	// Replies stay readable after the parent expires; the thread view simply
	// shows them without a parent.
	replies, err := s.repo.ListActiveReplies(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if replies == nil {
		replies = []model.Reply{}
	}
	dto.SuccessResponse(ctx, replies)
}

func (s *service) ChatWS(ctx *ginext.Context) {
	ws.ServeWs(s.hub, ctx.Writer, ctx.Request)
}
