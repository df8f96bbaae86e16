package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/internal/notify"
	"campus360/pkg/validator"
)

// === Transport ===

func (s *service) GetTransportRoutes(ctx *ginext.Context) {
	routes, err := s.repo.ListTransportRoutes(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if routes == nil {
		routes = []model.TransportRoute{}
	}
	dto.SuccessResponse(ctx, routes)
}

func (s *service) UpsertTransportRoute(ctx *ginext.Context) {
	var req dto.TransportRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	route := &model.TransportRoute{
		ID:               ctx.Param("id"),
		Name:             req.Name,
		Stops:            req.Stops,
		FirstDeparture:   req.FirstDeparture,
		LastDeparture:    req.LastDeparture,
		FrequencyMinutes: req.FrequencyMinutes,
	}
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	if err := s.repo.UpsertTransportRoute(ctx.Request.Context(), route); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	msg := dto.NotificationMessage{
		Type:      notify.TypeTransport,
		Title:     "Transport update",
		Body:      fmt.Sprintf("Schedule for route %q has changed.", route.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publish(msg, 0); err != nil {
		s.log.Error().Err(err).Msg("failed to publish transport notification")
	}

	dto.SuccessResponse(ctx, route)
}

// === Grievances ===

func (s *service) CreateGrievance(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.CreateGrievanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	now := time.Now().UTC()
	g := &model.Grievance{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Category:  req.Category,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    model.GrievanceOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateGrievance(ctx.Request.Context(), g); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("grievance_id", g.ID).Str("user_id", user.ID).Msg("grievance filed")
	dto.SuccessCreatedResponse(ctx, g)
}

// GetGrievances returns the caller's own grievances; admins see everything.
func (s *service) GetGrievances(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	userID := user.ID
	if user.IsAdmin() {
		userID = ""
	}
	items, err := s.repo.ListGrievances(ctx.Request.Context(), userID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if items == nil {
		items = []model.Grievance{}
	}
	dto.SuccessResponse(ctx, items)
}

func (s *service) UpdateGrievanceStatus(ctx *ginext.Context) {
	var req dto.UpdateGrievanceStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	id := ctx.Param("id")
	if err := s.repo.UpdateGrievanceStatus(ctx.Request.Context(), id, req.Status); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"id": id, "status": req.Status})
}

// === Users ===

func (s *service) UpsertMe(ctx *ginext.Context) {
	var req dto.UpsertUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	id := ctx.GetHeader("X-User-ID")
	if id == "" {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	u := &model.User{
		ID:                id,
		Name:              req.Name,
		Email:             req.Email,
		Avatar:            req.Avatar,
		Phone:             req.Phone,
		EmergencyContacts: req.EmergencyContacts,
	}
	if err := s.repo.UpsertUser(ctx.Request.Context(), u); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, u)
}

func (s *service) SaveFCMToken(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.FCMTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	t := &model.FCMToken{UserID: user.ID, Token: req.Token, UpdatedAt: time.Now().UTC()}
	if err := s.repo.SaveFCMToken(ctx.Request.Context(), t); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"status": "saved"})
}

// NotificationRoute resolves the client screen a notification tap should open
// from its data query params, e.g. ?type=event&eventId=<id>.
func (s *service) NotificationRoute(ctx *ginext.Context) {
	data := map[string]string{}
	for k, vals := range ctx.Request.URL.Query() {
		if len(vals) > 0 {
			data[k] = vals[0]
		}
	}
	dto.SuccessResponse(ctx, map[string]string{"path": notify.ScreenPath(data)})
}
