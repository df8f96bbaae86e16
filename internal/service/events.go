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

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}
	if !req.Deadline.Before(req.StartsAt) {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Deadline must be before the event start")
		return
	}

	event := &model.Event{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Venue:          req.Venue,
		Category:       req.Category,
		StartsAt:       req.StartsAt,
		Deadline:       req.Deadline,
		MaxSeats:       req.MaxSeats,
		SeatsRemaining: req.MaxSeats,
	}
	if err := s.repo.CreateEvent(ctx.Request.Context(), event); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("event_id", event.ID).Msg("event created")
	dto.SuccessCreatedResponse(ctx, event)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	event, err := s.repo.GetEventByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, event)
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.ListEvents(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	dto.SuccessResponse(ctx, events)
}

func (s *service) Register(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}
	eventID := ctx.Param("id")

	reg, err := s.repo.RegisterTx(ctx.Request.Context(), eventID, user.ID, time.Now().UTC())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("event_id", eventID).
		Str("user_id", user.ID).
		Msg("registration created")

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err == nil {
		msg := dto.NotificationMessage{
			Type:       notify.TypeEvent,
			Title:      "Registration confirmed",
			Body:       fmt.Sprintf("You are registered for %q.", event.Title),
			Data:       map[string]string{"eventId": eventID},
			Recipients: []string{user.Email},
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.publish(msg, 0); err != nil {
			s.log.Error().Err(err).Msg("failed to publish registration notification")
		}

		// Delayed reminder that lands when the event starts.
		if delay := int(time.Until(event.StartsAt).Seconds()); delay > 0 {
			reminder := msg
			reminder.Title = "Event starting"
			reminder.Body = fmt.Sprintf("%q is starting now at %s.", event.Title, event.Venue)
			if err := s.publish(reminder, delay); err != nil {
				s.log.Error().Err(err).Msg("failed to publish event reminder")
			}
		}
	}

	dto.SuccessCreatedResponse(ctx, reg)
}

func (s *service) CancelRegistration(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}
	eventID := ctx.Param("id")

	if err := s.repo.CancelRegistrationTx(ctx.Request.Context(), eventID, user.ID); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("event_id", eventID).Str("user_id", user.ID).Msg("registration cancelled")

	msg := dto.NotificationMessage{
		Type:       notify.TypeEvent,
		Title:      "Registration cancelled",
		Body:       "Your registration was cancelled and the seat was released.",
		Data:       map[string]string{"eventId": eventID},
		Recipients: []string{user.Email},
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.publish(msg, 0); err != nil {
		s.log.Error().Err(err).Msg("failed to publish cancellation notification")
	}

	dto.SuccessResponse(ctx, map[string]string{"event_id": eventID})
}

func (s *service) MarkAttended(ctx *ginext.Context) {
	if err := s.repo.MarkAttended(ctx.Request.Context(), ctx.Param("id")); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"status": model.RegistrationAttended})
}

func (s *service) GetRegistrations(ctx *ginext.Context) {
	regs, err := s.repo.ListRegistrations(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	dto.SuccessResponse(ctx, regs)
}
