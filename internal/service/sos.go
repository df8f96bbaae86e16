package service

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"campus360/internal/dto"
	"campus360/internal/notify"
	"campus360/pkg/validator"
)

// TriggerSOS fans an emergency alert out to the caller's emergency contacts.
// A profile without contacts is rejected so the alert never silently goes
// nowhere.
func (s *service) TriggerSOS(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.SOSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if len(user.EmergencyContacts) == 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "No emergency contacts on profile")
		return
	}

	body := fmt.Sprintf("%s needs help: %s", user.Name, req.Message)
	if req.Location != "" {
		body = fmt.Sprintf("%s (location: %s)", body, req.Location)
	}
	msg := dto.NotificationMessage{
		Type:       notify.TypeEmergency,
		Title:      "SOS alert",
		Body:       body,
		Data:       map[string]string{"userId": user.ID},
		Recipients: user.EmergencyContacts,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.publish(msg, 0); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish SOS alert")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Warn().
		Str("user_id", user.ID).
		Int("contacts", len(user.EmergencyContacts)).
		Msg("SOS triggered")
	dto.SuccessResponse(ctx, map[string]any{
		"status":    "alert sent",
		"contacts":  len(user.EmergencyContacts),
		"timestamp": msg.CreatedAt,
	})
}
