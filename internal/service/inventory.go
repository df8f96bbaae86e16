package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/pkg/validator"
)

func (s *service) CreateEquipment(ctx *ginext.Context) {
	var req dto.CreateEquipmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	eq := &model.Equipment{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Category:  req.Category,
		Total:     req.Total,
		Remaining: req.Total,
	}
	if err := s.repo.CreateEquipment(ctx.Request.Context(), eq); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("equipment_id", eq.ID).Msg("equipment created")
	dto.SuccessCreatedResponse(ctx, eq)
}

func (s *service) GetAllEquipment(ctx *ginext.Context) {
	items, err := s.repo.ListEquipment(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if items == nil {
		items = []model.Equipment{}
	}
	dto.SuccessResponse(ctx, items)
}

func (s *service) BorrowEquipment(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	logEntry, err := s.repo.BorrowEquipmentTx(ctx.Request.Context(), ctx.Param("id"), user.ID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().
		Str("equipment_id", logEntry.EquipmentID).
		Str("user_id", user.ID).
		Msg("equipment borrowed")
	dto.SuccessCreatedResponse(ctx, logEntry)
}

func (s *service) ReturnEquipment(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	if err := s.repo.ReturnEquipmentTx(ctx.Request.Context(), ctx.Param("id"), user.ID); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("log_id", ctx.Param("id")).Str("user_id", user.ID).Msg("equipment returned")
	dto.SuccessResponse(ctx, map[string]string{"status": model.LogReturned})
}

func (s *service) GetMyLoans(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	logs, err := s.repo.ListResourceLogs(ctx.Request.Context(), user.ID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if logs == nil {
		logs = []model.ResourceLog{}
	}
	dto.SuccessResponse(ctx, logs)
}
