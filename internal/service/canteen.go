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

func (s *service) CreateFoodItem(ctx *ginext.Context) {
	var req dto.FoodItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	item := &model.FoodItem{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	}
	if err := s.repo.CreateFoodItem(ctx.Request.Context(), item); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessCreatedResponse(ctx, item)
}

func (s *service) UpdateFoodItem(ctx *ginext.Context) {
	var req dto.FoodItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	item := &model.FoodItem{
		ID:         ctx.Param("id"),
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	}
	if err := s.repo.UpdateFoodItem(ctx.Request.Context(), item); err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, item)
}

func (s *service) GetMenu(ctx *ginext.Context) {
	items, err := s.repo.ListFoodItems(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	dto.SuccessResponse(ctx, items)
}

func (s *service) PlaceOrder(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Status:    model.OrderPlaced,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, line := range req.Items {
		order.Items = append(order.Items, model.OrderItem{FoodItemID: line.FoodItemID, Qty: line.Qty})
	}

	if err := s.repo.PlaceOrderTx(ctx.Request.Context(), order); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("user_id", user.ID).
		Int64("total_cents", order.TotalCents).
		Msg("order placed")
	dto.SuccessCreatedResponse(ctx, order)
}

func (s *service) GetMyOrders(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	orders, err := s.repo.ListOrdersByUser(ctx.Request.Context(), user.ID)
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	dto.SuccessResponse(ctx, orders)
}

func (s *service) UpdateOrderStatus(ctx *ginext.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	orderID := ctx.Param("id")
	if err := s.repo.UpdateOrderStatus(ctx.Request.Context(), orderID, req.Status); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	if req.Status == model.OrderReady {
		order, err := s.repo.GetOrderByID(ctx.Request.Context(), orderID)
		if err == nil {
			owner, err := s.repo.GetUserByID(ctx.Request.Context(), order.UserID)
			if err == nil {
				msg := dto.NotificationMessage{
					Type:       notify.TypeCanteen,
					Title:      "Order ready",
					Body:       "Your canteen order is ready for pickup.",
					Data:       map[string]string{"orderId": orderID},
					Recipients: []string{owner.Email},
					CreatedAt:  time.Now().UTC(),
				}
				if err := s.publish(msg, 0); err != nil {
					s.log.Error().Err(err).Msg("failed to publish order notification")
				}
			}
		}
	}

	dto.SuccessResponse(ctx, map[string]string{"id": orderID, "status": req.Status})
}
