package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/pkg/validator"
)

func (s *service) CreateRoom(ctx *ginext.Context) {
	var req dto.CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	room := &model.Room{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Capacity: req.Capacity,
		Location: req.Location,
	}
	if err := s.repo.CreateRoom(ctx.Request.Context(), room); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().Str("room_id", room.ID).Msg("room created")
	dto.SuccessCreatedResponse(ctx, room)
}

func (s *service) GetRooms(ctx *ginext.Context) {
	rooms, err := s.repo.ListRooms(ctx.Request.Context())
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	dto.SuccessResponse(ctx, rooms)
}

func (s *service) BookRoom(ctx *ginext.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Sign in required")
		return
	}

	var req dto.BookRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Booking must end after it starts")
		return
	}

	booking := &model.RoomBooking{
		ID:       uuid.NewString(),
		RoomID:   ctx.Param("id"),
		UserID:   user.ID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Purpose:  req.Purpose,
		Status:   model.BookingBooked,
	}
	if err := s.repo.BookRoomTx(ctx.Request.Context(), booking); err != nil {
		s.respondRepoError(ctx, err)
		return
	}

	s.log.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("user_id", user.ID).
		Msg("room booked")
	dto.SuccessCreatedResponse(ctx, booking)
}

func (s *service) GetRoomBookings(ctx *ginext.Context) {
	bookings, err := s.repo.ListRoomBookings(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.respondRepoError(ctx, err)
		return
	}
	if bookings == nil {
		bookings = []model.RoomBooking{}
	}
	dto.SuccessResponse(ctx, bookings)
}
