package service

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"campus360/cmd/middleware"
	"campus360/internal/dto"
	"campus360/internal/model"
	"campus360/internal/rabbit"
	"campus360/internal/repo"
	"campus360/internal/ws"
)

type Service interface {
	// community chat
	CreatePost(ctx *ginext.Context)
	GetFeed(ctx *ginext.Context)
	GetPost(ctx *ginext.Context)
	DeletePost(ctx *ginext.Context)
	CreateReply(ctx *ginext.Context)
	GetReplies(ctx *ginext.Context)
	ChatWS(ctx *ginext.Context)

	// events
	CreateEvent(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	GetAllEvents(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	CancelRegistration(ctx *ginext.Context)
	MarkAttended(ctx *ginext.Context)
	GetRegistrations(ctx *ginext.Context)

	// equipment
	CreateEquipment(ctx *ginext.Context)
	GetAllEquipment(ctx *ginext.Context)
	BorrowEquipment(ctx *ginext.Context)
	ReturnEquipment(ctx *ginext.Context)
	GetMyLoans(ctx *ginext.Context)

	// canteen
	CreateFoodItem(ctx *ginext.Context)
	UpdateFoodItem(ctx *ginext.Context)
	GetMenu(ctx *ginext.Context)
	PlaceOrder(ctx *ginext.Context)
	GetMyOrders(ctx *ginext.Context)
	UpdateOrderStatus(ctx *ginext.Context)

	// rooms
	CreateRoom(ctx *ginext.Context)
	GetRooms(ctx *ginext.Context)
	BookRoom(ctx *ginext.Context)
	GetRoomBookings(ctx *ginext.Context)

	// transport, grievances, users, sos
	GetTransportRoutes(ctx *ginext.Context)
	UpsertTransportRoute(ctx *ginext.Context)
	CreateGrievance(ctx *ginext.Context)
	GetGrievances(ctx *ginext.Context)
	UpdateGrievanceStatus(ctx *ginext.Context)
	UpsertMe(ctx *ginext.Context)
	SaveFCMToken(ctx *ginext.Context)
	NotificationRoute(ctx *ginext.Context)
	TriggerSOS(ctx *ginext.Context)
}

type service struct {
	repo repo.Repository
	log  *zerolog.Logger
	rbt  rabbit.Publisher
	hub  *ws.Hub
}

func NewService(repo repo.Repository, logger *zerolog.Logger, rbt rabbit.Publisher, hub *ws.Hub) Service {
	return &service{
		repo: repo,
		log:  logger,
		rbt:  rbt,
		hub:  hub,
	}
}

func currentUser(ctx *ginext.Context) (*model.User, bool) {
	v, ok := ctx.Get(middleware.UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}

// publish queues a notification message; delivery is fully asynchronous and
// the queue can be absent in tests.
func (s *service) publish(msg dto.NotificationMessage, delaySeconds int) error {
	if s.rbt == nil {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.rbt.Publish(payload, delaySeconds)
}

// broadcast fans a chat event out to websocket subscribers.
func (s *service) broadcast(msgType string, data any) {
	if s.hub == nil {
		return
	}
	frame, err := json.Marshal(ws.Message{Type: msgType, Data: data})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}
	s.hub.Broadcast <- frame
}

func (s *service) respondRepoError(ctx *ginext.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		dto.NotFoundError(ctx, "Resource not found")
	case errors.Is(err, repo.ErrOutOfStock):
		dto.ConflictError(ctx, dto.OutOfStock, "Out of stock!")
	case errors.Is(err, repo.ErrEventFull):
		dto.ConflictError(ctx, dto.EventFull, "Event is full")
	case errors.Is(err, repo.ErrDeadlinePassed):
		dto.BadResponseError(ctx, dto.DeadlinePassed, "Registration deadline has passed")
	case errors.Is(err, repo.ErrDuplicateRegistration):
		dto.ConflictError(ctx, dto.RegistrationDuplicate, "You have already registered for this event")
	case errors.Is(err, repo.ErrSlotTaken):
		dto.ConflictError(ctx, dto.SlotTaken, "Room is already booked for that slot")
	case errors.Is(err, repo.ErrForbidden):
		dto.ForbiddenError(ctx, "Operation not permitted")
	case errors.Is(err, model.ErrTextLength):
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Text must be between 1 and 300 characters")
	default:
		s.log.Error().Err(err).Msg("repository operation failed")
		dto.InternalServerError(ctx)
	}
}
