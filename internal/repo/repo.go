package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"campus360/internal/model"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrOutOfStock            = errors.New("out of stock")
	ErrEventFull             = errors.New("event is full")
	ErrDeadlinePassed        = errors.New("registration deadline has passed")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrSlotTaken             = errors.New("room slot already booked")
	ErrForbidden             = errors.New("operation not permitted")
)

// Chat is the ephemeral-content store. Reads filter against each item's own
// expiry; expired rows stay in place until an explicit delete.
type Chat interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListActivePosts(ctx context.Context) ([]model.Post, error)
	// CreateReplyTx persists the reply and bumps the parent's reply counter
	// in a single transaction.
	CreateReplyTx(ctx context.Context, reply *model.Reply) error
	ListActiveReplies(ctx context.Context, postID string) ([]model.Reply, error)
	// DeletePost hard-deletes a post and its replies. Only the author or an
	// admin may do it.
	DeletePost(ctx context.Context, postID, requesterID string, admin bool) error
}

// Inventory guards counted resources with a never-below-zero floor.
type Inventory interface {
	CreateEquipment(ctx context.Context, eq *model.Equipment) error
	GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	BorrowEquipmentTx(ctx context.Context, equipmentID, userID string) (*model.ResourceLog, error)
	ReturnEquipmentTx(ctx context.Context, logID, userID string) error
	ListResourceLogs(ctx context.Context, userID string) ([]model.ResourceLog, error)
}

type Events interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	RegisterTx(ctx context.Context, eventID, userID string, now time.Time) (*model.Registration, error)
	CancelRegistrationTx(ctx context.Context, eventID, userID string) error
	MarkAttended(ctx context.Context, registrationID string) error
	ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error)
}

type Canteen interface {
	CreateFoodItem(ctx context.Context, item *model.FoodItem) error
	UpdateFoodItem(ctx context.Context, item *model.FoodItem) error
	ListFoodItems(ctx context.Context) ([]model.FoodItem, error)
	PlaceOrderTx(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
}

type Rooms interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	ListRooms(ctx context.Context) ([]model.Room, error)
	BookRoomTx(ctx context.Context, booking *model.RoomBooking) error
	ListRoomBookings(ctx context.Context, roomID string) ([]model.RoomBooking, error)
}

type Campus interface {
	UpsertUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	SaveFCMToken(ctx context.Context, t *model.FCMToken) error
	CreateGrievance(ctx context.Context, g *model.Grievance) error
	ListGrievances(ctx context.Context, userID string) ([]model.Grievance, error)
	UpdateGrievanceStatus(ctx context.Context, id, status string) error
	ListTransportRoutes(ctx context.Context) ([]model.TransportRoute, error)
	UpsertTransportRoute(ctx context.Context, r *model.TransportRoute) error
}

type Repository interface {
	Chat
	Inventory
	Events
	Canteen
	Rooms
	Campus
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

// NewRepository returns the Postgres-backed repository. Migration helpers
// live on the concrete type, not the interface.
func NewRepository(db *dbpg.DB, log *zerolog.Logger) (*repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.up.sql")
}

func (r *repository) MigrateDown(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.down.sql")
}

func (r *repository) applyMigrations(dir, pattern string) error {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("migrations %s applied from %s", pattern, dir)
	return nil
}
