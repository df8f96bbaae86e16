package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	NotFound              = "NOT_FOUND"
	Forbidden             = "FORBIDDEN"
	Unauthorized          = "UNAUTHORIZED"
	OutOfStock            = "OUT_OF_STOCK"
	EventFull             = "EVENT_FULL"
	DeadlinePassed        = "DEADLINE_PASSED"
	RegistrationDuplicate = "REGISTRATION_DUPLICATE"
	SlotTaken             = "SLOT_TAKEN"
)

// === Community chat ===

type CreatePostRequest struct {
	Text string `json:"text" validate:"required,min=1,max=300"`
}

type CreateReplyRequest struct {
	Text string `json:"text" validate:"required,min=1,max=300"`
}

// === Events ===

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at" validate:"required,future"`
	Deadline    time.Time `json:"deadline" validate:"required,future"`
	MaxSeats    int       `json:"max_seats" validate:"gt=0"`
}

// === Inventory ===

type CreateEquipmentRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Category string `json:"category"`
	Total    int    `json:"total" validate:"gt=0"`
}

// === Canteen ===

type FoodItemRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Stock      int    `json:"stock" validate:"gte=0"`
}

type OrderLine struct {
	FoodItemID string `json:"food_item_id" validate:"required"`
	Qty        int    `json:"qty" validate:"gt=0"`
}

type PlaceOrderRequest struct {
	Items []OrderLine `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed ready collected"`
}

// === Rooms ===

type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Capacity int    `json:"capacity" validate:"gt=0"`
	Location string `json:"location"`
}

type BookRoomRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required,future"`
	EndsAt   time.Time `json:"ends_at" validate:"required,future"`
	Purpose  string    `json:"purpose"`
}

// === Transport ===

type TransportRouteRequest struct {
	Name             string   `json:"name" validate:"required,max=255"`
	Stops            []string `json:"stops" validate:"required,min=2"`
	FirstDeparture   string   `json:"first_departure" validate:"required"`
	LastDeparture    string   `json:"last_departure" validate:"required"`
	FrequencyMinutes int      `json:"frequency_minutes" validate:"gt=0"`
}

// === Grievances ===

type CreateGrievanceRequest struct {
	Category string `json:"category" validate:"required,max=100"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Body     string `json:"body" validate:"required"`
}

type UpdateGrievanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
}

// === SOS / users ===

type SOSRequest struct {
	Message  string `json:"message" validate:"required,max=500"`
	Location string `json:"location"`
}

type UpsertUserRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Email             string   `json:"email" validate:"required,email"`
	Avatar            string   `json:"avatar"`
	Phone             string   `json:"phone" validate:"omitempty,phone"`
	EmergencyContacts []string `json:"emergency_contacts" validate:"omitempty,dive,email"`
}

type FCMTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// NotificationMessage is the queue payload consumed by the dispatch worker.
type NotificationMessage struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	Recipients []string          `json:"recipients"`
	CreatedAt  time.Time         `json:"created_at"`
}

// === Response envelope ===

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: NotFound,
			Desc: desc,
		},
	})
}

func ForbiddenError(c *ginext.Context, desc string) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: Forbidden,
			Desc: desc,
		},
	})
}

func UnauthorizedError(c *ginext.Context, desc string) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: desc,
		},
	})
}

func ConflictError(c *ginext.Context, code, desc string) {
	c.JSON(409, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
