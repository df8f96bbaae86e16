package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	EquipmentInStock    = "in_stock"
	EquipmentOutOfStock = "out_of_stock"
)

const (
	LogBorrowed = "borrowed"
	LogReturned = "returned"
)

const (
	RegistrationRegistered = "registered"
	RegistrationAttended   = "attended"
)

const (
	OrderPlaced    = "placed"
	OrderReady     = "ready"
	OrderCollected = "collected"
)

const (
	GrievanceOpen       = "open"
	GrievanceInProgress = "in_progress"
	GrievanceResolved   = "resolved"
)

const BookingBooked = "booked"

type User struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	Avatar            string    `db:"avatar" json:"avatar,omitempty"`
	Phone             string    `db:"phone" json:"phone,omitempty"`
	Role              string    `db:"role" json:"role"`
	EmergencyContacts []string  `db:"emergency_contacts" json:"emergency_contacts,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type FCMToken struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"token"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Equipment struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category,omitempty"`
	Total     int       `db:"total" json:"total"`
	Remaining int       `db:"remaining" json:"remaining"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EquipmentStatus derives the availability flag from the counter.
func EquipmentStatus(remaining int) string {
	if remaining > 0 {
		return EquipmentInStock
	}
	return EquipmentOutOfStock
}

type ResourceLog struct {
	ID          string     `db:"id" json:"id"`
	EquipmentID string     `db:"equipment_id" json:"equipment_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Status      string     `db:"status" json:"status"`
	BorrowedAt  time.Time  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt  *time.Time `db:"returned_at" json:"returned_at,omitempty"`
}

type Event struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description,omitempty"`
	Venue          string    `db:"venue" json:"venue,omitempty"`
	Category       string    `db:"category" json:"category,omitempty"`
	StartsAt       time.Time `db:"starts_at" json:"starts_at"`
	Deadline       time.Time `db:"deadline" json:"deadline"`
	MaxSeats       int       `db:"max_seats" json:"max_seats"`
	SeatsRemaining int       `db:"seats_remaining" json:"seats_remaining"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type Registration struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type FoodItem struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Category   string    `db:"category" json:"category,omitempty"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	Stock      int       `db:"stock" json:"stock"`
	Available  bool      `db:"available" json:"available"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	FoodItemID string `db:"food_item_id" json:"food_item_id"`
	Name       string `db:"name" json:"name"`
	Qty        int    `db:"qty" json:"qty"`
	PriceCents int64  `db:"price_cents" json:"price_cents"`
}

type Order struct {
	ID         string      `db:"id" json:"id"`
	UserID     string      `db:"user_id" json:"user_id"`
	Items      []OrderItem `db:"-" json:"items"`
	TotalCents int64       `db:"total_cents" json:"total_cents"`
	Status     string      `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Location  string    `db:"location" json:"location,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RoomBooking struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	Purpose   string    `db:"purpose" json:"purpose,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type TransportRoute struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Stops            []string  `db:"stops" json:"stops"`
	FirstDeparture   string    `db:"first_departure" json:"first_departure"`
	LastDeparture    string    `db:"last_departure" json:"last_departure"`
	FrequencyMinutes int       `db:"frequency_minutes" json:"frequency_minutes"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type Grievance struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Category  string    `db:"category" json:"category"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
