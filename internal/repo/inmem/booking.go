package inmem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus360/internal/model"
	"campus360/internal/repo"
)

// === Inventory ===

func (s *Store) CreateEquipment(ctx context.Context, eq *model.Equipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	eq.Status = model.EquipmentStatus(eq.Remaining)
	eq.CreatedAt = now
	eq.UpdatedAt = now
	cp := *eq
	s.equipment[eq.ID] = &cp
	return nil
}

func (s *Store) GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eq, ok := s.equipment[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *eq
	return &cp, nil
}

func (s *Store) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []model.Equipment
	for _, eq := range s.equipment {
		items = append(items, *eq)
	}
	sortByString(items, func(e model.Equipment) string { return e.Name })
	return items, nil
}

func (s *Store) BorrowEquipmentTx(ctx context.Context, equipmentID, userID string) (*model.ResourceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eq, ok := s.equipment[equipmentID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if eq.Remaining <= 0 {
		return nil, repo.ErrOutOfStock
	}
	eq.Remaining--
	eq.Status = model.EquipmentStatus(eq.Remaining)
	eq.UpdatedAt = s.now()

	logEntry := &model.ResourceLog{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		UserID:      userID,
		Status:      model.LogBorrowed,
		BorrowedAt:  s.now(),
	}
	s.logs[logEntry.ID] = logEntry
	cp := *logEntry
	return &cp, nil
}

func (s *Store) ReturnEquipmentTx(ctx context.Context, logID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[logID]
	if !ok || l.UserID != userID || l.Status != model.LogBorrowed {
		return repo.ErrNotFound
	}
	eq, ok := s.equipment[l.EquipmentID]
	if !ok {
		return repo.ErrNotFound
	}

	now := s.now()
	l.Status = model.LogReturned
	l.ReturnedAt = &now
	if eq.Remaining < eq.Total {
		eq.Remaining++
	}
	eq.Status = model.EquipmentStatus(eq.Remaining)
	eq.UpdatedAt = now
	return nil
}

func (s *Store) ListResourceLogs(ctx context.Context, userID string) ([]model.ResourceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []model.ResourceLog
	for _, l := range s.logs {
		if l.UserID == userID {
			logs = append(logs, *l)
		}
	}
	sortByTimeDesc(logs, func(l model.ResourceLog) time.Time { return l.BorrowedAt })
	return logs, nil
}

// === Events ===

func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []model.Event
	for _, e := range s.events {
		events = append(events, *e)
	}
	sortByTimeAsc(events, func(e model.Event) time.Time { return e.StartsAt })
	return events, nil
}

func (s *Store) RegisterTx(ctx context.Context, eventID, userID string, now time.Time) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if !now.Before(e.Deadline) {
		return nil, repo.ErrDeadlinePassed
	}
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			return nil, repo.ErrDuplicateRegistration
		}
	}
	if e.SeatsRemaining <= 0 {
		return nil, repo.ErrEventFull
	}

	e.SeatsRemaining--
	e.UpdatedAt = now
	reg := &model.Registration{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Status:    model.RegistrationRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.registrations[reg.ID] = reg
	cp := *reg
	return &cp, nil
}

func (s *Store) CancelRegistrationTx(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, reg := range s.registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			delete(s.registrations, id)
			if e.SeatsRemaining < e.MaxSeats {
				e.SeatsRemaining++
			}
			e.UpdatedAt = s.now()
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *Store) MarkAttended(ctx context.Context, registrationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[registrationID]
	if !ok || reg.Status != model.RegistrationRegistered {
		return repo.ErrNotFound
	}
	reg.Status = model.RegistrationAttended
	reg.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListRegistrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var regs []model.Registration
	for _, reg := range s.registrations {
		if reg.EventID == eventID {
			regs = append(regs, *reg)
		}
	}
	sortByTimeAsc(regs, func(r model.Registration) time.Time { return r.CreatedAt })
	return regs, nil
}

// === Canteen ===

func (s *Store) CreateFoodItem(ctx context.Context, item *model.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item.Available = item.Stock > 0
	item.CreatedAt = now
	item.UpdatedAt = now
	cp := *item
	s.foodItems[item.ID] = &cp
	return nil
}

func (s *Store) UpdateFoodItem(ctx context.Context, item *model.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.foodItems[item.ID]
	if !ok {
		return repo.ErrNotFound
	}
	existing.Name = item.Name
	existing.Category = item.Category
	existing.PriceCents = item.PriceCents
	existing.Stock = item.Stock
	existing.Available = item.Stock > 0
	existing.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListFoodItems(ctx context.Context) ([]model.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []model.FoodItem
	for _, it := range s.foodItems {
		items = append(items, *it)
	}
	sortByString(items, func(i model.FoodItem) string { return i.Name })
	return items, nil
}

func (s *Store) PlaceOrderTx(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every line before mutating anything so a shortage aborts the
	// whole order.
	for _, item := range order.Items {
		it, ok := s.foodItems[item.FoodItemID]
		if !ok {
			return repo.ErrNotFound
		}
		if it.Stock < item.Qty {
			return repo.ErrOutOfStock
		}
	}

	var total int64
	for i := range order.Items {
		item := &order.Items[i]
		it := s.foodItems[item.FoodItemID]
		it.Stock -= item.Qty
		it.Available = it.Stock > 0
		it.UpdatedAt = s.now()
		item.Name = it.Name
		item.PriceCents = it.PriceCents
		total += it.PriceCents * int64(item.Qty)
	}
	order.TotalCents = total

	cp := *order
	cp.Items = append([]model.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &cp
	return nil
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			cp.Items = append([]model.OrderItem(nil), o.Items...)
			orders = append(orders, cp)
		}
	}
	sortByTimeDesc(orders, func(o model.Order) time.Time { return o.CreatedAt })
	return orders, nil
}

// === Rooms ===

func (s *Store) CreateRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.CreatedAt = s.now()
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *Store) ListRooms(ctx context.Context) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rooms []model.Room
	for _, r := range s.rooms {
		rooms = append(rooms, *r)
	}
	sortByString(rooms, func(r model.Room) string { return r.Name })
	return rooms, nil
}

func (s *Store) BookRoomTx(ctx context.Context, booking *model.RoomBooking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[booking.RoomID]; !ok {
		return repo.ErrNotFound
	}
	for _, b := range s.bookings[booking.RoomID] {
		if b.Status == model.BookingBooked &&
			b.StartsAt.Before(booking.EndsAt) && b.EndsAt.After(booking.StartsAt) {
			return repo.ErrSlotTaken
		}
	}

	booking.CreatedAt = s.now()
	cp := *booking
	s.bookings[booking.RoomID] = append(s.bookings[booking.RoomID], &cp)
	return nil
}

func (s *Store) ListRoomBookings(ctx context.Context, roomID string) ([]model.RoomBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []model.RoomBooking
	for _, b := range s.bookings[roomID] {
		bookings = append(bookings, *b)
	}
	sortByTimeAsc(bookings, func(b model.RoomBooking) time.Time { return b.StartsAt })
	return bookings, nil
}
