package inmem

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus360/internal/model"
	"campus360/internal/repo"
)

// === Inventory ===

func seedEquipment(t *testing.T, store *Store, total int) *model.Equipment {
	t.Helper()
	eq := &model.Equipment{ID: uuid.NewString(), Name: "Football", Total: total, Remaining: total}
	require.NoError(t, store.CreateEquipment(context.Background(), eq))
	return eq
}

func TestBorrowDecrementsAndLogs(t *testing.T) {
	store := New()
	ctx := context.Background()
	eq := seedEquipment(t, store, 3)

	logEntry, err := store.BorrowEquipmentTx(ctx, eq.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.LogBorrowed, logEntry.Status)

	got, err := store.GetEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Remaining)
	assert.Equal(t, model.EquipmentInStock, got.Status)
}

func TestBorrowLastUnitFlipsStatus(t *testing.T) {
	store := New()
	ctx := context.Background()
	eq := seedEquipment(t, store, 1)

	_, err := store.BorrowEquipmentTx(ctx, eq.ID, "u1")
	require.NoError(t, err)

	got, err := store.GetEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Remaining)
	assert.Equal(t, model.EquipmentOutOfStock, got.Status)

	_, err = store.BorrowEquipmentTx(ctx, eq.ID, "u2")
	assert.ErrorIs(t, err, repo.ErrOutOfStock)
}

func TestConcurrentBorrowNeverOverdraws(t *testing.T) {
	store := New()
	ctx := context.Background()
	eq := seedEquipment(t, store, 1)

	const n = 20
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.BorrowEquipmentTx(ctx, eq.ID, uuid.NewString())
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, shortages int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, repo.ErrOutOfStock):
			shortages++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, shortages)

	got, err := store.GetEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Remaining)
}

func TestReturnRestoresUnit(t *testing.T) {
	store := New()
	ctx := context.Background()
	eq := seedEquipment(t, store, 2)

	logEntry, err := store.BorrowEquipmentTx(ctx, eq.ID, "u1")
	require.NoError(t, err)

	require.NoError(t, store.ReturnEquipmentTx(ctx, logEntry.ID, "u1"))

	got, err := store.GetEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Remaining)

	// The log is closed, a second return must fail.
	err = store.ReturnEquipmentTx(ctx, logEntry.ID, "u1")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestReturnByWrongUserRejected(t *testing.T) {
	store := New()
	ctx := context.Background()
	eq := seedEquipment(t, store, 1)

	logEntry, err := store.BorrowEquipmentTx(ctx, eq.ID, "u1")
	require.NoError(t, err)

	err = store.ReturnEquipmentTx(ctx, logEntry.ID, "somebody-else")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// === Events ===

func seedEvent(t *testing.T, store *Store, seats int, deadline time.Time) *model.Event {
	t.Helper()
	e := &model.Event{
		ID:             uuid.NewString(),
		Title:          "Tech Fest",
		StartsAt:       deadline.Add(time.Hour),
		Deadline:       deadline,
		MaxSeats:       seats,
		SeatsRemaining: seats,
	}
	require.NoError(t, store.CreateEvent(context.Background(), e))
	return e
}

func TestRegisterHappyPath(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 2, now.Add(time.Hour))

	reg, err := store.RegisterTx(ctx, e.ID, "u1", now)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationRegistered, reg.Status)

	got, err := store.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatsRemaining)
}

func TestRegisterDeadlineWinsOverSeats(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	// Deadline already passed and the event is also full: the deadline error
	// must be the one reported.
	e := seedEvent(t, store, 1, now.Add(-time.Minute))
	store.events[e.ID].SeatsRemaining = 0

	_, err := store.RegisterTx(ctx, e.ID, "u1", now)
	assert.ErrorIs(t, err, repo.ErrDeadlinePassed)
}

func TestRegisterExactlyAtDeadlineRejected(t *testing.T) {
	store := New()
	ctx := context.Background()
	deadline := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	e := seedEvent(t, store, 5, deadline)

	_, err := store.RegisterTx(ctx, e.ID, "u1", deadline)
	assert.ErrorIs(t, err, repo.ErrDeadlinePassed)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 5, now.Add(time.Hour))

	_, err := store.RegisterTx(ctx, e.ID, "u1", now)
	require.NoError(t, err)

	_, err = store.RegisterTx(ctx, e.ID, "u1", now)
	assert.ErrorIs(t, err, repo.ErrDuplicateRegistration)

	got, err := store.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatsRemaining)
}

func TestConcurrentRegistrationNeverOversells(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 3, now.Add(time.Hour))

	const n = 30
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.RegisterTx(ctx, e.ID, uuid.NewString(), now)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, repo.ErrEventFull)
		}
	}
	assert.Equal(t, 3, successes)

	got, err := store.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatsRemaining)
}

func TestCancelFreesSeat(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 1, now.Add(time.Hour))

	_, err := store.RegisterTx(ctx, e.ID, "u1", now)
	require.NoError(t, err)

	_, err = store.RegisterTx(ctx, e.ID, "u2", now)
	assert.ErrorIs(t, err, repo.ErrEventFull)

	require.NoError(t, store.CancelRegistrationTx(ctx, e.ID, "u1"))

	reg, err := store.RegisterTx(ctx, e.ID, "u2", now)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationRegistered, reg.Status)
}

func TestCancelWithoutRegistration(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 1, now.Add(time.Hour))

	err := store.CancelRegistrationTx(ctx, e.ID, "ghost")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := store.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatsRemaining)
}

func TestMarkAttended(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()
	e := seedEvent(t, store, 1, now.Add(time.Hour))

	reg, err := store.RegisterTx(ctx, e.ID, "u1", now)
	require.NoError(t, err)

	require.NoError(t, store.MarkAttended(ctx, reg.ID))

	regs, err := store.ListRegistrations(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, model.RegistrationAttended, regs[0].Status)

	// Already attended, second call is a no-op error.
	err = store.MarkAttended(ctx, reg.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// === Canteen ===

func seedFoodItem(t *testing.T, store *Store, name string, stock int, price int64) *model.FoodItem {
	t.Helper()
	it := &model.FoodItem{ID: uuid.NewString(), Name: name, Stock: stock, PriceCents: price}
	require.NoError(t, store.CreateFoodItem(context.Background(), it))
	return it
}

func TestPlaceOrderComputesTotalFromStore(t *testing.T) {
	store := New()
	ctx := context.Background()
	tea := seedFoodItem(t, store, "Tea", 10, 1500)
	samosa := seedFoodItem(t, store, "Samosa", 5, 2500)

	order := &model.Order{
		ID:     uuid.NewString(),
		UserID: "u1",
		Status: model.OrderPlaced,
		Items: []model.OrderItem{
			{FoodItemID: tea.ID, Qty: 2},
			{FoodItemID: samosa.ID, Qty: 1},
		},
	}
	require.NoError(t, store.PlaceOrderTx(ctx, order))
	assert.Equal(t, int64(2*1500+2500), order.TotalCents)

	menu, err := store.ListFoodItems(ctx)
	require.NoError(t, err)
	byName := map[string]model.FoodItem{}
	for _, it := range menu {
		byName[it.Name] = it
	}
	assert.Equal(t, 8, byName["Tea"].Stock)
	assert.Equal(t, 4, byName["Samosa"].Stock)
}

func TestPlaceOrderShortageAbortsWholeOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	tea := seedFoodItem(t, store, "Tea", 10, 1500)
	samosa := seedFoodItem(t, store, "Samosa", 1, 2500)

	order := &model.Order{
		ID:     uuid.NewString(),
		UserID: "u1",
		Status: model.OrderPlaced,
		Items: []model.OrderItem{
			{FoodItemID: tea.ID, Qty: 2},
			{FoodItemID: samosa.ID, Qty: 3},
		},
	}
	err := store.PlaceOrderTx(ctx, order)
	assert.ErrorIs(t, err, repo.ErrOutOfStock)

	// Nothing was decremented, including the line that had enough stock.
	menu, err := store.ListFoodItems(ctx)
	require.NoError(t, err)
	for _, it := range menu {
		switch it.ID {
		case tea.ID:
			assert.Equal(t, 10, it.Stock)
		case samosa.ID:
			assert.Equal(t, 1, it.Stock)
		}
	}

	orders, err := store.ListOrdersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()
	tea := seedFoodItem(t, store, "Tea", 10, 1500)

	order := &model.Order{
		ID:     uuid.NewString(),
		UserID: "u1",
		Status: model.OrderPlaced,
		Items:  []model.OrderItem{{FoodItemID: tea.ID, Qty: 1}},
	}
	require.NoError(t, store.PlaceOrderTx(ctx, order))

	require.NoError(t, store.UpdateOrderStatus(ctx, order.ID, model.OrderReady))

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderReady, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tea", got.Items[0].Name)
}

// === Rooms ===

func seedRoom(t *testing.T, store *Store) *model.Room {
	t.Helper()
	r := &model.Room{ID: uuid.NewString(), Name: "Seminar Hall", Capacity: 40}
	require.NoError(t, store.CreateRoom(context.Background(), r))
	return r
}

func TestBookRoomOverlapRejected(t *testing.T) {
	store := New()
	ctx := context.Background()
	room := seedRoom(t, store)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first := &model.RoomBooking{
		ID: uuid.NewString(), RoomID: room.ID, UserID: "u1",
		StartsAt: base, EndsAt: base.Add(time.Hour), Status: model.BookingBooked,
	}
	require.NoError(t, store.BookRoomTx(ctx, first))

	overlapping := &model.RoomBooking{
		ID: uuid.NewString(), RoomID: room.ID, UserID: "u2",
		StartsAt: base.Add(30 * time.Minute), EndsAt: base.Add(90 * time.Minute),
		Status: model.BookingBooked,
	}
	err := store.BookRoomTx(ctx, overlapping)
	assert.ErrorIs(t, err, repo.ErrSlotTaken)
}

func TestBookRoomBackToBackAllowed(t *testing.T) {
	store := New()
	ctx := context.Background()
	room := seedRoom(t, store)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first := &model.RoomBooking{
		ID: uuid.NewString(), RoomID: room.ID, UserID: "u1",
		StartsAt: base, EndsAt: base.Add(time.Hour), Status: model.BookingBooked,
	}
	require.NoError(t, store.BookRoomTx(ctx, first))

	// A booking starting exactly when the previous one ends does not overlap.
	adjacent := &model.RoomBooking{
		ID: uuid.NewString(), RoomID: room.ID, UserID: "u2",
		StartsAt: base.Add(time.Hour), EndsAt: base.Add(2 * time.Hour),
		Status: model.BookingBooked,
	}
	require.NoError(t, store.BookRoomTx(ctx, adjacent))

	bookings, err := store.ListRoomBookings(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestBookMissingRoom(t *testing.T) {
	store := New()
	b := &model.RoomBooking{ID: uuid.NewString(), RoomID: "nope", UserID: "u1"}
	err := store.BookRoomTx(context.Background(), b)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
