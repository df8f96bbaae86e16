// Package inmem is an in-memory implementation of repo.Repository with the
// same transactional semantics as the Postgres store. It backs the test suite.
package inmem

import (
	"context"
	"sync"
	"time"

	"campus360/internal/model"
	"campus360/internal/repo"
)

type Store struct {
	mu sync.Mutex

	now func() time.Time

	posts   map[string]*model.Post
	replies map[string][]*model.Reply // keyed by post id

	equipment map[string]*model.Equipment
	logs      map[string]*model.ResourceLog

	events        map[string]*model.Event
	registrations map[string]*model.Registration // keyed by registration id

	foodItems map[string]*model.FoodItem
	orders    map[string]*model.Order

	rooms    map[string]*model.Room
	bookings map[string][]*model.RoomBooking // keyed by room id

	users      map[string]*model.User
	fcmTokens  map[string]*model.FCMToken
	grievances map[string]*model.Grievance
	routes     map[string]*model.TransportRoute
}

var _ repo.Repository = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock lets tests pin "now" for expiry evaluation.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:           now,
		posts:         make(map[string]*model.Post),
		replies:       make(map[string][]*model.Reply),
		equipment:     make(map[string]*model.Equipment),
		logs:          make(map[string]*model.ResourceLog),
		events:        make(map[string]*model.Event),
		registrations: make(map[string]*model.Registration),
		foodItems:     make(map[string]*model.FoodItem),
		orders:        make(map[string]*model.Order),
		rooms:         make(map[string]*model.Room),
		bookings:      make(map[string][]*model.RoomBooking),
		users:         make(map[string]*model.User),
		fcmTokens:     make(map[string]*model.FCMToken),
		grievances:    make(map[string]*model.Grievance),
		routes:        make(map[string]*model.TransportRoute),
	}
}

// SetClock swaps the time source. Test helper.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// === Campus ===

func (s *Store) UpsertUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	now := s.now()
	if existing, ok := s.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
		u.Role = existing.Role
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) SaveFCMToken(ctx context.Context, t *model.FCMToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.UpdatedAt = s.now()
	cp := *t
	s.fcmTokens[t.UserID] = &cp
	return nil
}

func (s *Store) CreateGrievance(ctx context.Context, g *model.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *g
	s.grievances[g.ID] = &cp
	return nil
}

func (s *Store) ListGrievances(ctx context.Context, userID string) ([]model.Grievance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []model.Grievance
	for _, g := range s.grievances {
		if userID == "" || g.UserID == userID {
			list = append(list, *g)
		}
	}
	sortByTimeDesc(list, func(g model.Grievance) time.Time { return g.CreatedAt })
	return list, nil
}

func (s *Store) UpdateGrievanceStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.grievances[id]
	if !ok {
		return repo.ErrNotFound
	}
	g.Status = status
	g.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListTransportRoutes(ctx context.Context) ([]model.TransportRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var routes []model.TransportRoute
	for _, r := range s.routes {
		routes = append(routes, *r)
	}
	sortByString(routes, func(r model.TransportRoute) string { return r.Name })
	return routes, nil
}

func (s *Store) UpsertTransportRoute(ctx context.Context, r *model.TransportRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.UpdatedAt = s.now()
	cp := *r
	s.routes[r.ID] = &cp
	return nil
}
