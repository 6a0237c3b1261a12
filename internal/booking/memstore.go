package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps everything in maps. Commits serialize on a per-property
// mutex, the same single-writer-per-resource discipline the Postgres store
// gets from FOR UPDATE. Used by tests and for running without Postgres.
type MemStore struct {
	mu           sync.RWMutex
	agencies     map[string]Agency
	properties   map[string]Property
	reservations map[string]Reservation

	commitMu sync.Mutex
	commits  map[string]*sync.Mutex // per property
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		agencies:     map[string]Agency{},
		properties:   map[string]Property{},
		reservations: map[string]Reservation{},
		commits:      map[string]*sync.Mutex{},
	}
}

func (s *MemStore) commitLock(propertyID string) *sync.Mutex {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if m, ok := s.commits[propertyID]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.commits[propertyID] = m
	return m
}

func (s *MemStore) CreateAgency(_ context.Context, a Agency) (Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	s.agencies[a.ID] = a
	return a, nil
}

func (s *MemStore) GetAgency(_ context.Context, id string) (Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return Agency{}, fmt.Errorf("agency %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (s *MemStore) AgencyByOwner(_ context.Context, ownerUserID string) (Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agencies {
		if a.OwnerUserID == ownerUserID {
			return a, nil
		}
	}
	return Agency{}, fmt.Errorf("agency for user %s: %w", ownerUserID, ErrNotFound)
}

func (s *MemStore) CreateProperty(_ context.Context, p Property) (Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	s.properties[p.ID] = p
	return p, nil
}

func (s *MemStore) GetProperty(_ context.Context, id string) (Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemStore) ListAvailableProperties(_ context.Context) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Property
	for _, p := range s.properties {
		if p.Available {
			out = append(out, p)
		}
	}
	sortPropertiesNewestFirst(out)
	return out, nil
}

func (s *MemStore) ListAgencyProperties(_ context.Context, agencyID string) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Property
	for _, p := range s.properties {
		if p.AgencyID == agencyID {
			out = append(out, p)
		}
	}
	sortPropertiesNewestFirst(out)
	return out, nil
}

func (s *MemStore) ToggleAvailability(_ context.Context, propertyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[propertyID]
	if !ok {
		return false, fmt.Errorf("property %s: %w", propertyID, ErrNotFound)
	}
	p.Available = !p.Available
	s.properties[propertyID] = p
	return p.Available, nil
}

func (s *MemStore) ConfirmedIntervals(_ context.Context, propertyID string) ([]Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Interval
	for _, r := range s.reservations {
		if r.PropertyID == propertyID && r.Status.CountsForOverlap() {
			out = append(out, r.Interval)
		}
	}
	return out, nil
}

func (s *MemStore) TryCommit(ctx context.Context, candidate Reservation) (Reservation, error) {
	lock := s.commitLock(candidate.PropertyID)
	lock.Lock()
	defer lock.Unlock()

	// The commit must honor the caller's deadline; past it the caller treats
	// the outcome as unknown.
	if err := ctx.Err(); err != nil {
		return Reservation{}, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[candidate.PropertyID]; !ok {
		return Reservation{}, fmt.Errorf("property %s: %w", candidate.PropertyID, ErrNotFound)
	}

	var blocking []Interval
	for _, r := range s.reservations {
		if r.PropertyID == candidate.PropertyID && r.Status.CountsForOverlap() && r.Interval.Overlaps(candidate.Interval) {
			blocking = append(blocking, r.Interval)
		}
	}
	if len(blocking) > 0 {
		return Reservation{}, &ConflictError{PropertyID: candidate.PropertyID, Blocking: blocking}
	}

	candidate.ID = uuid.NewString()
	candidate.Status = StatusConfirmed
	candidate.CreatedAt = time.Now().UTC()
	s.reservations[candidate.ID] = candidate
	return candidate, nil
}

func (s *MemStore) GetReservation(_ context.Context, id string) (Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return Reservation{}, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *MemStore) ListUserReservations(_ context.Context, userID string) ([]Reservation, error) {
	return s.listReservations(func(r Reservation) bool { return r.UserID == userID })
}

func (s *MemStore) ListAgencyReservations(_ context.Context, agencyID string) ([]Reservation, error) {
	return s.listReservations(func(r Reservation) bool { return r.AgencyID == agencyID })
}

func (s *MemStore) listReservations(keep func(Reservation) bool) ([]Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Reservation
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) MarkPaid(_ context.Context, reservationID, method string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	r.IsPaid = true
	r.PaymentMethod = method
	s.reservations[reservationID] = r
	return r, nil
}

func sortPropertiesNewestFirst(ps []Property) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}
