package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
)

// ReservationRepository は予約リポジトリのメモリ実装
type ReservationRepository struct{ store *Store }

// NewReservationRepository はReservationRepositoryを作成する
func NewReservationRepository(store *Store) *ReservationRepository {
	return &ReservationRepository{store: store}
}

func (r *ReservationRepository) Create(_ context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	mtx, err := r.store.txOf(tx)
	if err != nil {
		return err
	}
	if err := reservation.ValidateRange(res.StartDate, res.EndDate); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.IsConfirmed() && s.confirmedOverlapLocked(res.Range(), "") {
		return reservation.ErrDatesUnavailable
	}
	res.ID = uuid.NewString()
	s.seq++
	s.reservations[res.ID] = &storedReservation{seq: s.seq, res: clone(res)}
	id := res.ID
	mtx.record(func() { delete(s.reservations, id) })
	return nil
}

func (r *ReservationRepository) GetByID(_ context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	if _, err := r.store.txOf(tx); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stored, ok := r.store.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	res := clone(&stored.res)
	return &res, nil
}

func (r *ReservationRepository) List(_ context.Context) ([]*reservation.Reservation, error) {
	r.store.mu.RLock()
	stored := make([]*storedReservation, 0, len(r.store.reservations))
	for _, s := range r.store.reservations {
		stored = append(stored, s)
	}
	r.store.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.res.CreatedAt.Equal(b.res.CreatedAt) {
			return a.res.CreatedAt.After(b.res.CreatedAt)
		}
		return a.seq > b.seq
	})
	result := make([]*reservation.Reservation, len(stored))
	for i, s := range stored {
		res := clone(&s.res)
		result[i] = &res
	}
	return result, nil
}

func (r *ReservationRepository) FindOverlapping(_ context.Context, tx transaction.Tx, rg calendar.Range, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	if _, err := r.store.txOf(tx); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*reservation.Reservation
	for _, s := range r.store.reservations {
		if !hasStatus(s.res.Status, statuses) || !s.res.Range().Overlaps(rg) {
			continue
		}
		res := clone(&s.res)
		result = append(result, &res)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].StartDate.Compare(result[j].StartDate); c != 0 {
			return c < 0
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *ReservationRepository) Update(_ context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	mtx, err := r.store.txOf(tx)
	if err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reservations[res.ID]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	if res.IsConfirmed() && s.confirmedOverlapLocked(stored.res.Range(), res.ID) {
		return reservation.ErrDatesUnavailable
	}
	prev := stored.res
	stored.res.Status = res.Status
	stored.res.PaymentStatus = res.PaymentStatus
	stored.res.Notes = res.Notes
	stored.res.UpdatedAt = res.UpdatedAt
	mtx.record(func() { stored.res = prev })
	return nil
}

func (r *ReservationRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.reservations[id]; !ok {
		return reservation.ErrReservationNotFound
	}
	delete(r.store.reservations, id)
	return nil
}

func (r *ReservationRepository) CountByStatus(_ context.Context) (map[reservation.Status]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	counts := make(map[reservation.Status]int)
	for _, s := range r.store.reservations {
		counts[s.res.Status]++
	}
	return counts, nil
}

// confirmedOverlapLocked は確定済み予約同士の重なりを拒否する制約に相当する
func (s *Store) confirmedOverlapLocked(rg calendar.Range, exceptID string) bool {
	for id, stored := range s.reservations {
		if id != exceptID && stored.res.IsConfirmed() && stored.res.Range().Overlaps(rg) {
			return true
		}
	}
	return false
}

func hasStatus(s reservation.Status, statuses []reservation.Status) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func clone(res *reservation.Reservation) reservation.Reservation {
	c := *res
	if res.Guest.GuestNames != nil {
		c.Guest.GuestNames = append([]string(nil), res.Guest.GuestNames...)
	}
	return c
}

var _ reservation.Repository = (*ReservationRepository)(nil)
