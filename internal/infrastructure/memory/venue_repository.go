package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/biletnam/ticket-service/internal/domain/venue"
)

// VenueRepository はインメモリの会場リポジトリ
// 容量台帳の check-then-update を単一のミューテックスで直列化することで
// CommitSeats / ReleaseSeats を線形化可能にしている
type VenueRepository struct {
	mu     sync.Mutex
	venues map[string]*venue.Venue
}

func NewVenueRepository() *VenueRepository {
	return &VenueRepository{venues: make(map[string]*venue.Venue)}
}

func (r *VenueRepository) Create(_ context.Context, v *venue.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if _, ok := r.venues[v.ID]; ok {
		return venue.ErrVenueAlreadyExists
	}
	r.venues[v.ID] = copyVenue(v)
	return nil
}

func (r *VenueRepository) GetByID(_ context.Context, id string) (*venue.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return nil, venue.ErrVenueNotFound
	}
	return copyVenue(v), nil
}

func (r *VenueRepository) GetByName(_ context.Context, name string) (*venue.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.venues {
		if v.Name == name {
			return copyVenue(v), nil
		}
	}
	return nil, venue.ErrVenueNotFound
}

func (r *VenueRepository) AvailableSeats(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return 0, venue.ErrVenueNotFound
	}
	return v.AvailableSeats(), nil
}

func (r *VenueRepository) CommitSeats(_ context.Context, id string, numSeats int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return venue.ErrVenueNotFound
	}
	if err := v.CommitSeats(numSeats); err != nil {
		return err
	}
	v.Version++
	return nil
}

func (r *VenueRepository) ReleaseSeats(_ context.Context, id string, numSeats int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return venue.ErrVenueNotFound
	}
	if err := v.ReleaseSeats(numSeats); err != nil {
		return err
	}
	v.Version++
	return nil
}

func copyVenue(v *venue.Venue) *venue.Venue {
	cp := *v
	return &cp
}

var _ venue.Repository = (*VenueRepository)(nil)
