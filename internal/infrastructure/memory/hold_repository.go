package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/biletnam/ticket-service/internal/domain/hold"
)

// HoldRepository はインメモリの仮押さえリポジトリ
// Book / Release の状態遷移をミューテックスで直列化しているため、
// 同一の仮押さえに対する並行呼び出しは必ず1つだけが成功する
type HoldRepository struct {
	mu    sync.Mutex
	holds map[string]*hold.Hold
}

func NewHoldRepository() *HoldRepository {
	return &HoldRepository{holds: make(map[string]*hold.Hold)}
}

func (r *HoldRepository) Create(_ context.Context, h *hold.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	r.holds[h.ID] = copyHold(h)
	return nil
}

func (r *HoldRepository) GetByID(_ context.Context, id string) (*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[id]
	if !ok {
		return nil, hold.ErrHoldNotFound
	}
	return copyHold(h), nil
}

func (r *HoldRepository) GetByCustomerID(_ context.Context, customerID string, limit, offset int) ([]*hold.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*hold.Hold
	for _, h := range r.holds {
		if h.CustomerID == customerID {
			result = append(result, copyHold(h))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *HoldRepository) Book(_ context.Context, id, bookingCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[id]
	if !ok {
		return hold.ErrHoldNotFound
	}
	return h.Book(bookingCode)
}

func (r *HoldRepository) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[id]
	if !ok {
		return hold.ErrHoldNotFound
	}
	return h.Release()
}

func copyHold(h *hold.Hold) *hold.Hold {
	cp := *h
	if h.BookingCode != nil {
		code := *h.BookingCode
		cp.BookingCode = &code
	}
	return &cp
}

var _ hold.Repository = (*HoldRepository)(nil)
