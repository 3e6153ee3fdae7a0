package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/biletnam/ticket-service/internal/domain/customer"
)

// CustomerRepository はインメモリの顧客リポジトリ
// メールアドレスは正規化済みキーで引くため、大文字小文字を区別しない
type CustomerRepository struct {
	mu      sync.Mutex
	byID    map[string]*customer.Customer
	byEmail map[string]*customer.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		byID:    make(map[string]*customer.Customer),
		byEmail: make(map[string]*customer.Customer),
	}
}

func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := customer.NormalizeEmail(c.Email)
	if _, ok := r.byEmail[email]; ok {
		return customer.ErrCustomerAlreadyExists
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	cp.Email = email
	r.byID[cp.ID] = &cp
	r.byEmail[email] = &cp
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byEmail[customer.NormalizeEmail(email)]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

var _ customer.Repository = (*CustomerRepository)(nil)
