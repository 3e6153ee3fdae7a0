package handler

import (
	"context"

	"github.com/biletnam/ticket-service/internal/application"
	"github.com/biletnam/ticket-service/internal/domain/hold"
)

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	NumSeatsAvailable(ctx context.Context) (int, error)
	FindAndHoldSeats(ctx context.Context, input application.FindAndHoldSeatsInput) (*hold.Hold, error)
	ReserveSeats(ctx context.Context, holdID, customerEmail string) (string, error)
	ReleaseHold(ctx context.Context, holdID, customerEmail string) (*hold.Hold, error)
	GetHold(ctx context.Context, id string) (*hold.Hold, error)
	GetCustomerHolds(ctx context.Context, customerEmail string, limit, offset int) ([]*hold.Hold, error)
}
