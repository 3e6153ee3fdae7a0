package hold

import "time"

// Status は仮押さえの状態を表す
type Status string

const (
	StatusActive   Status = "active"
	StatusBooked   Status = "booked"
	StatusReleased Status = "released"
)

// Hold は座席の仮押さえエンティティを表す
// active --予約確定--> booked（終端状態）
// active --解放--> released（終端状態）
// の2つの遷移のみが合法である
type Hold struct {
	ID          string
	VenueID     string
	CustomerID  string
	NumSeats    int
	Status      Status
	BookingCode *string // booked への遷移時に一度だけ設定され、以後不変
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewHold は新しい仮押さえを作成する
func NewHold(venueID, customerID string, numSeats int) *Hold {
	now := time.Now()
	return &Hold{
		VenueID:    venueID,
		CustomerID: customerID,
		NumSeats:   numSeats,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive は仮押さえが有効かを返す
func (h *Hold) IsActive() bool {
	return h.Status == StatusActive
}

// Book は仮押さえを予約確定し、予約コードを設定する
func (h *Hold) Book(bookingCode string) error {
	if bookingCode == "" {
		return ErrBookingCodeRequired
	}
	switch h.Status {
	case StatusBooked:
		return ErrHoldAlreadyBooked
	case StatusReleased:
		return ErrHoldNotActive
	}
	h.Status = StatusBooked
	h.BookingCode = &bookingCode
	h.UpdatedAt = time.Now()
	return nil
}

// Release は仮押さえを解放する
func (h *Hold) Release() error {
	switch h.Status {
	case StatusBooked:
		return ErrHoldAlreadyBooked
	case StatusReleased:
		return ErrHoldAlreadyReleased
	}
	h.Status = StatusReleased
	h.UpdatedAt = time.Now()
	return nil
}

// Validate は仮押さえの検証を行う
func (h *Hold) Validate() error {
	if h.VenueID == "" {
		return ErrVenueIDRequired
	}
	if h.CustomerID == "" {
		return ErrCustomerIDRequired
	}
	if h.NumSeats <= 0 {
		return ErrInvalidNumSeats
	}
	return nil
}
