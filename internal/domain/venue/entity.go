package venue

import "time"

// Venue は会場エンティティを表す
// 本システムでは単一会場（シングルトン）を前提とする
type Venue struct {
	ID             string
	Name           string
	TotalSeats     int
	SeatsCommitted int // 仮押さえ済み＋予約確定済みの座席数
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // 楽観的ロック用
}

// NewVenue は新しい会場を作成する
func NewVenue(name string, totalSeats int) *Venue {
	now := time.Now()
	return &Venue{
		Name:       name,
		TotalSeats: totalSeats,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    0,
	}
}

// AvailableSeats は空席数を返す
func (v *Venue) AvailableSeats() int {
	return v.TotalSeats - v.SeatsCommitted
}

// CommitSeats は座席を確保する
// 不変条件: 0 <= SeatsCommitted <= TotalSeats
func (v *Venue) CommitSeats(n int) error {
	if n <= 0 {
		return ErrInvalidSeatCount
	}
	if v.AvailableSeats() < n {
		return ErrInsufficientSeats
	}
	v.SeatsCommitted += n
	v.UpdatedAt = time.Now()
	return nil
}

// ReleaseSeats は確保済みの座席を解放する
func (v *Venue) ReleaseSeats(n int) error {
	if n <= 0 {
		return ErrInvalidSeatCount
	}
	if v.SeatsCommitted < n {
		return ErrReleaseExceedsCommitted
	}
	v.SeatsCommitted -= n
	v.UpdatedAt = time.Now()
	return nil
}

// Validate は会場の検証を行う
func (v *Venue) Validate() error {
	if v.Name == "" {
		return ErrVenueNameRequired
	}
	if v.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	if v.SeatsCommitted < 0 || v.SeatsCommitted > v.TotalSeats {
		return ErrInvalidSeatsCommitted
	}
	return nil
}
