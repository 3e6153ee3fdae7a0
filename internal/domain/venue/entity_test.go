package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVenue(t *testing.T) {
	v := NewVenue("メインホール", 100)

	assert.Equal(t, "メインホール", v.Name)
	assert.Equal(t, 100, v.TotalSeats)
	assert.Equal(t, 0, v.SeatsCommitted)
	assert.Equal(t, 100, v.AvailableSeats())
	assert.Equal(t, 0, v.Version)
}

func TestVenue_CommitSeats(t *testing.T) {
	t.Run("空席の範囲内で座席を確保できる", func(t *testing.T) {
		v := NewVenue("メインホール", 10)

		err := v.CommitSeats(6)

		require.NoError(t, err)
		assert.Equal(t, 6, v.SeatsCommitted)
		assert.Equal(t, 4, v.AvailableSeats())
	})

	t.Run("空席が不足している場合は確保できない", func(t *testing.T) {
		v := NewVenue("メインホール", 10)
		require.NoError(t, v.CommitSeats(6))

		err := v.CommitSeats(5)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientSeats)
		assert.Equal(t, 4, v.AvailableSeats())
	})

	t.Run("0以下の座席数は確保できない", func(t *testing.T) {
		v := NewVenue("メインホール", 10)

		assert.ErrorIs(t, v.CommitSeats(0), ErrInvalidSeatCount)
		assert.ErrorIs(t, v.CommitSeats(-1), ErrInvalidSeatCount)
		assert.Equal(t, 0, v.SeatsCommitted)
	})

	t.Run("総座席数ちょうどまで確保できる", func(t *testing.T) {
		v := NewVenue("メインホール", 10)

		require.NoError(t, v.CommitSeats(10))
		assert.Equal(t, 0, v.AvailableSeats())
		assert.ErrorIs(t, v.CommitSeats(1), ErrInsufficientSeats)
	})
}

func TestVenue_ReleaseSeats(t *testing.T) {
	t.Run("確保済みの座席を解放できる", func(t *testing.T) {
		v := NewVenue("メインホール", 10)
		require.NoError(t, v.CommitSeats(6))

		err := v.ReleaseSeats(6)

		require.NoError(t, err)
		assert.Equal(t, 10, v.AvailableSeats())
	})

	t.Run("確保済みを超える解放はできない", func(t *testing.T) {
		v := NewVenue("メインホール", 10)
		require.NoError(t, v.CommitSeats(3))

		err := v.ReleaseSeats(4)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReleaseExceedsCommitted)
		assert.Equal(t, 3, v.SeatsCommitted)
	})

	t.Run("0以下の座席数は解放できない", func(t *testing.T) {
		v := NewVenue("メインホール", 10)

		assert.ErrorIs(t, v.ReleaseSeats(0), ErrInvalidSeatCount)
	})
}

func TestVenue_Validate(t *testing.T) {
	tests := []struct {
		name    string
		venue   *Venue
		wantErr error
	}{
		{"正常な会場", &Venue{Name: "ホール", TotalSeats: 10}, nil},
		{"会場名なし", &Venue{TotalSeats: 10}, ErrVenueNameRequired},
		{"総座席数0", &Venue{Name: "ホール", TotalSeats: 0}, ErrInvalidTotalSeats},
		{"確保済みが負", &Venue{Name: "ホール", TotalSeats: 10, SeatsCommitted: -1}, ErrInvalidSeatsCommitted},
		{"確保済みが総座席数を超過", &Venue{Name: "ホール", TotalSeats: 10, SeatsCommitted: 11}, ErrInvalidSeatsCommitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.venue.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
