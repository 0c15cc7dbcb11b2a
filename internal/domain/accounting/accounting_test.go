package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

func TestComputeCharges(t *testing.T) {
	charges := ComputeCharges(money.Must(10000, "INR"), 2)

	assert.Equal(t, 2, charges.Nights)
	assert.Equal(t, int64(20000), charges.Base.Amount)
	assert.Equal(t, int64(3600), charges.Tax.Amount)
	assert.Equal(t, int64(400), charges.Platform.Amount)
	assert.Equal(t, int64(24000), charges.Total.Amount)
	assert.Equal(t, "INR", charges.Total.Currency)
}

func TestComputeChargesTruncatesFractions(t *testing.T) {
	charges := ComputeCharges(money.Must(99, "INR"), 1)

	assert.Equal(t, int64(99), charges.Base.Amount)
	assert.Equal(t, int64(17), charges.Tax.Amount)
	assert.Equal(t, int64(1), charges.Platform.Amount)
	assert.Equal(t, int64(117), charges.Total.Amount)
}

func TestNewRecord(t *testing.T) {
	charges := ComputeCharges(money.Must(5000, "INR"), 3)

	rec, err := NewRecord(CreateParams{
		ID:        "acc-1",
		BookingID: "bk-1",
		Payee:     "owner-1",
		Charges:   charges,
	})
	require.NoError(t, err)
	assert.Equal(t, charges.Total, rec.Total)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = NewRecord(CreateParams{ID: "acc-2", Payee: "owner-1"})
	assert.ErrorIs(t, err, ErrBookingRequired)

	_, err = NewRecord(CreateParams{ID: "acc-3", BookingID: "bk-1"})
	assert.ErrorIs(t, err, ErrPayeeRequired)
}
