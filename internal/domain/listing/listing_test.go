package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

func validParams() CreateParams {
	return CreateParams{
		ID:       "ls-1",
		Owner:    "usr-1",
		Title:    "  Seaside cottage  ",
		Price:    money.Must(10000, "INR"),
		Location: "Goa, India",
		Capacity: 4,
		Now:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	l, err := New(validParams())
	require.NoError(t, err)

	assert.Equal(t, "Seaside cottage", l.Title)
	assert.Equal(t, "Goa, India", l.Location)

	events := l.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "listing.created", events[0].EventName())
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"blank title", func(p *CreateParams) { p.Title = "   " }, ErrTitleRequired},
		{"blank location", func(p *CreateParams) { p.Location = "" }, ErrLocationRequired},
		{"zero capacity", func(p *CreateParams) { p.Capacity = 0 }, ErrInvalidCapacity},
		{"zero price", func(p *CreateParams) { p.Price = money.Money{Currency: "INR"} }, ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, err := New(params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMatchesLocation(t *testing.T) {
	l, err := New(validParams())
	require.NoError(t, err)

	assert.True(t, l.MatchesLocation("goa"))
	assert.True(t, l.MatchesLocation("  GOA  "))
	assert.True(t, l.MatchesLocation(""))
	assert.False(t, l.MatchesLocation("mumbai"))
}

func TestFitsPeople(t *testing.T) {
	l, err := New(validParams())
	require.NoError(t, err)

	assert.True(t, l.FitsPeople(1))
	assert.True(t, l.FitsPeople(4))
	assert.False(t, l.FitsPeople(0))
	assert.False(t, l.FitsPeople(5))
}

func TestSetPhoto(t *testing.T) {
	l, err := New(validParams())
	require.NoError(t, err)

	at := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)
	l.SetPhoto("https://cdn.example.com/ls-1.jpg", at)

	assert.Equal(t, "https://cdn.example.com/ls-1.jpg", l.PhotoURL)
	assert.Equal(t, at, l.UpdatedAt)
}
