package expiry

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/events"
)

// Sweeper removes pending bookings whose hold window lapsed. The original
// storage relied on a TTL index for this; doing it here lets the removal emit
// a booking.expired event like every other state change.
type Sweeper struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

// Sweep expires every pending booking with expiresAt before now and returns
// the number of bookings removed.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	unit, ctx, err := support.StartWriteUnit(ctx, s.UoWFactory)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	lapsed, err := unit.Bookings().ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, bk := range lapsed {
		if !bk.Lapsed(now) {
			continue
		}
		if err := unit.Bookings().Delete(ctx, bk.ID); err != nil {
			return removed, err
		}
		ev := domainbooking.Expired{BookingID: bk.ID, ListingID: bk.ListingID, At: now}
		if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.encoder(), []events.DomainEvent{ev}); err != nil {
			return removed, err
		}
		removed++
	}

	if err := unit.Commit(ctx); err != nil {
		return removed, err
	}
	committed = true

	if removed > 0 && s.Logger != nil {
		s.Logger.Info("expired pending bookings removed", slog.Int("count", removed))
	}
	return removed, nil
}

func (s *Sweeper) encoder() outbox.EventEncoder {
	if s.Encoder != nil {
		return s.Encoder
	}
	return outbox.JSONEventEncoder{}
}

// Run is the cron entrypoint. Errors are logged, not returned, so a failed
// sweep never stops the schedule.
func (s *Sweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx, time.Now().UTC()); err != nil && s.Logger != nil {
		s.Logger.Error("booking expiry sweep failed", slog.Any("error", err))
	}
}
