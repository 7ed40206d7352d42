package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/BruksfildServices01/barber-agenda/internal/cache"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/metrics"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

var tracer = otel.Tracer("agenda/usecase/appointment")

// Runtime holds the collaborators and settings shared by the use cases.
type Runtime struct {
	Cache   cache.Cache
	Metrics *metrics.BookingMetrics
	Logger  *logging.Logger

	SlotStep           time.Duration // zero means "same as duration"
	DefaultDuration    time.Duration
	NoShowBlocks       bool
	BookingHorizonDays int
	CacheTTL           time.Duration

	Now func() time.Time
}

func (rt *Runtime) withDefaults() *Runtime {
	out := Runtime{}
	if rt != nil {
		out = *rt
	}
	if out.Cache == nil {
		out.Cache = cache.NewNoop()
	}
	if out.Logger == nil {
		out.Logger = logging.Default()
	}
	if out.DefaultDuration <= 0 {
		out.DefaultDuration = 30 * time.Minute
	}
	if out.CacheTTL <= 0 {
		out.CacheTTL = time.Minute
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}

func (rt *Runtime) policy() availability.Policy {
	return availability.Policy{NoShowBlocks: rt.NoShowBlocks}
}

// ======================================================
// Availability cache
// ======================================================

func availabilityBucket(shopID uuid.UUID) string {
	return "availability:" + shopID.String()
}

func availabilityField(professionalID uuid.UUID, date string, duration, step time.Duration) string {
	return fmt.Sprintf("%s:%s:%d:%d", professionalID, date, int(duration.Minutes()), int(step.Minutes()))
}

// cachedSlots also returns the generation it read under, which the caller
// stores with. gen < 0 means the cache is unusable and nothing is stored.
func (rt *Runtime) cachedSlots(ctx context.Context, bucket, field string) (slots []availability.Slot, gen int64, ok bool) {
	gen, err := rt.Cache.Generation(ctx, bucket)
	if err != nil {
		rt.Metrics.ObserveCache("error")
		rt.Logger.Warn("availability cache read failed", "err", err)
		return nil, -1, false
	}

	raw, ok, err := rt.Cache.Get(ctx, bucket, gen, field)
	if err != nil {
		rt.Metrics.ObserveCache("error")
		rt.Logger.Warn("availability cache read failed", "err", err)
		return nil, -1, false
	}
	if !ok {
		rt.Metrics.ObserveCache("miss")
		return nil, gen, false
	}

	if err := json.Unmarshal(raw, &slots); err != nil {
		rt.Metrics.ObserveCache("error")
		return nil, gen, false
	}
	rt.Metrics.ObserveCache("hit")
	return slots, gen, true
}

// storeSlots writes under the generation seen before computing, so a
// result that raced an invalidation is never served.
func (rt *Runtime) storeSlots(ctx context.Context, bucket string, gen int64, field string, slots []availability.Slot) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := rt.Cache.Set(ctx, bucket, gen, field, raw, rt.CacheTTL); err != nil {
		rt.Logger.Warn("availability cache write failed", "err", err)
	}
}

// invalidate retires every cached availability entry of the shop.
func (rt *Runtime) invalidate(ctx context.Context, shopID uuid.UUID) {
	if err := rt.Cache.Invalidate(ctx, availabilityBucket(shopID)); err != nil {
		rt.Logger.Warn("availability cache invalidation failed", "shop_id", shopID, "err", err)
	}
}

// AvailabilityCache lets writes outside the booking flow (hours, time-off,
// shop settings) drop stale slot listings.
type AvailabilityCache struct {
	rt *Runtime
}

func NewAvailabilityCache(rt *Runtime) *AvailabilityCache {
	return &AvailabilityCache{rt: rt.withDefaults()}
}

func (a *AvailabilityCache) Invalidate(ctx context.Context, shopID uuid.UUID) {
	if a == nil {
		return
	}
	a.rt.invalidate(ctx, shopID)
}

// ======================================================
// Mapping
// ======================================================

func toSchedule(rows []models.BusinessHours) availability.Schedule {
	out := make(availability.Schedule, 0, len(rows))
	for _, r := range rows {
		out = append(out, availability.DayHours{
			Weekday:   r.Weekday,
			Closed:    r.Closed,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	return out
}

func toAppointmentSpans(rows []models.Appointment) []availability.AppointmentSpan {
	out := make([]availability.AppointmentSpan, 0, len(rows))
	for _, r := range rows {
		out = append(out, availability.AppointmentSpan{
			ProfessionalID: r.ProfessionalID,
			Start:          r.StartAt,
			End:            r.EndAt,
			Status:         appointment.Status(r.Status),
		})
	}
	return out
}

func toTimeOffSpans(rows []models.TimeOff) []availability.TimeOffSpan {
	out := make([]availability.TimeOffSpan, 0, len(rows))
	for _, r := range rows {
		out = append(out, availability.TimeOffSpan{
			ProfessionalID: r.ProfessionalID,
			Start:          r.StartAt,
			End:            r.EndAt,
		})
	}
	return out
}
