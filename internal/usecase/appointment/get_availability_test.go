package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-agenda/internal/cache"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/metrics"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

func slotStarts(slots []availability.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestGetAvailability_ConfirmedAppointmentLeaves19Slots(t *testing.T) {
	f := newFixture()
	f.seedAppointment(monday(10, 0), monday(10, 30), "confirmed")
	uc := NewGetAvailability(f.repo, f.rt)

	slots, err := uc.Execute(context.Background(), GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30,
	})

	require.NoError(t, err)
	starts := slotStarts(slots)
	require.Len(t, starts, 19)
	assert.Equal(t, []string{"09:00", "09:30", "10:30"}, starts[:3])
	assert.Equal(t, "18:30", starts[18])
}

func TestGetAvailability_DurationFromServices(t *testing.T) {
	f := newFixture()
	uc := NewGetAvailability(f.repo, f.rt)

	slots, err := uc.Execute(context.Background(), GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02",
		ServiceIDs: []uuid.UUID{f.haircut.ID, f.beard.ID, f.haircut.ID},
	})

	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, 45*time.Minute, slots[0].End.Sub(slots[0].Start))
	assert.Equal(t, "09:45", slots[1].Start.Format("15:04"))
}

func TestGetAvailability_Unavailable(t *testing.T) {
	t.Run("inactive professional", func(t *testing.T) {
		f := newFixture()
		p := f.prof
		p.Active = false
		f.repo.professionals[p.ID] = p

		slots, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
			ShopID: f.shop.ID, ProfessionalID: p.ID, Date: "2026-03-02", DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("closed day", func(t *testing.T) {
		f := newFixture()
		slots, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
			ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-08", DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("shop-wide full day time off", func(t *testing.T) {
		f := newFixture()
		f.repo.timeOff = append(f.repo.timeOff, models.TimeOff{
			ID: uuid.New(), ShopID: f.shop.ID, StartAt: monday(0, 0), EndAt: monday(0, 0).AddDate(0, 0, 1),
		})
		slots, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
			ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}

func TestGetAvailability_Validation(t *testing.T) {
	f := newFixture()
	uc := NewGetAvailability(f.repo, f.rt)
	ctx := context.Background()

	cases := map[string]GetAvailabilityInput{
		"invalid_duration":  {ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02"},
		"invalid_date":      {ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "02/03/2026", DurationMinutes: 30},
		"date_in_past":      {ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-02-27", DurationMinutes: 30},
		"date_out_of_range": {ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-12-01", DurationMinutes: 30},
		"service_not_found": {ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", ServiceIDs: []uuid.UUID{uuid.New()}},
	}

	for code, in := range cases {
		_, err := uc.Execute(ctx, in)
		var ve httperr.ValidationError
		require.True(t, errors.As(err, &ve), code)
		assert.Equal(t, code, ve.Code)
	}

	_, err := uc.Execute(ctx, GetAvailabilityInput{ShopID: f.shop.ID, ProfessionalID: uuid.New(), Date: "2026-03-02", DurationMinutes: 30})
	assert.True(t, httperr.IsNotFound(err))
}

func TestGetAvailability_TodayDropsPastSlots(t *testing.T) {
	f := newFixture()
	f.rt.Now = func() time.Time { return monday(15, 10) }

	slots, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 60,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"16:00", "17:00", "18:00"}, slotStarts(slots))
}

func TestGetAvailability_StorageErrorPropagates(t *testing.T) {
	f := newFixture()
	f.repo.listErr = errors.New("connection refused")

	_, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30,
	})

	require.Error(t, err)
	assert.False(t, httperr.IsValidation(err))
}

func TestGetAvailability_CacheHitAndInvalidation(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	f.rt.Cache = cache.NewRedis(client, "agenda")
	f.rt.Metrics = m

	get := NewGetAvailability(f.repo, f.rt)
	create := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()
	in := GetAvailabilityInput{ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30}

	first, err := get.Execute(ctx, in)
	require.NoError(t, err)
	second, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, slotStarts(first), slotStarts(second))

	assert.Equal(t, 1.0, counterValue(t, reg, "agenda_availability_cache_lookups_total", "result", "hit"))
	assert.Equal(t, 1.0, counterValue(t, reg, "agenda_availability_cache_lookups_total", "result", "miss"))

	_, err = create.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, Channel: ChannelStaff, ClientID: &f.client.ID,
		ProfessionalID: f.prof.ID, Date: "2026-03-02", Time: "09:00",
	})
	require.NoError(t, err)
	gen, err := mr.Get("agenda:" + availabilityBucket(f.shop.ID) + ":gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	third, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, third, 19)
	assert.NotContains(t, slotStarts(third), "09:00")
}

func TestGetAvailability_CacheDownFallsBackToCompute(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.rt.Cache = cache.NewRedis(client, "agenda")
	mr.Close()

	slots, err := NewGetAvailability(f.repo, f.rt).Execute(context.Background(), GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30,
	})

	require.NoError(t, err)
	assert.Len(t, slots, 20)
}

func TestAvailabilityCache_InvalidateAfterTimeOff(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.rt.Cache = cache.NewRedis(client, "agenda")

	get := NewGetAvailability(f.repo, f.rt)
	ctx := context.Background()
	in := GetAvailabilityInput{ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30}

	before, err := get.Execute(ctx, in)
	require.NoError(t, err)
	require.Len(t, before, 20)

	// shop-wide lunch break written outside the booking flow
	f.repo.timeOff = append(f.repo.timeOff, models.TimeOff{
		ID: uuid.New(), ShopID: f.shop.ID, StartAt: monday(12, 0), EndAt: monday(13, 0),
	})

	stale, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, stale, 20)

	NewAvailabilityCache(f.rt).Invalidate(ctx, f.shop.ID)

	fresh, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, fresh, 18)
	assert.NotContains(t, slotStarts(fresh), "12:00")
	assert.NotContains(t, slotStarts(fresh), "12:30")
}

func TestGetAvailability_ListingRacingABookingIsNotCached(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.rt.Cache = cache.NewRedis(client, "agenda")

	get := NewGetAvailability(f.repo, f.rt)
	ctx := context.Background()
	in := GetAvailabilityInput{ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30}

	// a booking commits after the listing already read the appointments
	f.repo.onListTimeOff = func() {
		f.seedAppointment(monday(10, 0), monday(10, 30), "confirmed")
		NewAvailabilityCache(f.rt).Invalidate(ctx, f.shop.ID)
	}

	racing, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, racing, 20)

	next, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, next, 19)
	assert.NotContains(t, slotStarts(next), "10:00")
}

func TestGetAvailability_CachedEntryExpires(t *testing.T) {
	f := newFixture()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.rt.Cache = cache.NewRedis(client, "agenda")
	f.rt.CacheTTL = time.Minute

	get := NewGetAvailability(f.repo, f.rt)
	ctx := context.Background()
	in := GetAvailabilityInput{ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", DurationMinutes: 30}
	other := in
	other.DurationMinutes = 60

	_, err := get.Execute(ctx, in)
	require.NoError(t, err)

	// a write that skipped invalidation
	f.seedAppointment(monday(10, 0), monday(10, 30), "confirmed")

	// listings of other durations keep touching the shop's entries
	for i := 0; i < 3; i++ {
		mr.FastForward(25 * time.Second)
		_, err := get.Execute(ctx, other)
		require.NoError(t, err)
	}

	slots, err := get.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, slots, 19)
}

func TestAvailabilityCache_NilIsNoop(t *testing.T) {
	var c *AvailabilityCache
	assert.NotPanics(t, func() { c.Invalidate(context.Background(), uuid.New()) })
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
