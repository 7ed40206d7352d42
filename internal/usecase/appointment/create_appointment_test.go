package appointment

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

func TestCreateAppointment_EndIsSumOfServices(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)

	res, err := uc.Execute(context.Background(), CreateAppointmentInput{
		ShopID: f.shop.ID, Channel: ChannelStaff, ClientID: &f.client.ID,
		ProfessionalID: f.prof.ID, ServiceIDs: []uuid.UUID{f.haircut.ID, f.beard.ID},
		Date: "2026-03-02", Time: "10:00",
	})

	require.NoError(t, err)
	ap := res.Appointment
	assert.False(t, res.Replayed)
	assert.Equal(t, string(domain.StatusPending), ap.Status)
	assert.Equal(t, monday(10, 0), ap.StartAt)
	assert.Equal(t, monday(10, 45), ap.EndAt)
	require.Len(t, ap.Services, 2)
	assert.Equal(t, 50.0, ap.Services[0].Price)
	assert.Equal(t, 15, ap.Services[1].DurationMinutes)

	stored, err := f.repo.GetAppointment(context.Background(), f.shop.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, ap.StartAt, stored.StartAt)
	assert.Equal(t, ap.EndAt, stored.EndAt)
}

func TestCreateAppointment_DefaultAndExplicitDuration(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()

	res, err := uc.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", Time: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, res.Appointment.EndAt.Sub(res.Appointment.StartAt))

	start := monday(11, 0)
	end := monday(12, 30)
	res, err = uc.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		StartAt: &start, EndAt: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, end, res.Appointment.EndAt)
}

func TestCreateAppointment_Validation(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()

	inactive := models.Service{ID: uuid.New(), ShopID: f.shop.ID, Name: "Luzes", DurationMinutes: 60, Active: false}
	f.repo.services[inactive.ID] = inactive

	start := monday(10, 0)
	badEnd := monday(10, 0)
	mismatch := monday(11, 0)
	past := fixedNow.Add(-time.Hour)
	missing := uuid.New()

	cases := map[string]CreateAppointmentInput{
		"invalid_date_or_time":   {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", Time: "25:00"},
		"date_in_past":           {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &past},
		"professional_not_found": {ClientID: &f.client.ID, ProfessionalID: uuid.New(), StartAt: &start},
		"service_not_found":      {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &start, ServiceIDs: []uuid.UUID{uuid.New()}},
		"service_inactive":       {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &start, ServiceIDs: []uuid.UUID{inactive.ID}},
		"invalid_interval":       {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &start, EndAt: &badEnd},
		"end_mismatch":           {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &start, EndAt: &mismatch, ServiceIDs: []uuid.UUID{f.haircut.ID}},
		"invalid_duration":       {ClientID: &f.client.ID, ProfessionalID: f.prof.ID, StartAt: &start, DurationMinutes: -5},
		"client_not_found":       {ClientID: &missing, ProfessionalID: f.prof.ID, StartAt: &start},
		"client_required":        {ProfessionalID: f.prof.ID, StartAt: &start, ClientName: "Sem telefone"},
	}

	for code, in := range cases {
		in.ShopID = f.shop.ID
		_, err := uc.Execute(ctx, in)
		var ve httperr.ValidationError
		require.True(t, errors.As(err, &ve), "%s: got %v", code, err)
		assert.Equal(t, code, ve.Code)
	}

	assert.Zero(t, f.repo.creates, "validation failures must not reach storage")
}

func TestCreateAppointment_OverlapIsConflict(t *testing.T) {
	f := newFixture()
	f.seedAppointment(monday(10, 0), monday(10, 30), "confirmed")
	f.seedAppointment(monday(11, 0), monday(11, 30), "cancelled")
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", Time: "10:15",
	})
	assert.True(t, httperr.IsConflict(err))

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", Time: "11:00",
	})
	assert.NoError(t, err, "cancelled appointments free their interval")

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", Time: "10:30",
	})
	assert.NoError(t, err, "touching intervals do not overlap")
}

func TestCreateAppointment_ConcurrentOverlapOneWinner(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		f := newFixture()
		uc := NewCreateAppointment(f.repo, nil, f.rt)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		start := make(chan struct{})

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := uc.Execute(context.Background(), CreateAppointmentInput{
					ShopID: f.shop.ID, Channel: ChannelPublic,
					ClientName: "Cliente", ClientPhone: "1190000000" + string(rune('0'+i)),
					ProfessionalID: f.prof.ID, Date: "2026-03-02", Time: "10:00",
					RequireOpenHours: true,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case httperr.IsConflict(err):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		require.Equal(t, 1, successes, "trial %d", trial)
		require.Equal(t, 1, conflicts, "trial %d", trial)

		rows, _ := f.repo.ListAppointmentsForPeriod(context.Background(), f.prof.ID, monday(0, 0), monday(23, 59))
		require.Len(t, rows, 1)
		assert.Equal(t, string(domain.StatusPending), rows[0].Status)
	}
}

func TestCreateAppointment_ConcurrentNewPhoneCreatesOneClient(t *testing.T) {
	times := []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}

	for trial := 0; trial < 50; trial++ {
		f := newFixture()
		uc := NewCreateAppointment(f.repo, nil, f.rt)

		var wg sync.WaitGroup
		start := make(chan struct{})
		clientIDs := make([]uuid.UUID, len(times))

		for i, hhmm := range times {
			wg.Add(1)
			go func(i int, hhmm string) {
				defer wg.Done()
				<-start
				res, err := uc.Execute(context.Background(), CreateAppointmentInput{
					ShopID: f.shop.ID, Channel: ChannelPublic,
					ClientName: "Pedro", ClientPhone: "11977776666",
					ProfessionalID: f.prof.ID, Date: "2026-03-02", Time: hhmm,
					RequireOpenHours: true,
				})
				if err != nil {
					t.Errorf("%s: %v", hhmm, err)
					return
				}
				clientIDs[i] = res.Appointment.ClientID
			}(i, hhmm)
		}
		close(start)
		wg.Wait()

		f.repo.mu.Lock()
		var stored int
		for _, c := range f.repo.clients {
			if c.ShopID == f.shop.ID && c.Phone == "11977776666" {
				stored++
			}
		}
		f.repo.mu.Unlock()

		require.Equal(t, 1, stored, "trial %d", trial)
		for _, id := range clientIDs {
			require.Equal(t, clientIDs[0], id, "trial %d", trial)
		}
	}
}

func TestCreateAppointment_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()
	in := CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", Time: "14:00", IdempotencyKey: "req-123",
	}

	first, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Appointment.ID, second.Appointment.ID)
	assert.Equal(t, 1, f.repo.creates)
}

func TestCreateAppointment_RequireOpenHours(t *testing.T) {
	f := newFixture()
	f.repo.timeOff = append(f.repo.timeOff, models.TimeOff{
		ID: uuid.New(), ShopID: f.shop.ID, ProfessionalID: &f.prof.ID,
		StartAt: monday(12, 0), EndAt: monday(13, 0),
	})
	f.shop.MinAdvanceMinutes = 120
	f.repo.shops[f.shop.ID] = f.shop
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	ctx := context.Background()

	base := CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-03-02", RequireOpenHours: true,
	}

	in := base
	in.Time = "18:45"
	_, err := uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))

	in.Time = "12:30"
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "professional_unavailable"))

	f.rt.Now = func() time.Time { return monday(9, 0) }
	uc = NewCreateAppointment(f.repo, nil, f.rt)
	in.Time = "10:00"
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "too_soon"))

	in.Time = "11:00"
	_, err = uc.Execute(ctx, in)
	assert.NoError(t, err)

	staff := base
	staff.RequireOpenHours = false
	staff.Time = "19:30"
	_, err = uc.Execute(ctx, staff)
	assert.NoError(t, err, "staff may book outside business hours")
}

func TestCreateAppointment_SelfServiceHonoursBookingHorizon(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)
	get := NewGetAvailability(f.repo, f.rt)
	ctx := context.Background()

	// horizon is 60 days from Sunday 2026-03-01: Thursday 2026-04-30 is the last day
	in := CreateAppointmentInput{
		ShopID: f.shop.ID, ClientID: &f.client.ID, ProfessionalID: f.prof.ID,
		Date: "2026-05-01", Time: "10:00", RequireOpenHours: true,
	}

	_, err := get.Execute(ctx, GetAvailabilityInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: in.Date, DurationMinutes: 30,
	})
	status, code := httperr.Status(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "date_out_of_range", code)

	_, err = uc.Execute(ctx, in)
	status, code = httperr.Status(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "date_out_of_range", code)
	assert.Zero(t, f.repo.creates)

	in.Date = "2026-04-30"
	_, err = uc.Execute(ctx, in)
	assert.NoError(t, err)

	staff := in
	staff.Date = "2026-05-01"
	staff.RequireOpenHours = false
	_, err = uc.Execute(ctx, staff)
	assert.NoError(t, err, "staff may book past the horizon")
}

func TestCreateAppointment_ClientGetOrCreateByPhone(t *testing.T) {
	f := newFixture()
	uc := NewCreateAppointment(f.repo, nil, f.rt)

	res, err := uc.Execute(context.Background(), CreateAppointmentInput{
		ShopID: f.shop.ID, ProfessionalID: f.prof.ID, Date: "2026-03-02", Time: "15:00",
		ClientName: "Outro nome", ClientPhone: f.client.Phone,
	})

	require.NoError(t, err)
	assert.Equal(t, f.client.ID, res.Appointment.ClientID)
}
