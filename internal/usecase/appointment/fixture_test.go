package appointment

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

// Sunday; the fixture books on Monday 2026-03-02.
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *fakeRepo
	rt      *Runtime
	shop    models.Shop
	prof    models.Professional
	haircut models.Service
	beard   models.Service
	client  models.Client
}

func strp(s string) *string { return &s }

func monday(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func newFixture() *fixture {
	repo := newFakeRepo()

	f := &fixture{
		repo: repo,
		rt: &Runtime{
			Logger:             logging.NewWithWriter("error", io.Discard),
			NoShowBlocks:       true,
			BookingHorizonDays: 60,
			DefaultDuration:    30 * time.Minute,
			Now:                func() time.Time { return fixedNow },
		},
	}

	f.shop = models.Shop{ID: uuid.New(), Name: "Barbearia Centro", Slug: "centro", Timezone: "UTC"}
	f.prof = models.Professional{ID: uuid.New(), ShopID: f.shop.ID, Name: "João", Active: true}
	f.haircut = models.Service{ID: uuid.New(), ShopID: f.shop.ID, Name: "Corte", DurationMinutes: 30, Price: 50, Active: true}
	f.beard = models.Service{ID: uuid.New(), ShopID: f.shop.ID, Name: "Barba", DurationMinutes: 15, Price: 30, Active: true}
	f.client = models.Client{ID: uuid.New(), ShopID: f.shop.ID, Name: "Maria", Phone: "11999990000"}

	repo.shops[f.shop.ID] = f.shop
	repo.professionals[f.prof.ID] = f.prof
	repo.services[f.haircut.ID] = f.haircut
	repo.services[f.beard.ID] = f.beard
	repo.clients[f.client.ID] = f.client

	for wd := 1; wd <= 5; wd++ {
		repo.hours = append(repo.hours, models.BusinessHours{
			ID: uuid.New(), ShopID: f.shop.ID, Weekday: wd,
			StartTime: strp("09:00"), EndTime: strp("19:00"),
		})
	}
	repo.hours = append(repo.hours, models.BusinessHours{ID: uuid.New(), ShopID: f.shop.ID, Weekday: 0, Closed: true})

	return f
}

func (f *fixture) seedAppointment(start, end time.Time, status string) models.Appointment {
	ap := models.Appointment{
		ID:             uuid.New(),
		ShopID:         f.shop.ID,
		ProfessionalID: f.prof.ID,
		ClientID:       f.client.ID,
		StartAt:        start,
		EndAt:          end,
		Status:         status,
		Client:         f.client,
		Professional:   f.prof,
	}
	f.repo.appointments = append(f.repo.appointments, ap)
	return ap
}
