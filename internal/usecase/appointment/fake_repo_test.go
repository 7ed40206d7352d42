package appointment

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

// fakeRepo enforces the overlap rule under a mutex, standing in for the
// exclusion constraint.
type fakeRepo struct {
	mu sync.Mutex

	noShowBlocks bool
	listErr      error

	// runs while a slot listing is between reading appointments and time-off
	onListTimeOff func()

	shops         map[uuid.UUID]models.Shop
	professionals map[uuid.UUID]models.Professional
	services      map[uuid.UUID]models.Service
	clients       map[uuid.UUID]models.Client
	hours         []models.BusinessHours
	timeOff       []models.TimeOff
	appointments  []models.Appointment

	creates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		noShowBlocks:  true,
		shops:         map[uuid.UUID]models.Shop{},
		professionals: map[uuid.UUID]models.Professional{},
		services:      map[uuid.UUID]models.Service{},
		clients:       map[uuid.UUID]models.Client{},
	}
}

func (r *fakeRepo) GetShopByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *fakeRepo) GetShopBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shops {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) GetProfessional(ctx context.Context, shopID, id uuid.UUID) (*models.Professional, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.professionals[id]
	if !ok || p.ShopID != shopID {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakeRepo) GetServices(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Service
	for _, id := range ids {
		if s, ok := r.services[id]; ok && s.ShopID == shopID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetClient(ctx context.Context, shopID, id uuid.UUID) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.ShopID != shopID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *fakeRepo) clientByPhone(shopID uuid.UUID, phone string) (models.Client, bool) {
	for _, c := range r.clients {
		if c.ShopID == shopID && c.Phone == phone {
			return c, true
		}
	}
	return models.Client{}, false
}

// GetOrCreateClient looks up and inserts under separate locks, like the
// gorm repository. The insert honours the unique (shop, phone) index: a
// losing insert returns the row already stored.
func (r *fakeRepo) GetOrCreateClient(ctx context.Context, shopID uuid.UUID, name, phone, email string) (*models.Client, error) {
	r.mu.Lock()
	c, ok := r.clientByPhone(shopID, phone)
	r.mu.Unlock()
	if ok {
		return &c, nil
	}

	runtime.Gosched()

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clientByPhone(shopID, phone); ok {
		return &c, nil
	}
	c = models.Client{ID: uuid.New(), ShopID: shopID, Name: name, Phone: phone, Email: email}
	r.clients[c.ID] = c
	return &c, nil
}

func (r *fakeRepo) ListBusinessHours(ctx context.Context, shopID uuid.UUID) ([]models.BusinessHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.BusinessHours
	for _, h := range r.hours {
		if h.ShopID == shopID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProfessionalID == professionalID && ap.StartAt.Before(end) && ap.EndAt.After(start) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListTimeOff(ctx context.Context, shopID uuid.UUID, professionalID *uuid.UUID, start, end time.Time) ([]models.TimeOff, error) {
	if hook := r.onListTimeOff; hook != nil {
		r.onListTimeOff = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeOff
	for _, t := range r.timeOff {
		if t.ShopID != shopID || !t.StartAt.Before(end) || !t.EndAt.After(start) {
			continue
		}
		if professionalID != nil && t.ProfessionalID != nil && *t.ProfessionalID != *professionalID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeRepo) FindByIdempotencyKey(ctx context.Context, shopID uuid.UUID, key string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ap := range r.appointments {
		if ap.ShopID == shopID && ap.IdempotencyKey != nil && *ap.IdempotencyKey == key {
			return &ap, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) overlapsLocked(ap *models.Appointment) bool {
	if !domain.Status(ap.Status).Occupies(r.noShowBlocks) {
		return false
	}
	for _, other := range r.appointments {
		if other.ID == ap.ID || other.ProfessionalID != ap.ProfessionalID {
			continue
		}
		if !domain.Status(other.Status).Occupies(r.noShowBlocks) {
			continue
		}
		if ap.StartAt.Before(other.EndAt) && other.StartAt.Before(ap.EndAt) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++

	if ap.IdempotencyKey != nil {
		for _, other := range r.appointments {
			if other.ShopID == ap.ShopID && other.IdempotencyKey != nil && *other.IdempotencyKey == *ap.IdempotencyKey {
				return domain.ErrDuplicateIdempotencyKey
			}
		}
	}
	if r.overlapsLocked(ap) {
		return httperr.ErrConflict("time_conflict")
	}

	ap.ID = uuid.New()
	r.appointments = append(r.appointments, *ap)
	return nil
}

func (r *fakeRepo) GetAppointment(ctx context.Context, shopID, id uuid.UUID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ap := range r.appointments {
		if ap.ID == id && ap.ShopID == shopID {
			return &ap, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapsLocked(ap) {
		return httperr.ErrConflict("time_conflict")
	}
	for i := range r.appointments {
		if r.appointments[i].ID == ap.ID {
			r.appointments[i] = *ap
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeRepo) ListAppointmentsForShopPeriod(ctx context.Context, shopID uuid.UUID, professionalID *uuid.UUID, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ShopID != shopID || ap.StartAt.Before(start) || !ap.StartAt.Before(end) {
			continue
		}
		if professionalID != nil && ap.ProfessionalID != *professionalID {
			continue
		}
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForClient(ctx context.Context, shopID, clientID uuid.UUID) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ShopID == shopID && ap.ClientID == clientID {
			out = append(out, ap)
		}
	}
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)
