package services

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

// fakeStore keeps just enough state in memory for the services under test.
// Methods it does not override panic through the nil embedded interface.
type fakeStore struct {
	store.Store

	mu              sync.Mutex
	users           map[primitive.ObjectID]*models.User
	patients        map[primitive.ObjectID]*models.Patient
	doctors         []*models.Doctor
	createDoctorErr error
	deletedUsers    []primitive.ObjectID

	countFn   func(f store.AppointmentFilter) int64
	rating    models.RatingSummary
	distinct  int64
	aggs      map[primitive.ObjectID]store.DoctorAggregates
	medicines []models.Medicine
	orders    []*models.PharmacyOrder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[primitive.ObjectID]*models.User{},
		patients: map[primitive.ObjectID]*models.Patient{},
		aggs:     map[primitive.ObjectID]store.DoctorAggregates{},
		countFn:  func(store.AppointmentFilter) int64 { return 0 },
	}
}

func (f *fakeStore) addUser(u *models.User) *models.User {
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(u.Email)
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user already exists with this email")
		}
	}
	f.addUser(u)
	return nil
}

func (f *fakeStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	f.deletedUsers = append(f.deletedUsers, id)
	return nil
}

func (f *fakeStore) CountUsers(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeStore) CreatePatient(_ context.Context, p *models.Patient) error {
	p.ID = primitive.NewObjectID()
	f.patients[p.UserID] = p
	return nil
}

func (f *fakeStore) PatientByUserID(_ context.Context, userID primitive.ObjectID) (*models.PatientDetail, error) {
	p, ok := f.patients[userID]
	if !ok {
		return nil, apperr.NotFound("patient profile not found")
	}
	return &models.PatientDetail{Patient: *p}, nil
}

func (f *fakeStore) CreateDoctor(_ context.Context, d *models.Doctor) error {
	if f.createDoctorErr != nil {
		return f.createDoctorErr
	}
	d.ID = primitive.NewObjectID()
	f.doctors = append(f.doctors, d)
	return nil
}

func (f *fakeStore) DoctorByUserID(_ context.Context, userID primitive.ObjectID) (*models.DoctorDetail, error) {
	for _, d := range f.doctors {
		if d.UserID == userID {
			return &models.DoctorDetail{Doctor: *d}, nil
		}
	}
	return nil, apperr.NotFound("doctor profile not found")
}

func (f *fakeStore) DoctorByID(_ context.Context, id primitive.ObjectID) (*models.DoctorDetail, error) {
	for _, d := range f.doctors {
		if d.ID == id {
			return &models.DoctorDetail{Doctor: *d}, nil
		}
	}
	return nil, apperr.NotFound("doctor not found")
}

func (f *fakeStore) StaffByUserID(context.Context, primitive.ObjectID) (*models.StaffDetail, error) {
	return &models.StaffDetail{}, nil
}

func (f *fakeStore) ListDoctors(context.Context, store.DoctorFilter) ([]models.DoctorDetail, error) {
	out := make([]models.DoctorDetail, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, models.DoctorDetail{Doctor: *d})
	}
	return out, nil
}

func (f *fakeStore) CountAppointments(_ context.Context, filter store.AppointmentFilter) (int64, error) {
	return f.countFn(filter), nil
}

func (f *fakeStore) DistinctPatients(context.Context, primitive.ObjectID) (int64, error) {
	return f.distinct, nil
}

func (f *fakeStore) DoctorRatingSummary(context.Context, primitive.ObjectID) (models.RatingSummary, error) {
	return f.rating, nil
}

func (f *fakeStore) UpdateDoctorAggregates(_ context.Context, id primitive.ObjectID, agg store.DoctorAggregates) error {
	f.aggs[id] = agg
	return nil
}

func (f *fakeStore) MedicinesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, m := range f.medicines {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.PharmacyOrder) error {
	o.ID = primitive.NewObjectID()
	f.orders = append(f.orders, o)
	return nil
}
