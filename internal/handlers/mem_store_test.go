package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
)

// memStore is an in-memory store.Store with the same populate and not-found
// behaviour as the Mongo implementation.
type memStore struct {
	store.Store

	mu           sync.Mutex
	users        map[primitive.ObjectID]models.User
	patients     map[primitive.ObjectID]models.Patient
	doctors      map[primitive.ObjectID]models.Doctor
	staff        map[primitive.ObjectID]models.Staff
	appointments map[primitive.ObjectID]models.Appointment
	feedback     map[primitive.ObjectID]models.Feedback
	medicines    []models.Medicine
	orders       []models.PharmacyOrder
	pingErr      error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[primitive.ObjectID]models.User{},
		patients:     map[primitive.ObjectID]models.Patient{},
		doctors:      map[primitive.ObjectID]models.Doctor{},
		staff:        map[primitive.ObjectID]models.Staff{},
		appointments: map[primitive.ObjectID]models.Appointment{},
		feedback:     map[primitive.ObjectID]models.Feedback{},
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) summary(userID primitive.ObjectID) *models.UserSummary {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	return u.Summary()
}

func (m *memStore) patientDetail(id primitive.ObjectID) *models.PatientDetail {
	p, ok := m.patients[id]
	if !ok {
		return nil
	}
	return &models.PatientDetail{Patient: p, User: m.summary(p.UserID)}
}

func (m *memStore) doctorDetail(id primitive.ObjectID) *models.DoctorDetail {
	d, ok := m.doctors[id]
	if !ok {
		return nil
	}
	return &models.DoctorDetail{Doctor: d, User: m.summary(d.UserID)}
}

// Users

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user already exists with this email")
		}
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.Password = ""
	return &u, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		u.Password = ""
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.users[u.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	cp := *u
	cp.Password = old.Password
	m.users[u.ID] = cp
	return nil
}

func (m *memStore) SetUserActive(_ context.Context, id primitive.ObjectID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

func (m *memStore) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memStore) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// Patients

func (m *memStore) CreatePatient(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.patients[p.ID] = *p
	return nil
}

func (m *memStore) PatientByID(_ context.Context, id primitive.ObjectID) (*models.PatientDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.patientDetail(id); d != nil {
		return d, nil
	}
	return nil, apperr.NotFound("patient not found")
}

func (m *memStore) PatientByUserID(_ context.Context, userID primitive.ObjectID) (*models.PatientDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.patients {
		if p.UserID == userID {
			return m.patientDetail(id), nil
		}
	}
	return nil, apperr.NotFound("patient profile not found")
}

func (m *memStore) ListPatients(context.Context) ([]models.PatientDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PatientDetail{}
	for id := range m.patients {
		out = append(out, *m.patientDetail(id))
	}
	return out, nil
}

func (m *memStore) UpdatePatient(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.NotFound("patient not found")
	}
	m.patients[p.ID] = *p
	return nil
}

func (m *memStore) DeletePatient(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.patients, id)
	return nil
}

// Doctors

func (m *memStore) CreateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.doctors {
		if existing.LicenseNumber == d.LicenseNumber {
			return apperr.Conflict("doctor profile or license number already registered")
		}
	}
	d.ID = primitive.NewObjectID()
	m.doctors[d.ID] = *d
	return nil
}

func (m *memStore) DoctorByID(_ context.Context, id primitive.ObjectID) (*models.DoctorDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.doctorDetail(id); d != nil {
		return d, nil
	}
	return nil, apperr.NotFound("doctor not found")
}

func (m *memStore) DoctorByUserID(_ context.Context, userID primitive.ObjectID) (*models.DoctorDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.doctors {
		if d.UserID == userID {
			return m.doctorDetail(id), nil
		}
	}
	return nil, apperr.NotFound("doctor profile not found")
}

func (m *memStore) ListDoctors(_ context.Context, f store.DoctorFilter) ([]models.DoctorDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DoctorDetail{}
	for id, d := range m.doctors {
		if f.AvailableOnly && !d.IsAvailable {
			continue
		}
		out = append(out, *m.doctorDetail(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LicenseNumber < out[j].LicenseNumber })
	return out, nil
}

func (m *memStore) UpdateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.doctors[d.ID]
	if !ok {
		return apperr.NotFound("doctor not found")
	}
	cp := *d
	cp.Rating, cp.TotalRatings, cp.TotalPatients = old.Rating, old.TotalRatings, old.TotalPatients
	m.doctors[d.ID] = cp
	return nil
}

func (m *memStore) UpdateDoctorAggregates(_ context.Context, id primitive.ObjectID, agg store.DoctorAggregates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return apperr.NotFound("doctor not found")
	}
	d.Rating, d.TotalRatings, d.TotalPatients = agg.Rating, agg.TotalRatings, agg.TotalPatients
	m.doctors[id] = d
	return nil
}

func (m *memStore) DeleteDoctor(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.doctors, id)
	return nil
}

// Staff

func (m *memStore) CreateStaff(_ context.Context, s *models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = primitive.NewObjectID()
	m.staff[s.ID] = *s
	return nil
}

func (m *memStore) StaffByID(_ context.Context, id primitive.ObjectID) (*models.StaffDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, apperr.NotFound("staff member not found")
	}
	return &models.StaffDetail{Staff: s, User: m.summary(s.UserID)}, nil
}

func (m *memStore) StaffByUserID(_ context.Context, userID primitive.ObjectID) (*models.StaffDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.staff {
		if s.UserID == userID {
			return &models.StaffDetail{Staff: s, User: m.summary(s.UserID)}, nil
		}
	}
	return nil, apperr.NotFound("staff profile not found")
}

func (m *memStore) ListStaff(context.Context) ([]models.StaffDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.StaffDetail{}
	for _, s := range m.staff {
		out = append(out, models.StaffDetail{Staff: s, User: m.summary(s.UserID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *memStore) UpdateStaff(_ context.Context, s *models.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[s.ID]; !ok {
		return apperr.NotFound("staff member not found")
	}
	m.staff[s.ID] = *s
	return nil
}

func (m *memStore) DeleteStaff(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staff, id)
	return nil
}

// Appointments

func matchAppointment(f store.AppointmentFilter, a models.Appointment) bool {
	switch {
	case !f.PatientID.IsZero() && a.PatientID != f.PatientID,
		!f.DoctorID.IsZero() && a.DoctorID != f.DoctorID,
		f.Status != "" && a.Status != f.Status,
		f.ExcludeStatus != "" && a.Status == f.ExcludeStatus,
		!f.From.IsZero() && a.AppointmentDate.Before(f.From),
		!f.To.IsZero() && !a.AppointmentDate.Before(f.To):
		return false
	}
	return true
}

func (m *memStore) appointmentDetail(a models.Appointment) models.AppointmentDetail {
	return models.AppointmentDetail{Appointment: a, Patient: m.patientDetail(a.PatientID), Doctor: m.doctorDetail(a.DoctorID)}
}

func (m *memStore) CreateAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	m.appointments[a.ID] = *a
	return nil
}

func (m *memStore) AppointmentByID(_ context.Context, id primitive.ObjectID) (*models.AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	d := m.appointmentDetail(a)
	return &d, nil
}

func (m *memStore) ListAppointments(_ context.Context, f store.AppointmentFilter) ([]models.AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AppointmentDetail{}
	for _, a := range m.appointments {
		if matchAppointment(f, a) {
			out = append(out, m.appointmentDetail(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	return out, nil
}

func (m *memStore) UpdateAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[a.ID]; !ok {
		return apperr.NotFound("appointment not found")
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *memStore) DeleteAppointment(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return apperr.NotFound("appointment not found")
	}
	delete(m.appointments, id)
	return nil
}

func (m *memStore) CountAppointments(_ context.Context, f store.AppointmentFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.appointments {
		if matchAppointment(f, a) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DistinctPatients(_ context.Context, doctorID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[primitive.ObjectID]bool{}
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			seen[a.PatientID] = true
		}
	}
	return int64(len(seen)), nil
}

// Feedback

func (m *memStore) feedbackDetail(f models.Feedback) models.FeedbackDetail {
	d := models.FeedbackDetail{Feedback: f, Patient: m.patientDetail(f.PatientID)}
	if f.DoctorID != nil {
		d.Doctor = m.doctorDetail(*f.DoctorID)
	}
	if f.AppointmentID != nil {
		if a, ok := m.appointments[*f.AppointmentID]; ok {
			d.Appointment = &a
		}
	}
	return d
}

func (m *memStore) CreateFeedback(_ context.Context, f *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = primitive.NewObjectID()
	f.Normalize()
	m.feedback[f.ID] = *f
	return nil
}

func (m *memStore) FeedbackByID(_ context.Context, id primitive.ObjectID) (*models.FeedbackDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feedback[id]
	if !ok {
		return nil, apperr.NotFound("feedback not found")
	}
	d := m.feedbackDetail(f)
	return &d, nil
}

func (m *memStore) ListFeedback(_ context.Context, filter store.FeedbackFilter) ([]models.FeedbackDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FeedbackDetail{}
	for _, f := range m.feedback {
		if !filter.PatientID.IsZero() && f.PatientID != filter.PatientID {
			continue
		}
		if !filter.DoctorID.IsZero() && (f.DoctorID == nil || *f.DoctorID != filter.DoctorID) {
			continue
		}
		out = append(out, m.feedbackDetail(f))
	}
	return out, nil
}

func (m *memStore) UpdateFeedback(_ context.Context, f *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.feedback[f.ID]; !ok {
		return apperr.NotFound("feedback not found")
	}
	f.Normalize()
	m.feedback[f.ID] = *f
	return nil
}

func (m *memStore) DeleteFeedback(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.feedback, id)
	return nil
}

func (m *memStore) DoctorRatingSummary(_ context.Context, doctorID primitive.ObjectID) (models.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, n int64
	for _, f := range m.feedback {
		if f.DoctorID != nil && *f.DoctorID == doctorID {
			sum += int64(f.Rating)
			n++
		}
	}
	if n == 0 {
		return models.RatingSummary{}, nil
	}
	return models.RatingSummary{Average: float64(sum) / float64(n), Count: n}, nil
}

// Pharmacy

func (m *memStore) ListMedicines(context.Context) ([]models.Medicine, error) {
	return append([]models.Medicine{}, m.medicines...), nil
}

func (m *memStore) MedicinesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Medicine, error) {
	var out []models.Medicine
	for _, med := range m.medicines {
		for _, id := range ids {
			if med.ID == id {
				out = append(out, med)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) UpsertMedicine(_ context.Context, med *models.Medicine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.medicines {
		if existing.Name == med.Name {
			med.ID = existing.ID
			m.medicines[i] = *med
			return nil
		}
	}
	med.ID = primitive.NewObjectID()
	m.medicines = append(m.medicines, *med)
	return nil
}

func (m *memStore) CreateOrder(_ context.Context, o *models.PharmacyOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.PharmacyOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PharmacyOrder{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}
