// Package seed loads the demo accounts and pharmacy catalog. Running it twice
// leaves the database unchanged: existing accounts are skipped by email and
// medicines are upserted by name.
package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

type account struct {
	first, last, email, password, phone string
	role                                models.Role
}

type doctorAccount struct {
	account
	specialization string
	experience     int
	license        string
	fee            float64
}

type staffAccount struct {
	account
	department, position, employeeID string
}

var doctors = []doctorAccount{
	{account{"Arjun", "Rao", "arjunrao@hospital.com", "doctor123", "9001110001", models.RoleDoctor}, "Cardiology", 10, "DOC001", 500},
	{account{"Neha", "Singh", "neha@hospital.com", "doctor123", "9001110002", models.RoleDoctor}, "Neurology", 8, "DOC002", 450},
	{account{"Rajesh", "Gupta", "rajesh@hospital.com", "doctor123", "9001110003", models.RoleDoctor}, "Orthopedics", 12, "DOC003", 550},
	{account{"Priya", "Sharma", "priya@hospital.com", "doctor123", "9001110004", models.RoleDoctor}, "Pediatrics", 7, "DOC004", 400},
}

var patients = []account{
	{"Rohan", "Sharma", "rohan@gmail.com", "patient123", "9876543210", models.RolePatient},
	{"Anjali", "Verma", "anjali@gmail.com", "patient123", "9897456321", models.RolePatient},
}

var staff = []staffAccount{
	{account{"Admin", "User", "admin@medicare.com", "admin123", "1234567890", models.RoleStaff}, "Administration", "Administrator", "EMP001"},
	{account{"Reception", "Staff", "reception@medicare.com", "reception123", "0987654321", models.RoleStaff}, "Front Office", "Receptionist", "EMP002"},
}

// Catalog is the pharmacy's starting stock. Prices are in rupees.
var Catalog = []models.Medicine{
	{Name: "Paracetamol 500mg", Price: 2.5, Description: "Pain & Fever Relief"},
	{Name: "Amoxicillin 250mg", Price: 3.2, Description: "Antibiotic Capsule"},
	{Name: "Cough Syrup 100ml", Price: 4.8, Description: "Cold & Cough Relief"},
	{Name: "Vitamin C Tablets", Price: 6.0, Description: "Immunity Booster"},
	{Name: "Pain Relief Spray", Price: 5.5, Description: "Instant Pain Relief"},
	{Name: "Hand Sanitizer", Price: 2.9, Description: "Kills 99.9% Germs"},
	{Name: "Diabetes Test Strips", Price: 8.9, Description: "Blood Sugar Monitor"},
	{Name: "Face Mask (Pack of 5)", Price: 4.0, Description: "Protective Mask"},
	{Name: "Digital Thermometer", Price: 9.5, Description: "Accurate Temperature"},
	{Name: "Blood Pressure Monitor", Price: 14.5, Description: "BP Monitoring Device"},
	{Name: "First Aid Kit", Price: 12.0, Description: "Emergency Essentials"},
	{Name: "Pain Balm", Price: 3.7, Description: "Headache & Joint Relief"},
	{Name: "Zinc Supplement", Price: 5.2, Description: "Boost Immunity"},
	{Name: "Aloe Vera Gel", Price: 6.3, Description: "Skin & Hair Care"},
	{Name: "Inhaler", Price: 7.8, Description: "Asthma & Breathing Aid"},
	{Name: "Bandages", Price: 1.9, Description: "Wound Dressing"},
	{Name: "Glucose Powder", Price: 3.4, Description: "Instant Energy"},
	{Name: "Hair Oil", Price: 4.1, Description: "Natural Hair Care"},
	{Name: "Eye Drops", Price: 2.8, Description: "Redness & Dryness Relief"},
	{Name: "Vitamin D3 Capsules", Price: 5.9, Description: "Bone Strength Supplement"},
}

// Result counts what a run created.
type Result struct {
	Created   int
	Skipped   int
	Medicines int
}

// Run inserts every missing demo account with its profile and upserts the catalog.
func Run(ctx context.Context, s store.Store) (Result, error) {
	var res Result

	for _, d := range doctors {
		user, created, err := ensureUser(ctx, s, d.account, func(u *models.User) {
			u.Specialization = d.specialization
			u.Experience = d.experience
			u.LicenseNumber = d.license
		})
		if err != nil {
			return res, err
		}
		if !created {
			res.Skipped++
			continue
		}
		doc := &models.Doctor{
			UserID:          user.ID,
			Specialization:  d.specialization,
			Qualification:   models.DefaultQualification,
			LicenseNumber:   d.license,
			Experience:      d.experience,
			Department:      d.specialization,
			ConsultationFee: d.fee,
			IsAvailable:     true,
			ShiftTiming:     models.DefaultShiftTiming(),
		}
		if err := s.CreateDoctor(ctx, doc); err != nil {
			return res, fmt.Errorf("seed doctor %s: %w", d.email, err)
		}
		res.Created++
	}

	for _, p := range patients {
		user, created, err := ensureUser(ctx, s, p, nil)
		if err != nil {
			return res, err
		}
		if !created {
			res.Skipped++
			continue
		}
		if err := s.CreatePatient(ctx, &models.Patient{UserID: user.ID}); err != nil {
			return res, fmt.Errorf("seed patient %s: %w", p.email, err)
		}
		res.Created++
	}

	for _, st := range staff {
		user, created, err := ensureUser(ctx, s, st.account, nil)
		if err != nil {
			return res, err
		}
		if !created {
			res.Skipped++
			continue
		}
		profile := &models.Staff{
			UserID:      user.ID,
			Department:  st.department,
			Position:    st.position,
			EmployeeID:  st.employeeID,
			Shift:       "Morning",
			JoiningDate: user.CreatedAt,
		}
		if err := s.CreateStaff(ctx, profile); err != nil {
			return res, fmt.Errorf("seed staff %s: %w", st.email, err)
		}
		res.Created++
	}

	for _, m := range Catalog {
		m.InStock = true
		if err := s.UpsertMedicine(ctx, &m); err != nil {
			return res, err
		}
		res.Medicines++
	}

	logrus.WithFields(logrus.Fields{
		"created":   res.Created,
		"skipped":   res.Skipped,
		"medicines": res.Medicines,
	}).Info("seed complete")
	return res, nil
}

// ensureUser returns the account for a.email, creating it when missing.
func ensureUser(ctx context.Context, s store.Store, a account, extra func(*models.User)) (*models.User, bool, error) {
	existing, err := s.UserByEmail(ctx, a.email)
	if err == nil {
		logrus.WithField("email", a.email).Debug("seed account exists, skipping")
		return existing, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	hashed, err := utils.HashPassword(a.password)
	if err != nil {
		return nil, false, err
	}
	u := &models.User{
		FirstName: a.first,
		LastName:  a.last,
		Email:     a.email,
		Password:  hashed,
		UserType:  a.role,
		Phone:     a.phone,
		IsActive:  true,
	}
	if extra != nil {
		extra(u)
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, false, fmt.Errorf("seed user %s: %w", a.email, err)
	}
	logrus.WithFields(logrus.Fields{"email": a.email, "user_type": a.role}).Info("seeded account")
	return u, true, nil
}
