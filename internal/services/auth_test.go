package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

func newAuth(fs *fakeStore) *AuthService {
	return NewAuthService(fs, utils.NewTokenManager("test-secret", 0))
}

func intPtr(i int) *int { return &i }

func doctorInput() RegisterInput {
	return RegisterInput{
		FirstName:      "Arjun",
		LastName:       "Rao",
		Email:          "ArjunRao@Hospital.com",
		Password:       "doctor123",
		UserType:       models.RoleDoctor,
		Specialization: "Cardiology",
		Experience:     intPtr(10),
		LicenseNumber:  "DOC001",
	}
}

func TestRegisterDoctorCreatesProfile(t *testing.T) {
	fs := newFakeStore()
	auth := newAuth(fs)

	res, err := auth.Register(context.Background(), doctorInput())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "arjunrao@hospital.com", res.User.Email)
	assert.Empty(t, res.User.Password)

	require.Len(t, fs.doctors, 1)
	d := fs.doctors[0]
	assert.Equal(t, res.User.ID, d.UserID)
	assert.EqualValues(t, models.DefaultConsultationFee, d.ConsultationFee)
	assert.Equal(t, "MD", d.Qualification)
	assert.Equal(t, "Cardiology", d.Department)
	assert.True(t, d.IsAvailable)

	claims, err := auth.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), claims.UserID)
	assert.Equal(t, "doctor", claims.UserType)
}

func TestRegisterDefaultsToPatient(t *testing.T) {
	fs := newFakeStore()
	res, err := newAuth(fs).Register(context.Background(), RegisterInput{
		FirstName: "Rohan", LastName: "Verma", Email: "rohan@gmail.com", Password: "patient123", Gender: "Male",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, res.User.UserType)
	assert.Contains(t, fs.patients, res.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	auth := newAuth(newFakeStore())

	in := doctorInput()
	in.LicenseNumber = ""
	_, err := auth.Register(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = doctorInput()
	in.Experience = nil
	_, err = auth.Register(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = auth.Register(context.Background(), RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com"})
	assert.EqualError(t, err, "password is required")

	in = doctorInput()
	in.Password = strings.Repeat("p", 80)
	_, err = auth.Register(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRegisterStaffForbidden(t *testing.T) {
	in := doctorInput()
	in.UserType = models.RoleStaff
	_, err := newAuth(newFakeStore()).Register(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	fs := newFakeStore()
	auth := newAuth(fs)
	_, err := auth.Register(context.Background(), doctorInput())
	require.NoError(t, err)

	in := doctorInput()
	in.Email = "ARJUNRAO@hospital.com"
	in.LicenseNumber = "DOC009"
	_, err = auth.Register(context.Background(), in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, fs.users, 1)
}

func TestRegisterRollsBackUserWhenProfileFails(t *testing.T) {
	fs := newFakeStore()
	fs.createDoctorErr = apperr.Conflict("doctor profile or license number already registered")

	_, err := newAuth(fs).Register(context.Background(), doctorInput())
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Empty(t, fs.users)
	assert.Len(t, fs.deletedUsers, 1)
}

func seedUser(t *testing.T, fs *fakeStore, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := fs.addUser(&models.User{FirstName: "Anjali", LastName: "Mehta", Email: email, Password: hash, UserType: models.RolePatient, IsActive: active})
	fs.patients[u.ID] = &models.Patient{UserID: u.ID}
	return u
}

func TestLogin(t *testing.T) {
	fs := newFakeStore()
	seedUser(t, fs, "anjali@gmail.com", "patient123", true)
	seedUser(t, fs, "gone@gmail.com", "patient123", false)
	auth := newAuth(fs)

	res, err := auth.Login(context.Background(), "Anjali@Gmail.com", "patient123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Empty(t, res.User.Password)
	assert.IsType(t, &models.PatientDetail{}, res.Profile)

	for _, c := range []struct{ email, password string }{
		{"anjali@gmail.com", "wrong-pass"},
		{"nobody@gmail.com", "patient123"},
		{"gone@gmail.com", "patient123"},
	} {
		_, err := auth.Login(context.Background(), c.email, c.password)
		require.Error(t, err, c.email)
		assert.EqualError(t, err, "invalid email or password")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	}
}

func TestResolvePrincipal(t *testing.T) {
	fs := newFakeStore()
	active := seedUser(t, fs, "anjali@gmail.com", "patient123", true)
	auth := newAuth(fs)
	tokens := utils.NewTokenManager("test-secret", 0)

	token, err := tokens.Generate(active.ID.Hex(), active.Email, "patient")
	require.NoError(t, err)
	p, err := auth.ResolvePrincipal(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, active.ID, p.UserID)
	assert.Equal(t, models.RolePatient, p.Role)

	fs.users[active.ID].IsActive = false
	_, err = auth.ResolvePrincipal(context.Background(), token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = auth.ResolvePrincipal(context.Background(), "garbage")
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "invalid or expired token", appErr.Message)
}
