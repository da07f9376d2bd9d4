package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

const errBadCredentials = "invalid email or password"

type RegisterInput struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	UserType  models.Role `json:"userType"`
	Phone     string      `json:"phone"`

	// doctor
	Specialization string `json:"specialization"`
	Experience     *int   `json:"experience"`
	LicenseNumber  string `json:"licenseNumber"`

	// patient
	DateOfBirth      *time.Time              `json:"dateOfBirth"`
	Gender           string                  `json:"gender"`
	BloodGroup       string                  `json:"bloodGroup"`
	Address          models.Address          `json:"address"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Profile any          `json:"profile,omitempty"`
}

type AuthService struct {
	store  store.Store
	tokens *utils.TokenManager
}

func NewAuthService(s store.Store, tokens *utils.TokenManager) *AuthService {
	return &AuthService{store: s, tokens: tokens}
}

func (in *RegisterInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.UserType == "" {
		in.UserType = models.RolePatient
	}
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return apperr.Validation("firstName is required")
	case strings.TrimSpace(in.LastName) == "":
		return apperr.Validation("lastName is required")
	case in.Email == "":
		return apperr.Validation("email is required")
	case in.Password == "":
		return apperr.Validation("password is required")
	case !in.UserType.Valid():
		return apperr.Validation("userType must be one of: patient doctor staff")
	}
	if in.UserType == models.RoleDoctor {
		switch {
		case strings.TrimSpace(in.Specialization) == "":
			return apperr.Validation("specialization is required for doctors")
		case in.Experience == nil:
			return apperr.Validation("experience is required for doctors")
		case *in.Experience < 0:
			return apperr.Validation("experience must not be negative")
		case strings.TrimSpace(in.LicenseNumber) == "":
			return apperr.Validation("licenseNumber is required for doctors")
		}
	}
	return nil
}

// Register creates the account and its role profile and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.UserType == models.RoleStaff {
		return nil, apperr.Forbidden("staff accounts are created by staff")
	}

	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("user already exists with this email")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Password:  hashed,
		UserType:  in.UserType,
		Phone:     in.Phone,
		IsActive:  true,
	}
	if in.UserType == models.RoleDoctor {
		user.Specialization = in.Specialization
		user.Experience = *in.Experience
		user.LicenseNumber = in.LicenseNumber
	}
	if err := models.Validate(user); err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	profile, err := s.createProfile(ctx, user, &in)
	if err != nil {
		if rbErr := s.store.DeleteUser(ctx, user.ID); rbErr != nil {
			logrus.WithError(rbErr).WithField("user_id", user.ID.Hex()).Error("failed to roll back user after profile error")
		}
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, string(user.UserType))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user.Password = ""
	logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "user_type": user.UserType}).Info("user registered")
	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

func (s *AuthService) createProfile(ctx context.Context, user *models.User, in *RegisterInput) (any, error) {
	switch user.UserType {
	case models.RoleDoctor:
		d := &models.Doctor{
			UserID:          user.ID,
			Specialization:  user.Specialization,
			Qualification:   models.DefaultQualification,
			LicenseNumber:   user.LicenseNumber,
			Experience:      user.Experience,
			Department:      user.Specialization,
			ConsultationFee: models.DefaultConsultationFee,
			IsAvailable:     true,
			ShiftTiming:     models.DefaultShiftTiming(),
		}
		if err := models.Validate(d); err != nil {
			return nil, err
		}
		if err := s.store.CreateDoctor(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		p := &models.Patient{
			UserID:           user.ID,
			DateOfBirth:      in.DateOfBirth,
			Gender:           in.Gender,
			BloodGroup:       in.BloodGroup,
			Address:          in.Address,
			EmergencyContact: in.EmergencyContact,
		}
		if err := models.Validate(p); err != nil {
			return nil, err
		}
		if err := s.store.CreatePatient(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return hashed, nil
}

// Login checks the credentials and issues a fresh token. Unknown, inactive and
// wrong-password accounts all get the same answer.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	user, err := s.store.UserByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized(errBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Unauthorized(errBadCredentials)
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, string(user.UserType))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user.Password = ""

	profile, err := s.Profile(ctx, user)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

// Profile loads the role profile paired with the account.
func (s *AuthService) Profile(ctx context.Context, user *models.User) (any, error) {
	var (
		profile any
		err     error
	)
	switch user.UserType {
	case models.RolePatient:
		profile, err = nilIfErr(s.store.PatientByUserID(ctx, user.ID))
	case models.RoleDoctor:
		profile, err = nilIfErr(s.store.DoctorByUserID(ctx, user.ID))
	case models.RoleStaff:
		profile, err = nilIfErr(s.store.StaffByUserID(ctx, user.ID))
	default:
		err = apperr.NotFound("profile not found")
	}
	return profile, err
}

// nilIfErr keeps a typed nil pointer from becoming a non-nil interface.
func nilIfErr[T any](v *T, err error) (any, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func (s *AuthService) Verify(token string) (*utils.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// ResolvePrincipal verifies the token and loads the live account behind it.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	user, err := s.store.UserByID(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("account is deactivated")
	}
	return &Principal{UserID: user.ID, Email: user.Email, Role: user.UserType, User: user}, nil
}

type StaffInput struct {
	FirstName   string    `json:"firstName" validate:"required"`
	LastName    string    `json:"lastName" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required"`
	Phone       string    `json:"phone"`
	Department  string    `json:"department" validate:"required"`
	Position    string    `json:"position" validate:"required"`
	EmployeeID  string    `json:"employeeId" validate:"required"`
	Shift       string    `json:"shift" validate:"omitempty,oneof=Morning Evening Night"`
	Salary      float64   `json:"salary" validate:"gte=0"`
	JoiningDate time.Time `json:"joiningDate"`
}

// RegisterStaff creates a staff account with its profile. Only staff may call it.
func (s *AuthService) RegisterStaff(ctx context.Context, in StaffInput) (*models.StaffDetail, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := models.Validate(&in); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hashed,
		UserType:  models.RoleStaff,
		Phone:     in.Phone,
		IsActive:  true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	st := &models.Staff{
		UserID:      user.ID,
		Department:  in.Department,
		Position:    in.Position,
		EmployeeID:  in.EmployeeID,
		Shift:       in.Shift,
		Salary:      in.Salary,
		JoiningDate: in.JoiningDate,
	}
	if err := s.store.CreateStaff(ctx, st); err != nil {
		if rbErr := s.store.DeleteUser(ctx, user.ID); rbErr != nil {
			logrus.WithError(rbErr).WithField("user_id", user.ID.Hex()).Error("failed to roll back staff user")
		}
		return nil, err
	}
	return &models.StaffDetail{Staff: *st, User: user.Summary()}, nil
}
