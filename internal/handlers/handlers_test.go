package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
}

type recordingNotifier struct {
	mu        sync.Mutex
	booked    int
	cancelled int
}

func (n *recordingNotifier) AppointmentBooked(*models.UserSummary, *models.DoctorDetail, *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked++
}

func (n *recordingNotifier) AppointmentCancelled(*models.UserSummary, *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

type stubGateway struct {
	reqs []services.OrderRequest
}

func (g *stubGateway) CreateOrder(_ context.Context, req services.OrderRequest) (*services.GatewayOrder, error) {
	g.reqs = append(g.reqs, req)
	return &services.GatewayOrder{ID: "order_stub", Entity: "order", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

type testEnv struct {
	t        *testing.T
	store    *memStore
	tokens   *utils.TokenManager
	notifier *recordingNotifier
	gateway  *stubGateway
	router   *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		t:        t,
		store:    newMemStore(),
		tokens:   utils.NewTokenManager("handler-test-secret", 0),
		notifier: &recordingNotifier{},
		gateway:  &stubGateway{},
	}
	h := NewHandler(e.store, e.tokens, e.gateway, e.notifier)
	e.router = NewRouter(h, []string{"http://localhost:3000"})
	return e
}

func (e *testEnv) addUser(role models.Role, first, email string) (models.User, string) {
	e.t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(e.t, err)
	u := models.User{FirstName: first, LastName: "Test", Email: email, Password: hash, UserType: role, Phone: "+919800000000", IsActive: true}
	require.NoError(e.t, e.store.CreateUser(context.Background(), &u))
	token, err := e.tokens.Generate(u.ID.Hex(), u.Email, string(role))
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) addPatient(first, email string) (models.User, models.Patient, string) {
	e.t.Helper()
	u, token := e.addUser(models.RolePatient, first, email)
	p := models.Patient{UserID: u.ID, Gender: "Female"}
	require.NoError(e.t, e.store.CreatePatient(context.Background(), &p))
	return u, p, token
}

func (e *testEnv) addDoctor(first, email, license string, available bool) (models.User, models.Doctor, string) {
	e.t.Helper()
	u, token := e.addUser(models.RoleDoctor, first, email)
	d := models.Doctor{
		UserID:          u.ID,
		Specialization:  "Cardiology",
		Qualification:   models.DefaultQualification,
		LicenseNumber:   license,
		Experience:      10,
		Department:      "Cardiology",
		ConsultationFee: models.DefaultConsultationFee,
		IsAvailable:     available,
		ShiftTiming:     models.DefaultShiftTiming(),
	}
	require.NoError(e.t, e.store.CreateDoctor(context.Background(), &d))
	return u, d, token
}

func (e *testEnv) addStaff(first, email string) (models.User, string) {
	e.t.Helper()
	u, token := e.addUser(models.RoleStaff, first, email)
	s := models.Staff{UserID: u.ID, Department: "Administration", Position: "Administrator", EmployeeID: "EMP-" + first}
	require.NoError(e.t, e.store.CreateStaff(context.Background(), &s))
	return u, token
}

func (e *testEnv) addAppointment(patientID, doctorID primitive.ObjectID, status models.AppointmentStatus) models.Appointment {
	e.t.Helper()
	a := models.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: mustDate(e.t, "2026-11-02"),
		AppointmentTime: "10:30 AM",
		Reason:          "Checkup",
		Status:          status,
	}
	require.NoError(e.t, e.store.CreateAppointment(context.Background(), &a))
	return a
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := parseDate(s)
	require.NoError(t, err)
	return d
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
