package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
)

// statsConcurrency bounds the per-doctor counting goroutines.
const statsConcurrency = 8

// AppointmentCounts are the per-doctor counters shown on listings.
type AppointmentCounts struct {
	TotalAppointments     int64 `json:"totalAppointments"`
	TodayAppointments     int64 `json:"todayAppointments"`
	PendingAppointments   int64 `json:"pendingAppointments"`
	CompletedAppointments int64 `json:"completedAppointments"`
}

type DoctorWithStats struct {
	models.DoctorDetail
	AppointmentCounts
}

type DoctorStats struct {
	AppointmentCounts
	CancelledAppointments int64   `json:"cancelledAppointments"`
	AverageRating         float64 `json:"averageRating"`
	TotalFeedback         int64   `json:"totalFeedback"`
	TotalPatients         int64   `json:"totalPatients"`
}

type Dashboard struct {
	User    *models.User     `json:"user"`
	Profile any              `json:"profile,omitempty"`
	Stats   map[string]int64 `json:"stats"`
}

type StatsService struct {
	store store.Store
	auth  *AuthService
	now   func() time.Time
}

func NewStatsService(s store.Store, auth *AuthService) *StatsService {
	return &StatsService{store: s, auth: auth, now: time.Now}
}

// DayBounds returns local midnight of t's day and the following midnight.
func DayBounds(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (s *StatsService) countInto(ctx context.Context, g *errgroup.Group, dst *int64, f store.AppointmentFilter) {
	g.Go(func() error {
		n, err := s.store.CountAppointments(ctx, f)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}

func (s *StatsService) doctorCounts(ctx context.Context, g *errgroup.Group, doctorID primitive.ObjectID, out *AppointmentCounts) {
	start, end := DayBounds(s.now())
	s.countInto(ctx, g, &out.TotalAppointments, store.AppointmentFilter{DoctorID: doctorID})
	s.countInto(ctx, g, &out.TodayAppointments, store.AppointmentFilter{DoctorID: doctorID, From: start, To: end})
	s.countInto(ctx, g, &out.PendingAppointments, store.AppointmentFilter{DoctorID: doctorID, Status: models.StatusScheduled})
	s.countInto(ctx, g, &out.CompletedAppointments, store.AppointmentFilter{DoctorID: doctorID, Status: models.StatusCompleted})
}

// DoctorsWithStats lists every doctor with its appointment counters, in listing order.
func (s *StatsService) DoctorsWithStats(ctx context.Context) ([]DoctorWithStats, error) {
	doctors, err := s.store.ListDoctors(ctx, store.DoctorFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]DoctorWithStats, len(doctors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i := range doctors {
		out[i].DoctorDetail = doctors[i]
		s.doctorCounts(gctx, g, doctors[i].ID, &out[i].AppointmentCounts)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StatsService) DoctorStats(ctx context.Context, doctorID primitive.ObjectID) (*DoctorStats, error) {
	if _, err := s.store.DoctorByID(ctx, doctorID); err != nil {
		return nil, err
	}
	var (
		out     DoctorStats
		summary models.RatingSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	s.doctorCounts(gctx, g, doctorID, &out.AppointmentCounts)
	s.countInto(gctx, g, &out.CancelledAppointments, store.AppointmentFilter{DoctorID: doctorID, Status: models.StatusCancelled})
	g.Go(func() error {
		var err error
		summary, err = s.store.DoctorRatingSummary(gctx, doctorID)
		return err
	})
	g.Go(func() error {
		var err error
		out.TotalPatients, err = s.store.DistinctPatients(gctx, doctorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.AverageRating = RoundRating(summary.Average)
	out.TotalFeedback = summary.Count
	return &out, nil
}

// Dashboard builds the role-specific summary for the signed-in user.
func (s *StatsService) Dashboard(ctx context.Context, user *models.User) (*Dashboard, error) {
	profile, err := s.auth.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	now := s.now()
	start, end := DayBounds(now)
	stats := map[string]int64{}
	set := func(key string, f store.AppointmentFilter) error {
		n, err := s.store.CountAppointments(ctx, f)
		stats[key] = n
		return err
	}

	switch user.UserType {
	case models.RolePatient:
		pid := profile.(*models.PatientDetail).ID
		err = firstErr(
			set("totalAppointments", store.AppointmentFilter{PatientID: pid}),
			set("upcomingAppointments", store.AppointmentFilter{PatientID: pid, From: now.Add(time.Nanosecond), ExcludeStatus: models.StatusCancelled}),
			set("completedAppointments", store.AppointmentFilter{PatientID: pid, Status: models.StatusCompleted}),
		)
	case models.RoleDoctor:
		did := profile.(*models.DoctorDetail).ID
		err = firstErr(
			set("totalAppointments", store.AppointmentFilter{DoctorID: did}),
			set("todayAppointments", store.AppointmentFilter{DoctorID: did, From: start, To: end}),
			set("pendingAppointments", store.AppointmentFilter{DoctorID: did, Status: models.StatusScheduled}),
		)
	case models.RoleStaff:
		var users int64
		users, err = s.store.CountUsers(ctx)
		stats["totalUsers"] = users
		err = firstErr(
			err,
			set("totalAppointments", store.AppointmentFilter{}),
			set("todayAppointments", store.AppointmentFilter{From: start, To: end}),
		)
	}
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: user, Profile: profile, Stats: stats}, nil
}

// RefreshDoctorAggregates recomputes rating and patient counters stored on the doctor.
func (s *StatsService) RefreshDoctorAggregates(ctx context.Context, doctorID primitive.ObjectID) error {
	summary, err := s.store.DoctorRatingSummary(ctx, doctorID)
	if err != nil {
		return err
	}
	patients, err := s.store.DistinctPatients(ctx, doctorID)
	if err != nil {
		return err
	}
	agg := store.DoctorAggregates{
		Rating:        RoundRating(summary.Average),
		TotalRatings:  summary.Count,
		TotalPatients: patients,
	}
	if err := s.store.UpdateDoctorAggregates(ctx, doctorID, agg); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"doctor_id": doctorID.Hex(), "rating": agg.Rating, "patients": agg.TotalPatients}).Debug("doctor aggregates refreshed")
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
