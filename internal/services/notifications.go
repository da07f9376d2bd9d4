package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/models"
)

const textbeltURL = "https://textbelt.com/text"

// Notifier tells patients about changes to their appointments.
type Notifier interface {
	AppointmentBooked(patient *models.UserSummary, doctor *models.DoctorDetail, apt *models.Appointment)
	AppointmentCancelled(patient *models.UserSummary, apt *models.Appointment)
}

// NotificationService sends SMS through Textbelt. Without an API key it only logs.
type NotificationService struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewNotificationService(apiKey string) *NotificationService {
	return &NotificationService{
		apiKey:     apiKey,
		url:        textbeltURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *NotificationService) AppointmentBooked(patient *models.UserSummary, doctor *models.DoctorDetail, apt *models.Appointment) {
	if patient == nil {
		return
	}
	with := "your doctor"
	if doctor != nil {
		with = doctor.DisplayName()
	}
	body := fmt.Sprintf("Appointment booked with %s on %s at %s.",
		with, apt.AppointmentDate.Format("Jan 2"), apt.AppointmentTime)
	s.sendAsync(patient.Phone, body)
}

func (s *NotificationService) AppointmentCancelled(patient *models.UserSummary, apt *models.Appointment) {
	if patient == nil {
		return
	}
	body := fmt.Sprintf("Your appointment on %s at %s has been cancelled.",
		apt.AppointmentDate.Format("Jan 2"), apt.AppointmentTime)
	s.sendAsync(patient.Phone, body)
}

// sendAsync sends in a goroutine so it doesn't block the API response.
func (s *NotificationService) sendAsync(phone, message string) {
	if phone == "" {
		logrus.Debug("SMS not sent: patient has no phone number")
		return
	}
	if s.apiKey == "" {
		logrus.WithField("phone", phone).Debug("SMS not sent: TEXTBELT_API_KEY not set")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, phone, message); err != nil {
			logrus.WithError(err).WithField("phone", phone).Warn("failed to send SMS")
		}
	}()
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: %s", result.Error)
	}
	logrus.WithField("phone", phone).Info("SMS sent")
	return nil
}
