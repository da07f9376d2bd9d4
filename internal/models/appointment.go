package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "Scheduled"
	StatusConfirmed  AppointmentStatus = "Confirmed"
	StatusInProgress AppointmentStatus = "In Progress"
	StatusCompleted  AppointmentStatus = "Completed"
	StatusCancelled  AppointmentStatus = "Cancelled"
)

type PrescribedMedicine struct {
	Name     string `bson:"name" json:"name" validate:"required"`
	Dosage   string `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`
}

type Prescription struct {
	Medicines    []PrescribedMedicine `bson:"medicines" json:"medicines" validate:"dive"`
	Instructions string               `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID       primitive.ObjectID `bson:"patientId" json:"patientId"`
	DoctorID        primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate" validate:"required"`
	AppointmentTime string             `bson:"appointmentTime" json:"appointmentTime" validate:"required"`
	Reason          string             `bson:"reason" json:"reason" validate:"required"`
	Status          AppointmentStatus  `bson:"status" json:"status" validate:"required,oneof=Scheduled Confirmed 'In Progress' Completed Cancelled"`
	Notes           string             `bson:"notes" json:"notes"`
	Prescription    *Prescription      `bson:"prescription,omitempty" json:"prescription,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentDetail is an appointment with its patient and doctor populated.
type AppointmentDetail struct {
	Appointment `bson:",inline"`
	Patient     *PatientDetail `bson:"patient,omitempty" json:"patient,omitempty"`
	Doctor      *DoctorDetail  `bson:"doctor,omitempty" json:"doctor,omitempty"`
}

// Owners returns the user ids of the patient and doctor, zero when not populated.
func (a *AppointmentDetail) Owners() (patientUser, doctorUser primitive.ObjectID) {
	if a.Patient != nil {
		patientUser = a.Patient.UserID
	}
	if a.Doctor != nil {
		doctorUser = a.Doctor.UserID
	}
	return patientUser, doctorUser
}

func (s AppointmentStatus) String() string { return string(s) }

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}
