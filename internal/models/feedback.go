package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

type FeedbackCategory string

const (
	CategoryService  FeedbackCategory = "Service"
	CategoryDoctor   FeedbackCategory = "Doctor"
	CategoryFacility FeedbackCategory = "Facility"
	CategoryGeneral  FeedbackCategory = "General"
)

type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "Pending"
	FeedbackReviewed FeedbackStatus = "Reviewed"
	FeedbackResolved FeedbackStatus = "Resolved"
)

type Feedback struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PatientID     primitive.ObjectID  `bson:"patientId" json:"patientId"`
	DoctorID      *primitive.ObjectID `bson:"doctorId,omitempty" json:"doctorId,omitempty"`
	AppointmentID *primitive.ObjectID `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	Rating        int                 `bson:"rating" json:"rating" validate:"gte=1,lte=5"`
	Comment       string              `bson:"comment,omitempty" json:"comment,omitempty"`
	Category      FeedbackCategory    `bson:"category" json:"category" validate:"oneof=Service Doctor Facility General"`
	IsAnonymous   bool                `bson:"isAnonymous" json:"isAnonymous"`
	Status        FeedbackStatus      `bson:"status" json:"status" validate:"oneof=Pending Reviewed Resolved"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Normalize applies defaults and clamps the rating into [MinRating, MaxRating].
func (f *Feedback) Normalize() {
	if f.Rating < MinRating {
		f.Rating = MinRating
	}
	if f.Rating > MaxRating {
		f.Rating = MaxRating
	}
	if f.Category == "" {
		f.Category = CategoryGeneral
	}
	if f.Status == "" {
		f.Status = FeedbackPending
	}
}

type FeedbackDetail struct {
	Feedback    `bson:",inline"`
	Patient     *PatientDetail `bson:"patient,omitempty" json:"patient,omitempty"`
	Doctor      *DoctorDetail  `bson:"doctor,omitempty" json:"doctor,omitempty"`
	Appointment *Appointment   `bson:"appointment,omitempty" json:"appointment,omitempty"`
}

// Anonymized hides who wrote the feedback when the author asked for it.
func (f FeedbackDetail) Anonymized() FeedbackDetail {
	if !f.IsAnonymous {
		return f
	}
	f.PatientID = primitive.NilObjectID
	f.Patient = nil
	return f
}

// Owners returns the user ids of the author and the rated doctor, zero when not populated.
func (f *FeedbackDetail) Owners() (patientUser, doctorUser primitive.ObjectID) {
	if f.Patient != nil {
		patientUser = f.Patient.UserID
	}
	if f.Doctor != nil {
		doctorUser = f.Doctor.UserID
	}
	return patientUser, doctorUser
}

// RatingSummary is the feedback aggregate for one doctor.
type RatingSummary struct {
	Average float64 `bson:"average" json:"average"`
	Count   int64   `bson:"count" json:"count"`
}
