package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

type EmergencyContact struct {
	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
}

type MedicalHistoryEntry struct {
	Condition     string     `bson:"condition" json:"condition" validate:"required"`
	DiagnosedDate *time.Time `bson:"diagnosedDate,omitempty" json:"diagnosedDate,omitempty"`
	Status        string     `bson:"status,omitempty" json:"status,omitempty"`
}

type Patient struct {
	ID               primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID    `bson:"userId" json:"userId"`
	DateOfBirth      *time.Time            `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender           string                `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	BloodGroup       string                `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	Address          Address               `bson:"address" json:"address"`
	EmergencyContact EmergencyContact      `bson:"emergencyContact" json:"emergencyContact"`
	MedicalHistory   []MedicalHistoryEntry `bson:"medicalHistory" json:"medicalHistory" validate:"dive"`
	CreatedAt        time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// PatientDetail is a patient with its account populated.
type PatientDetail struct {
	Patient `bson:",inline"`
	User    *UserSummary `bson:"user,omitempty" json:"user,omitempty"`
}
