package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultConsultationFee = 100
	DefaultQualification   = "MD"
)

type ShiftWindow struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

type ShiftTiming struct {
	Morning ShiftWindow `bson:"morning" json:"morning"`
	Evening ShiftWindow `bson:"evening" json:"evening"`
}

func DefaultShiftTiming() ShiftTiming {
	return ShiftTiming{
		Morning: ShiftWindow{Start: "09:00", End: "12:00"},
		Evening: ShiftWindow{Start: "17:00", End: "20:00"},
	}
}

type Doctor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Specialization  string             `bson:"specialization" json:"specialization" validate:"required"`
	Qualification   string             `bson:"qualification" json:"qualification" validate:"required"`
	LicenseNumber   string             `bson:"licenseNumber" json:"licenseNumber" validate:"required"`
	Experience      int                `bson:"experience" json:"experience" validate:"gte=0"`
	Department      string             `bson:"department" json:"department" validate:"required"`
	ConsultationFee float64            `bson:"consultationFee" json:"consultationFee" validate:"gte=0"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	Rating          float64            `bson:"rating" json:"rating" validate:"gte=0,lte=5"`
	TotalRatings    int64              `bson:"totalRatings" json:"totalRatings"`
	TotalPatients   int64              `bson:"totalPatients" json:"totalPatients"`
	ShiftTiming     ShiftTiming        `bson:"shiftTiming" json:"shiftTiming"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type DoctorDetail struct {
	Doctor `bson:",inline"`
	User   *UserSummary `bson:"user,omitempty" json:"user,omitempty"`
}

// DisplayName is "Dr. First Last", or the license number when the account is missing.
func (d *DoctorDetail) DisplayName() string {
	if d.User == nil {
		return d.LicenseNumber
	}
	return "Dr. " + d.User.FullName()
}
