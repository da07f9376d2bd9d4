package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName" validate:"required"`
	LastName  string             `bson:"lastName" json:"lastName" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialized
	UserType  Role               `bson:"userType" json:"userType" validate:"required,oneof=patient doctor staff"`
	Phone     string             `bson:"phone" json:"phone"`
	IsActive  bool               `bson:"isActive" json:"isActive"`

	// Doctor fields kept on the account for display.
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Experience     int    `bson:"experience,omitempty" json:"experience,omitempty" validate:"gte=0"`
	LicenseNumber  string `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserSummary is the subset of a user embedded when another document is populated.
type UserSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
}

func (u UserSummary) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Phone: u.Phone}
}
