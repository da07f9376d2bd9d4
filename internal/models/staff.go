package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Staff struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Department  string             `bson:"department" json:"department" validate:"required"`
	Position    string             `bson:"position" json:"position" validate:"required"`
	EmployeeID  string             `bson:"employeeId" json:"employeeId" validate:"required"`
	Shift       string             `bson:"shift,omitempty" json:"shift,omitempty" validate:"omitempty,oneof=Morning Evening Night"`
	Salary      float64            `bson:"salary,omitempty" json:"salary,omitempty" validate:"gte=0"`
	JoiningDate time.Time          `bson:"joiningDate" json:"joiningDate"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type StaffDetail struct {
	Staff `bson:",inline"`
	User  *UserSummary `bson:"user,omitempty" json:"user,omitempty"`
}
