package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Medicine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price" validate:"gt=0"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type OrderStatus string

const (
	OrderCreated   OrderStatus = "Created"
	OrderPaid      OrderStatus = "Paid"
	OrderCancelled OrderStatus = "Cancelled"
)

type OrderItem struct {
	MedicineID primitive.ObjectID `bson:"medicineId" json:"medicineId"`
	Name       string             `bson:"name" json:"name"`
	UnitPrice  int64              `bson:"unitPrice" json:"unitPrice"` // smallest currency unit
	Quantity   int                `bson:"quantity" json:"quantity"`
}

type PharmacyOrder struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Amount         int64              `bson:"amount" json:"amount"` // smallest currency unit
	Currency       string             `bson:"currency" json:"currency"`
	Receipt        string             `bson:"receipt" json:"receipt"`
	GatewayOrderID string             `bson:"gatewayOrderId" json:"gatewayOrderId"`
	Status         OrderStatus        `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MoneyToMinor converts an amount in major currency units to the smallest unit.
func MoneyToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
