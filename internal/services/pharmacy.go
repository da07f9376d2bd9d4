package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/models"
	"github.com/harentsoaR/medicare-api/internal/store"
)

type CartItem struct {
	MedicineID primitive.ObjectID `json:"medicineId"`
	Quantity   int                `json:"quantity"`
}

type PharmacyService struct {
	store   store.Store
	gateway PaymentGateway
}

func NewPharmacyService(s store.Store, gateway PaymentGateway) *PharmacyService {
	return &PharmacyService{store: s, gateway: gateway}
}

// PlaceOrder prices the cart from the catalog, opens a gateway order for the
// total and records it against the user.
func (s *PharmacyService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, cart []CartItem) (*models.PharmacyOrder, error) {
	if len(cart) == 0 {
		return nil, apperr.Validation("cart is empty")
	}
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		if item.MedicineID.IsZero() {
			return nil, apperr.Validation("medicineId is required")
		}
		if item.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		ids = append(ids, item.MedicineID)
	}

	medicines, err := s.store.MedicinesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Medicine, len(medicines))
	for _, m := range medicines {
		byID[m.ID] = m
	}

	order := &models.PharmacyOrder{
		UserID:   userID,
		Currency: DefaultCurrency,
		Receipt:  "rcpt_" + uuid.NewString()[:8],
		Status:   models.OrderCreated,
	}
	for _, item := range cart {
		m, ok := byID[item.MedicineID]
		if !ok {
			return nil, apperr.NotFound("medicine not found")
		}
		if !m.InStock {
			return nil, apperr.Validation("%s is out of stock", m.Name)
		}
		unit := models.MoneyToMinor(m.Price)
		order.Items = append(order.Items, models.OrderItem{
			MedicineID: m.ID,
			Name:       m.Name,
			UnitPrice:  unit,
			Quantity:   item.Quantity,
		})
		order.Amount += unit * int64(item.Quantity)
	}

	gw, err := s.gateway.CreateOrder(ctx, OrderRequest{Amount: order.Amount, Currency: order.Currency, Receipt: order.Receipt})
	if err != nil {
		return nil, err
	}
	order.GatewayOrderID = gw.ID

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID.Hex(),
		"gateway_id": order.GatewayOrderID,
		"amount":     order.Amount,
	}).Info("pharmacy order created")
	return order, nil
}

func (s *PharmacyService) Orders(ctx context.Context, userID primitive.ObjectID) ([]models.PharmacyOrder, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

func (s *PharmacyService) Catalog(ctx context.Context) ([]models.Medicine, error) {
	return s.store.ListMedicines(ctx)
}

// CreatePassthroughOrder opens a gateway order for an amount given in major units.
func CreatePassthroughOrder(ctx context.Context, gateway PaymentGateway, amount float64, now time.Time) (*GatewayOrder, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	return gateway.CreateOrder(ctx, OrderRequest{
		Amount:   models.MoneyToMinor(amount),
		Currency: DefaultCurrency,
		Receipt:  Receipt(now),
	})
}
