package handlers

import (
	"time"

	"github.com/harentsoaR/medicare-api/internal/services"
	"github.com/harentsoaR/medicare-api/internal/store"
	"github.com/harentsoaR/medicare-api/internal/utils"
)

// Handler holds the store and the services every route handler needs.
type Handler struct {
	Store    store.Store
	Auth     *services.AuthService
	Stats    *services.StatsService
	Pharmacy *services.PharmacyService
	Payments services.PaymentGateway
	Notifier services.Notifier

	now func() time.Time
}

func NewHandler(s store.Store, tokens *utils.TokenManager, payments services.PaymentGateway, notifier services.Notifier) *Handler {
	auth := services.NewAuthService(s, tokens)
	return &Handler{
		Store:    s,
		Auth:     auth,
		Stats:    services.NewStatsService(s, auth),
		Pharmacy: services.NewPharmacyService(s, payments),
		Payments: payments,
		Notifier: notifier,
		now:      time.Now,
	}
}
