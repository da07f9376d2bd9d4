package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicare-api/internal/apperr"
)

const (
	DefaultCurrency = "INR"
	razorpayBaseURL = "https://api.razorpay.com/v1"
)

type OrderRequest struct {
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// GatewayOrder is the order as the payment gateway reports it.
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
}

// RazorpayClient creates orders through the Razorpay REST API.
type RazorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    razorpayBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, apperr.Internal(fmt.Errorf("razorpay credentials are not configured"))
	}
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("razorpay request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logrus.WithFields(logrus.Fields{"status": resp.StatusCode, "receipt": req.Receipt}).Error("razorpay rejected order")
		return nil, apperr.Internal(fmt.Errorf("razorpay returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg)))
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode razorpay order: %w", err))
	}
	return &order, nil
}

// Receipt builds the receipt reference sent with a passthrough order.
func Receipt(now time.Time) string {
	return fmt.Sprintf("rcpt_%d", now.UnixMilli())
}
