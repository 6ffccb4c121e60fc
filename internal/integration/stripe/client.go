package stripe

import (
	"github.com/classward/classward/internal/config"
	"github.com/classward/classward/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client handles Stripe API client setup and configuration. The
// underlying stripe.Client is built once per process from the
// configured secret key and shared by all requests.
type Client struct {
	sc     *stripe.Client
	logger *logger.Logger
}

// NewClient creates a new Stripe client
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		sc:     stripe.NewClient(cfg.Stripe.SecretKey, nil),
		logger: logger,
	}
}
