package service

import (
	"context"

	"github.com/edukart-next/internal/payment/razorpay"
)

// PaymentGateway abstracts the provider order handshake so checkout can be
// exercised without network access.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, input razorpay.CreateInput) (*razorpay.CreateResult, error)
}

type razorpayGateway struct {
	cfg *razorpay.Config
}

// NewRazorpayGateway wraps the Razorpay client as a PaymentGateway.
func NewRazorpayGateway(cfg *razorpay.Config) PaymentGateway {
	return &razorpayGateway{cfg: cfg}
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, input razorpay.CreateInput) (*razorpay.CreateResult, error) {
	return razorpay.CreateOrder(ctx, g.cfg, input)
}
