package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/shashiranjanraj/emart/app/models"
	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/pkg/http"
)

// GatewayResult is what a payment gateway reports back for a charge attempt.
type GatewayResult struct {
	Approved bool
	Response string
}

// Gateway authorizes charges. The simulated driver is the default; a remote
// HTTP driver can be selected with GATEWAY_DRIVER=remote.
type Gateway interface {
	Charge(ctx context.Context, p models.Payment) (GatewayResult, error)
}

// SimulatedGateway approves a configurable fraction of charges after a
// processing delay, standing in for a real acquirer in dev and test.
type SimulatedGateway struct {
	Delay       time.Duration
	SuccessRate float64
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{
		Delay:       time.Duration(config.GatewayDelayMillis()) * time.Millisecond,
		SuccessRate: config.GatewaySuccessRate(),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, p models.Payment) (GatewayResult, error) {
	select {
	case <-time.After(g.Delay):
	case <-ctx.Done():
		return GatewayResult{}, ctx.Err()
	}

	if rand.Float64() < g.SuccessRate {
		return GatewayResult{Approved: true, Response: "approved"}, nil
	}
	return GatewayResult{Approved: false, Response: "declined"}, nil
}

// RemoteGateway posts charges to an external processor.
type RemoteGateway struct {
	URL    string
	APIKey string
}

func NewRemoteGateway() *RemoteGateway {
	return &RemoteGateway{
		URL:    config.Get("GATEWAY_URL", ""),
		APIKey: config.Get("GATEWAY_API_KEY", ""),
	}
}

func (g *RemoteGateway) Charge(ctx context.Context, p models.Payment) (GatewayResult, error) {
	resp, err := http.Post(g.URL+"/charges").
		Bearer(g.APIKey).
		Body(map[string]interface{}{
			"reference": p.TransactionID,
			"amount":    p.Amount,
			"currency":  "USD",
			"method":    p.Method,
		}).
		Timeout(10 * time.Second).
		Retry(3, time.Second).
		WithContext(ctx).
		Send()
	if err != nil {
		return GatewayResult{}, err
	}

	var out struct {
		Approved bool   `json:"approved"`
		Message  string `json:"message"`
	}
	if err := resp.JSON(&out); err != nil {
		return GatewayResult{}, err
	}
	return GatewayResult{Approved: out.Approved, Response: out.Message}, nil
}

// GatewayFromConfig selects the gateway driver named in configuration.
func GatewayFromConfig() Gateway {
	if config.Get("GATEWAY_DRIVER", "simulated") == "remote" {
		return NewRemoteGateway()
	}
	return NewSimulatedGateway()
}
