package main

import (
	"context"
	"log"
	"strings"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/gateway"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/logger"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/mailer"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/ratelimit"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// handler adapts API-gateway proxy events onto the shared contact gateway.
// State (rate-limit table, cached transport) lives for the life of the
// execution environment, matching the standalone server's process scope.
type handler struct {
	gw *gateway.Gateway
}

func (h *handler) handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := make(map[string]string, len(event.Headers))
	for name, value := range event.Headers {
		headers[strings.ToLower(name)] = value
	}

	resp := h.gw.Handle(ctx, &gateway.Request{
		Method:  event.HTTPMethod,
		Headers: headers,
		Body:    []byte(event.Body),
	})

	return events.APIGatewayProxyResponse{
		StatusCode: resp.Status,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewProductionLogger(cfg.ServerDebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	limiter := ratelimit.New(ratelimit.DefaultWindow, ratelimit.DefaultMax)
	provider := mailer.NewSMTPProvider(cfg)
	h := &handler{gw: gateway.New(cfg, limiter, provider, zapLogger)}

	lambda.Start(h.handle)
}
