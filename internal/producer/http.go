package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/pkg/httputil"
)

// generateRequest body POSTed to a forecaster endpoint
type generateRequest struct {
	Date  string `json:"date"`
	Model string `json:"model"`
}

// HTTPProducer asks a remote forecaster service for its batch
type HTTPProducer struct {
	id          string
	displayName string
	endpoint    string
	client      *httputil.Client
}

// NewHTTPProducer creates a producer that POSTs {"date","model"} to endpoint
func NewHTTPProducer(id, displayName, endpoint string, client *httputil.Client) *HTTPProducer {
	return &HTTPProducer{id: id, displayName: displayName, endpoint: endpoint, client: client}
}

func (p *HTTPProducer) ID() string          { return p.id }
func (p *HTTPProducer) DisplayName() string { return p.displayName }

// Generate implements contracts.Producer
func (p *HTTPProducer) Generate(ctx context.Context, date time.Time) ([]byte, error) {
	body, err := p.client.PostRaw(ctx, p.endpoint, generateRequest{
		Date:  contracts.FormatDate(date),
		Model: p.id,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}

	obj, err := ExtractJSON(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	return obj, nil
}
