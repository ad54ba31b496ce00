package findings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"linkscope-backend/application/ports"
	"linkscope-backend/domain/core/entities"
	apperrors "linkscope-backend/pkg/errors"
)

// HTTPSource pulls findings from an external collection service. Calls go
// through a circuit breaker so a flapping upstream fails fast instead of
// stalling rebuilds behind timeouts.
//
// The source is pull-only: it emits no change notifications, and hosts
// using it trigger rebuilds through the explicit rebuild endpoint.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewHTTPSource creates a source for the service at baseURL. maxFailures
// consecutive failures open the breaker.
func NewHTTPSource(baseURL string, timeout time.Duration, maxFailures uint32, logger *zap.Logger) *HTTPSource {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "finding-source",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Finding source breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// List fetches the full current finding list for an investigation.
func (h *HTTPSource) List(ctx context.Context, investigationID string) ([]entities.Finding, error) {
	result, err := h.breaker.Execute(func() (interface{}, error) {
		return h.fetch(ctx, investigationID)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.NewUnavailableError("finding source")
		}
		return nil, apperrors.NewExternalError("finding source", err)
	}
	return result.([]entities.Finding), nil
}

func (h *HTTPSource) fetch(ctx context.Context, investigationID string) ([]entities.Finding, error) {
	endpoint := fmt.Sprintf("%s/investigations/%s/findings", h.baseURL, url.PathEscape(investigationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []entities.Finding{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("finding source returned %d: %s", resp.StatusCode, string(body))
	}

	var findings []entities.Finding
	if err := json.NewDecoder(resp.Body).Decode(&findings); err != nil {
		return nil, fmt.Errorf("decode finding list: %w", err)
	}
	return findings, nil
}

// Changes returns an empty stream that closes on context cancellation.
func (h *HTTPSource) Changes(ctx context.Context) (<-chan ports.ChangeNotification, error) {
	ch := make(chan ports.ChangeNotification)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
