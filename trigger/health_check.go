package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptHealthCheck is the script id of the health check trigger.
const ScriptHealthCheck = "health_check_trigger"

func init() {
	Register(ScriptHealthCheck, func() Trigger {
		return &HealthCheckTrigger{client: resty.New().SetTimeout(5 * time.Second)}
	})
}

// HealthCheckTrigger monitors a service endpoint and reports its status.
// With probe=true it issues a real GET against the endpoint; otherwise the
// status is simulated (or forced via the healthy parameter).
type HealthCheckTrigger struct {
	client *resty.Client
}

func (t *HealthCheckTrigger) Name() string {
	return "Health Check Monitor"
}

func (t *HealthCheckTrigger) Description() string {
	return "Monitors service endpoints and returns status (Healthy/Unhealthy)."
}

func (t *HealthCheckTrigger) DefaultParams() Params {
	return Params{"service": "Auth-API", "endpoint": "https://api.sentinel.io/health", "probe": false}
}

func (t *HealthCheckTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	service := params.GetString("service", "unknown")
	endpoint := params.GetString("endpoint", "localhost")

	var isHealthy bool
	switch {
	case params.Has("healthy"):
		isHealthy = params.GetBool("healthy", true)
	case params.GetBool("probe", false):
		isHealthy = t.probe(ctx, endpoint)
	default:
		isHealthy = rand.Float64() > 0.2
	}

	importance := models.ImportanceCritical
	statusText := "Unhealthy"
	if isHealthy {
		importance = models.ImportanceLow
		statusText = "Healthy"
	}

	return &Output{
		Triggered:  true,
		Importance: importance,
		Ticker:     service,
		Message:    fmt.Sprintf("Health Check for %s (%s): %s", service, endpoint, statusText),
		Metadata: map[string]interface{}{
			"status":     statusText,
			"is_healthy": isHealthy,
			"endpoint":   endpoint,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}

func (t *HealthCheckTrigger) probe(ctx context.Context, endpoint string) bool {
	resp, err := t.client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return false
	}
	return resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices
}
