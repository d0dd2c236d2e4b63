package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptCPUUsage is the script id of the CPU usage trigger.
const ScriptCPUUsage = "cpu_usage_trigger"

func init() {
	Register(ScriptCPUUsage, func() Trigger { return &CPUUsageTrigger{} })
}

// CPUUsageTrigger alerts when CPU usage exceeds a configured threshold.
// The observed load is sampled randomly unless the parameter bag carries a
// current_load override.
type CPUUsageTrigger struct{}

func (t *CPUUsageTrigger) Name() string {
	return "CPU Usage Monitor"
}

func (t *CPUUsageTrigger) Description() string {
	return "Alerts when CPU usage exceeds critical limits."
}

func (t *CPUUsageTrigger) DefaultParams() Params {
	return Params{"server": "PROD-DB-01", "threshold": 90}
}

func (t *CPUUsageTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	server := params.GetString("server", "localhost")
	threshold := params.GetFloat("threshold", 90)

	currentLoad := 10 + rand.Float64()*90
	if params.Has("current_load") {
		currentLoad = params.GetFloat("current_load", currentLoad)
	}

	importance := models.ImportanceHigh
	if currentLoad >= 95 {
		importance = models.ImportanceCritical
	}

	return &Output{
		Triggered:  currentLoad > threshold,
		Importance: importance,
		Ticker:     server,
		Message:    fmt.Sprintf("High CPU Load on %s: %.1f%% (Threshold: %v%%)", server, currentLoad, threshold),
		Metadata:   map[string]interface{}{"load": currentLoad},
		Timestamp:  time.Now().UTC(),
	}, nil
}
