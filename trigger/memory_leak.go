package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptMemoryLeak is the script id of the memory leak trigger.
const ScriptMemoryLeak = "memory_leak_trigger"

func init() {
	Register(ScriptMemoryLeak, func() Trigger { return &MemoryLeakTrigger{} })
}

// MemoryLeakTrigger monitors memory usage trends against a configured limit.
type MemoryLeakTrigger struct{}

func (t *MemoryLeakTrigger) Name() string {
	return "Memory Leak Detector"
}

func (t *MemoryLeakTrigger) Description() string {
	return "Monitors memory usage trends for potential leaks."
}

func (t *MemoryLeakTrigger) DefaultParams() Params {
	return Params{"service": "api-gateway", "limit_mb": 512}
}

func (t *MemoryLeakTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	service := params.GetString("service", "unknown")
	limit := params.GetFloat("limit_mb", 512)

	used := limit * (0.6 + rand.Float64()*0.6)
	if params.Has("used_mb") {
		used = params.GetFloat("used_mb", used)
	}

	return &Output{
		Triggered:  used > limit,
		Importance: models.ImportanceMedium,
		Ticker:     service,
		Message:    fmt.Sprintf("Potential Memory Leak in %s: %.1fMB used (Limit: %vMB)", service, used, limit),
		Metadata:   map[string]interface{}{"used_mb": used, "limit_mb": limit},
		Timestamp:  time.Now().UTC(),
	}, nil
}
