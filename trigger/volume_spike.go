package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptVolumeSpike is the script id of the volume spike trigger.
const ScriptVolumeSpike = "volume_spike_trigger"

func init() {
	Register(ScriptVolumeSpike, func() Trigger { return &VolumeSpikeTrigger{} })
}

// VolumeSpikeTrigger detects trading volume significantly above average.
type VolumeSpikeTrigger struct{}

func (t *VolumeSpikeTrigger) Name() string {
	return "Volume Spike Monitor"
}

func (t *VolumeSpikeTrigger) Description() string {
	return "Detects unusual volume activity significantly above average."
}

func (t *VolumeSpikeTrigger) DefaultParams() Params {
	return Params{"ticker": "NVDA", "avg_volume": 1000000, "threshold_percent": 200}
}

func (t *VolumeSpikeTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	ticker := params.GetString("ticker", "UNKNOWN")
	avgVol := params.GetFloat("avg_volume", 1000000)
	pctThresh := params.GetFloat("threshold_percent", 200)

	currentVol := avgVol * (0.5 + rand.Float64()*3.0)
	if params.Has("current_volume") {
		currentVol = params.GetFloat("current_volume", currentVol)
	}

	increasePct := 0.0
	if avgVol > 0 {
		increasePct = currentVol / avgVol * 100
	}

	return &Output{
		Triggered:  increasePct > pctThresh,
		Importance: models.ImportanceMedium,
		Ticker:     ticker,
		Message:    fmt.Sprintf("Volume Spike: %s volume is %d (%.1f%% of avg)", ticker, int64(currentVol), increasePct),
		Metadata:   map[string]interface{}{"current_volume": currentVol, "increase_pct": increasePct},
		Timestamp:  time.Now().UTC(),
	}, nil
}
