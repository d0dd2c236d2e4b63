package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptWorkflowRun is the script id of the workflow run trigger.
const ScriptWorkflowRun = "workflow_run_trigger"

// WorkflowRunner starts a run of an externally-orchestrated workflow.
// The workflow client satisfies this; when none is configured the trigger
// simulates the orchestrator.
type WorkflowRunner interface {
	TriggerRun(ctx context.Context, deploymentID string, parameters map[string]interface{}) (string, error)
}

var workflowRunner WorkflowRunner

// SetWorkflowRunner wires the workflow orchestrator client into the trigger.
func SetWorkflowRunner(r WorkflowRunner) {
	workflowRunner = r
}

func init() {
	Register(ScriptWorkflowRun, func() Trigger { return &WorkflowRunTrigger{} })
}

// WorkflowRunTrigger invokes a workflow deployment and reports its initial
// state. The run id it emits in metadata is what links the resulting event
// to the external orchestrator for later state sync.
type WorkflowRunTrigger struct{}

func (t *WorkflowRunTrigger) Name() string {
	return "Workflow Deployment Runner"
}

func (t *WorkflowRunTrigger) Description() string {
	return "Invokes a workflow deployment and monitors its initial state."
}

func (t *WorkflowRunTrigger) DefaultParams() Params {
	return Params{
		"deployment_id": "dep-12345678",
		"flow_name":     "data-pipeline-daily",
		"parameters":    map[string]interface{}{},
	}
}

func (t *WorkflowRunTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	deploymentID := params.GetString("deployment_id", "")
	flowName := params.GetString("flow_name", "Unknown Flow")
	runParams, _ := params["parameters"].(map[string]interface{})

	runID, err := t.startRun(ctx, deploymentID, runParams)
	if err != nil || runID == "" {
		return &Output{
			Triggered:  false,
			Importance: models.ImportanceLow,
			Ticker:     "WORKFLOW",
			Message:    fmt.Sprintf("Failed to trigger %s", flowName),
			Metadata:   map[string]interface{}{},
			Timestamp:  time.Now().UTC(),
		}, nil
	}

	return &Output{
		Triggered:  true,
		Importance: models.ImportanceMedium,
		Ticker:     "WORKFLOW",
		Message:    fmt.Sprintf("Triggered Flow: %s", flowName),
		Metadata: map[string]interface{}{
			"deployment_id": deploymentID,
			"flow_run_id":   runID,
			"initial_state": "SCHEDULED",
		},
		Timestamp: time.Now().UTC(),
	}, nil
}

func (t *WorkflowRunTrigger) startRun(ctx context.Context, deploymentID string, parameters map[string]interface{}) (string, error) {
	if workflowRunner != nil {
		return workflowRunner.TriggerRun(ctx, deploymentID, parameters)
	}
	// Simulated orchestrator: a small failure rate keeps the dashboard honest.
	if rand.Float64() < 0.1 {
		return "", nil
	}
	return uuid.NewString(), nil
}
