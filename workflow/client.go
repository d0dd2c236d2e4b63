package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// API is the surface the core consumes from the external workflow
// orchestrator. All methods degrade rather than propagate transport
// failures: empty lists, empty maps, empty run ids.
type API interface {
	CheckConnection(ctx context.Context) ConnectionStatus
	ListDeployments(ctx context.Context) []Deployment
	TriggerRun(ctx context.Context, deploymentID string, parameters map[string]interface{}) (string, error)
	GetBatchStates(ctx context.Context, runIDs []string) map[string]string
	RunUIURL(runID string) string
}

// Deployment describes a deployable workflow known to the orchestrator.
type Deployment struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	FlowID string `json:"flow_id"`
}

// ConnectionStatus is the result of a reachability probe, with a message
// suitable for user-facing diagnostics.
type ConnectionStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client talks to a workflow orchestrator over its JSON HTTP API.
// An empty API URL means the integration is disabled; every call then
// short-circuits to its degraded result.
type Client struct {
	client  *resty.Client
	baseURL string
	uiURL   string
	logger  *log.Logger
}

// NewClient creates a workflow API client. apiURL may be empty to disable
// the integration.
func NewClient(apiURL, uiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(apiURL, "/"),
		uiURL:   strings.TrimRight(uiURL, "/"),
		logger:  log.New(log.Writer(), "[WorkflowClient] ", log.LstdFlags),
	}
}

// Enabled reports whether an API URL is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// CheckConnection probes the orchestrator's health endpoint. Connection
// refusals are distinguished from other failures in the returned message.
func (c *Client) CheckConnection(ctx context.Context) ConnectionStatus {
	if !c.Enabled() {
		return ConnectionStatus{Success: false, Message: "workflow integration is not configured"}
	}

	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/health")
	if err != nil {
		if isConnectionRefused(err) {
			return ConnectionStatus{Success: false, Message: fmt.Sprintf("connection refused by %s - is the workflow server running?", c.baseURL)}
		}
		return ConnectionStatus{Success: false, Message: fmt.Sprintf("failed to reach workflow server: %v", err)}
	}
	if resp.IsError() {
		return ConnectionStatus{Success: false, Message: fmt.Sprintf("workflow server returned status %d", resp.StatusCode())}
	}
	return ConnectionStatus{Success: true, Message: "connected"}
}

// ListDeployments fetches all deployments, best-effort. A disabled or
// unreachable integration yields an empty list, never an error.
func (c *Client) ListDeployments(ctx context.Context) []Deployment {
	if !c.Enabled() {
		return []Deployment{}
	}

	var deployments []Deployment
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{}).
		SetResult(&deployments).
		Post(c.baseURL + "/deployments/filter")
	if err != nil {
		c.logger.Printf("Error fetching deployments: %v", err)
		return []Deployment{}
	}
	if resp.IsError() {
		c.logger.Printf("Deployment listing returned status %d: %s", resp.StatusCode(), resp.String())
		return []Deployment{}
	}
	return deployments
}

// TriggerRun starts a run of the given deployment and returns the new run
// id. An empty id (with the error logged) signals failure to the caller.
func (c *Client) TriggerRun(ctx context.Context, deploymentID string, parameters map[string]interface{}) (string, error) {
	if !c.Enabled() {
		return "", errors.New("workflow integration is not configured")
	}
	if parameters == nil {
		parameters = map[string]interface{}{}
	}

	var result struct {
		ID string `json:"id"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"parameters": parameters}).
		SetResult(&result).
		Post(fmt.Sprintf("%s/deployments/%s/create_flow_run", c.baseURL, deploymentID))
	if err != nil {
		c.logger.Printf("Error triggering deployment %s: %v", deploymentID, err)
		return "", fmt.Errorf("failed to trigger deployment %s: %w", deploymentID, err)
	}
	if resp.IsError() {
		c.logger.Printf("Trigger for deployment %s returned status %d: %s", deploymentID, resp.StatusCode(), resp.String())
		return "", fmt.Errorf("deployment trigger returned status %d", resp.StatusCode())
	}
	return result.ID, nil
}

// GetBatchStates looks up the current state of multiple runs at once.
// Invalid run ids are logged and skipped individually; an unreachable
// orchestrator yields an empty map.
func (c *Client) GetBatchStates(ctx context.Context, runIDs []string) map[string]string {
	states := make(map[string]string)
	if !c.Enabled() {
		return states
	}

	validIDs := make([]string, 0, len(runIDs))
	for _, id := range runIDs {
		if _, err := uuid.Parse(id); err != nil {
			c.logger.Printf("Skipping invalid run id %q: %v", id, err)
			continue
		}
		validIDs = append(validIDs, id)
	}
	if len(validIDs) == 0 {
		return states
	}

	var runs []struct {
		ID    string `json:"id"`
		State struct {
			Name string `json:"name"`
		} `json:"state"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"flow_runs": map[string]interface{}{
				"id": map[string]interface{}{"any_": validIDs},
			},
		}).
		SetResult(&runs).
		Post(c.baseURL + "/flow_runs/filter")
	if err != nil {
		c.logger.Printf("Error fetching flow run states: %v", err)
		return states
	}
	if resp.IsError() {
		c.logger.Printf("Flow run state lookup returned status %d: %s", resp.StatusCode(), resp.String())
		return states
	}

	for _, run := range runs {
		states[run.ID] = run.State.Name
	}
	return states
}

// RunUIURL returns the orchestrator UI page for a run, for display links.
func (c *Client) RunUIURL(runID string) string {
	return fmt.Sprintf("%s/flow-runs/flow-run/%s", c.uiURL, runID)
}

func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused")
}
