package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	SymptomPredictor      = "symptomPredictorFlow"
	CyclePredictor        = "cyclePredictorFlow"
	RecoveryAdvisor       = "recommendRecoveryActionFlow"
	LabResultAnalyzer     = "labResultAnalyzerFlow"
	PcosSubtypeIdentifier = "pcosSubtypeIdentifierFlow"
	defaultTimeout        = 30 * time.Second
	maxErrorBodyBytes     = 512
)

var ErrNotConfigured = errors.New("ai flows endpoint is not configured")

// FlowError is returned when the flow server answers with a non-2xx status.
type FlowError struct {
	Flow   string
	Status int
	Body   string
}

func (err *FlowError) Error() string {
	return fmt.Sprintf("flow %s failed with status %d: %s", err.Flow, err.Status, err.Body)
}

// Client invokes named AI flows over HTTP. Each flow is served at
// POST {baseURL}/{flow} and wraps its input in {"data": ...} and its output in
// {"result": ...}. Output validation belongs to the flow server.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		timeout: timeout,
	}
}

type flowRequest struct {
	Data any `json:"data"`
}

type flowResponse struct {
	Result json.RawMessage `json:"result"`
}

func (client *Client) Invoke(ctx context.Context, flowName string, input any) (json.RawMessage, error) {
	if client == nil || client.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(flowRequest{Data: input})
	if err != nil {
		return nil, fmt.Errorf("encode %s input: %w", flowName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/"+flowName, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", flowName, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := client.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", flowName, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", flowName, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(payload))
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, &FlowError{Flow: flowName, Status: response.StatusCode, Body: snippet}
	}

	decoded := flowResponse{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", flowName, err)
	}
	if len(decoded.Result) == 0 {
		return nil, fmt.Errorf("decode %s response: missing result", flowName)
	}
	return decoded.Result, nil
}
