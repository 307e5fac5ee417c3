package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/profile"
)

// ErrorKind classifies remote-narrative failures. Every kind triggers
// the same REMOTE→LOCAL fallback; the kind is kept for logging and the
// degraded marker on the result.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindAuth        ErrorKind = "auth"
	KindQuota       ErrorKind = "quota"
	KindMalformed   ErrorKind = "malformed"
	KindUnreachable ErrorKind = "unreachable"
)

// RemoteError is a typed remote-narrative failure. Non-fatal by policy:
// callers fall back to LOCAL and log it, never surface it as a run
// failure.
type RemoteError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote narrative %s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote narrative %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("remote narrative %s", e.Kind)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Request carries everything the remote collaborator needs.
type Request struct {
	Profile *profile.DatasetProfile
	KPIs    *kpi.Set
	Tone    string // optional; empty means the default executive tone
}

// Client calls an OpenAI-compatible chat-completions endpoint and
// parses the model output into a Narrative. One request per run: the
// fallback policy forbids intra-run retries.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	company    string
}

// NewClient builds a remote client. baseURL defaults to the OpenAI API;
// timeout bounds the whole request and is mandatory per the resource
// model (a hung call must degrade, not block the run).
func NewClient(apiKey, model, baseURL, company string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		company:    company,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// narrativePayload is the JSON shape the model is instructed to return.
type narrativePayload struct {
	Summary         string   `json:"summary"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	Risks           []string `json:"risks"`
}

// Generate performs the single REMOTE attempt. Any failure comes back
// as a *RemoteError; the caller decides the fallback.
func (c *Client) Generate(ctx context.Context, req Request) (*Narrative, error) {
	if c.apiKey == "" {
		return nil, &RemoteError{Kind: KindAuth, Message: "api key is not configured"}
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt(req.Tone)},
			{Role: "user", Content: buildPrompt(req)},
		},
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, &RemoteError{Kind: KindMalformed, Err: fmt.Errorf("marshal request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteError{Kind: KindUnreachable, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RemoteError{Kind: KindMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &RemoteError{Kind: KindMalformed, Message: "response has no choices"}
	}
	return parseNarrative(out.Choices[0].Message.Content)
}

func (c *Client) systemPrompt(tone string) string {
	company := c.company
	if company == "" {
		company = "the analytics team"
	}
	if tone == "" {
		tone = "professional, executive-level"
	}
	return fmt.Sprintf("You are a senior business analyst at %s, specialized in data-driven strategic insights. Tone: %s. Respond with a single JSON object with keys summary (string), findings, recommendations, risks (arrays of strings). No prose outside the JSON.", company, tone)
}

// buildPrompt renders the profile summary and KPI set into the user
// message. KPIs iterate in sorted order so the request is reproducible.
func buildPrompt(req Request) string {
	var b strings.Builder
	p := req.Profile
	fmt.Fprintf(&b, "Analyze the following dataset and report executive-level business intelligence.\n\n")
	fmt.Fprintf(&b, "DATASET OVERVIEW:\n")
	fmt.Fprintf(&b, "- Type: %s\n- Records: %d\n- Columns: %d\n", p.DatasetType, p.Rows, p.Cols)
	fmt.Fprintf(&b, "- Numeric Features: %d\n- Categorical Features: %d\n", p.NumericColumns, p.CategoricalColumns)
	fmt.Fprintf(&b, "\nDATA QUALITY:\n- Completeness: %.2f%%\n- Total Missing Values: %d\n- Columns with Missing Data: %d\n",
		p.Completeness(), p.TotalMissing, p.ColumnsWithMissing)
	b.WriteString("\nKEY PERFORMANCE INDICATORS:\n")
	for _, name := range sortedMetricNames(req.KPIs) {
		fmt.Fprintf(&b, "- %s: %s\n", name, formatMetric(req.KPIs.Metrics[name]))
	}
	b.WriteString("\nProvide 3-5 sentences of summary, 4-6 findings, 4-6 recommendations, 3-4 risks.")
	return b.String()
}

// parseNarrative extracts the JSON object from the model output.
// Models occasionally wrap JSON in code fences; tolerate that, nothing
// looser.
func parseNarrative(content string) (*Narrative, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if i := strings.LastIndex(trimmed, "```"); i >= 0 {
			trimmed = trimmed[:i]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	var p narrativePayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, &RemoteError{Kind: KindMalformed, Err: fmt.Errorf("parse narrative: %w", err)}
	}
	if p.Summary == "" || len(p.Findings) == 0 || len(p.Recommendations) == 0 || len(p.Risks) == 0 {
		return nil, &RemoteError{Kind: KindMalformed, Message: "narrative is missing required sections"}
	}
	return &Narrative{
		Method:          MethodRemote,
		Summary:         p.Summary,
		Findings:        p.Findings,
		Recommendations: p.Recommendations,
		Risks:           p.Risks,
	}, nil
}

func classifyTransportErr(err error) *RemoteError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RemoteError{Kind: KindTimeout, Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &RemoteError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &RemoteError{Kind: KindTimeout, Err: err}
	}
	return &RemoteError{Kind: KindUnreachable, Err: err}
}

func classifyStatus(resp *http.Response) *RemoteError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	msg := extractErrMessage(body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &RemoteError{Kind: KindAuth, StatusCode: resp.StatusCode, Message: msg}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RemoteError{Kind: KindQuota, StatusCode: resp.StatusCode, Message: msg}
	case containsAnyFold(msg, "quota", "billing", "limit exceeded"):
		return &RemoteError{Kind: KindQuota, StatusCode: resp.StatusCode, Message: msg}
	default:
		return &RemoteError{Kind: KindUnreachable, StatusCode: resp.StatusCode, Message: msg}
	}
}

func extractErrMessage(body []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return strings.TrimSpace(string(body))
	}
	if v, ok := raw["error"].(map[string]any); ok {
		if m, ok := v["message"].(string); ok {
			return m
		}
	}
	if m, ok := raw["message"].(string); ok {
		return m
	}
	return ""
}

func containsAnyFold(s string, subs ...string) bool {
	ls := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(ls, sub) {
			return true
		}
	}
	return false
}

func sortedMetricNames(set *kpi.Set) []string {
	if set == nil {
		return nil
	}
	names := make([]string, 0, len(set.Metrics))
	for name := range set.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatMetric(v any) string {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprintf("%v", v)
	}
}
