package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"a3kd/internal/jsonutil"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// CTJSON is the content type of every request.
	CTJSON = "application/json"

	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	healthEndpoint      = "/health"
	teachersEndpoint    = "/models/teachers"
	studentsEndpoint    = "/models/students"
	experimentsEndpoint = "/experiments"

	requestIDHeader = "X-Request-Id"
)

// Config configures an HTTPClient.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	TLSVerification bool
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for cfg.BaseURL. Outgoing requests are
// instrumented with OpenTelemetry.
func NewHTTPClient(cfg Config) *HTTPClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.TLSVerification,
		},
	}
	return &HTTPClient{
		baseURL: base,
		client: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
		},
	}
}

// BaseURL returns the service URL requests are sent to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Health(ctx context.Context) (HealthStatus, error) {
	const op = "health"
	body, err := c.do(ctx, op, http.MethodGet, healthEndpoint, nil)
	if err != nil {
		return HealthStatus{}, err
	}
	var h HealthStatus
	if err := jsonutil.UnmarshalWithContext(body, &h, op); err != nil {
		return HealthStatus{}, &DecodeError{Op: op, Err: err}
	}
	if h.Status == "" {
		h.Status = "ok"
	}
	return h, nil
}

func (c *HTTPClient) ListTeachers(ctx context.Context) ([]ModelOption, error) {
	return listModels(ctx, c, "list teachers", teachersEndpoint)
}

func (c *HTTPClient) ListStudents(ctx context.Context) ([]ModelOption, error) {
	return listModels(ctx, c, "list students", studentsEndpoint)
}

func listModels(ctx context.Context, c *HTTPClient, op, path string) ([]ModelOption, error) {
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	models, err := jsonutil.UnmarshalArrayAllowEmpty[ModelOption](body, op)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return models, nil
}

func (c *HTTPClient) ListExperiments(ctx context.Context) ([]ExperimentSummary, error) {
	const op = "list experiments"
	body, err := c.do(ctx, op, http.MethodGet, experimentsEndpoint, nil)
	if err != nil {
		return nil, err
	}
	exps, err := jsonutil.UnmarshalArrayAllowEmpty[ExperimentSummary](body, op)
	if err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return exps, nil
}

func (c *HTTPClient) CreateExperiment(ctx context.Context, cfg ExperimentConfig) (CreateResult, error) {
	const op = "create experiment"
	if err := cfg.Validate(); err != nil {
		return CreateResult{}, err
	}
	cfg.Name = strings.TrimSpace(cfg.Name)
	body, err := c.do(ctx, op, http.MethodPost, experimentsEndpoint, cfg)
	if err != nil {
		return CreateResult{}, err
	}
	res, err := jsonutil.Unmarshal[CreateResult](body, op)
	if err != nil {
		return CreateResult{}, &DecodeError{Op: op, Err: err}
	}
	return res, nil
}

func (c *HTTPClient) GetExperiment(ctx context.Context, id string) (ExperimentDetail, error) {
	const op = "get experiment"
	body, err := c.do(ctx, op, http.MethodGet, experimentPath(id, ""), nil)
	if err != nil {
		return ExperimentDetail{}, err
	}
	d, err := jsonutil.Unmarshal[ExperimentDetail](body, op)
	if err != nil {
		return ExperimentDetail{}, &DecodeError{Op: op, Err: err}
	}
	return d, nil
}

func (c *HTTPClient) GetMetrics(ctx context.Context, id string) (MetricSeries, error) {
	const op = "get metrics"
	body, err := c.do(ctx, op, http.MethodGet, experimentPath(id, "/metrics"), nil)
	if err != nil {
		return MetricSeries{}, err
	}
	s, err := jsonutil.Unmarshal[MetricSeries](body, op)
	if err != nil {
		return MetricSeries{}, &DecodeError{Op: op, Err: err}
	}
	return s, nil
}

func (c *HTTPClient) GetBestAssistant(ctx context.Context, id string) (Optional[AssistantResult], error) {
	const op = "get best assistant"
	body, err := c.do(ctx, op, http.MethodGet, experimentPath(id, "/best-assistant"), nil)
	if err != nil {
		if IsNotFound(err) {
			return Absent[AssistantResult](), nil
		}
		return Absent[AssistantResult](), err
	}
	if jsonutil.IsNull(body) {
		return Absent[AssistantResult](), nil
	}
	a, err := jsonutil.Unmarshal[AssistantResult](body, op)
	if err != nil {
		return Absent[AssistantResult](), &DecodeError{Op: op, Err: err}
	}
	return Present(a), nil
}

func experimentPath(id, suffix string) string {
	return experimentsEndpoint + "/" + url.PathEscape(id) + suffix
}

// do performs one request and returns the body of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", CTJSON)
	req.Header.Set("Accept", CTJSON)
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response code: %d", resp.StatusCode),
		}
	}
	return body, nil
}
