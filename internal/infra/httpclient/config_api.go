package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/config"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/metrics"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
)

const (
	configTypeTest   = "TestConfig"
	configurationsEP = "/api/v1/configurations"
)

// UpstreamError describes a failed call to an external service. StatusCode
// is zero when no response was received.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("Failed to %s: %d %s", e.Op, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type configMetadata struct {
	Type      string `json:"type"`
	TargetKey string `json:"target_key"`
}

type createConfigReq struct {
	Metadata configMetadata      `json:"metadata"`
	Content  model.ConfigContent `json:"content"`
}

type updateConfigReq struct {
	Content model.ConfigContent `json:"content"`
}

type createConfigResp struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ConfigAPIClient talks to the external Configuration API holding the
// authoritative test configuration.
type ConfigAPIClient struct {
	baseURL string
	token   string
	hc      *http.Client
	metrics *metrics.Metrics
}

func NewConfigAPIClient(cfg *config.Config, m *metrics.Metrics) *ConfigAPIClient {
	return &ConfigAPIClient{
		baseURL: strings.TrimRight(cfg.ConfigAPI.URL, "/"),
		token:   cfg.SDK.Token,
		hc:      &http.Client{Timeout: cfg.ConfigAPI.Timeout},
		metrics: m,
	}
}

// HTTPClient exposes the underlying client so tests can intercept it.
func (c *ConfigAPIClient) HTTPClient() *http.Client { return c.hc }

// Create registers a configuration keyed by the test id and returns its id.
func (c *ConfigAPIClient) Create(ctx context.Context, content model.ConfigContent) (string, error) {
	body := createConfigReq{
		Metadata: configMetadata{Type: configTypeTest, TargetKey: content.TestID},
		Content:  content,
	}

	raw, err := c.do(ctx, "create configuration", http.MethodPost, configurationsEP, body)
	if err != nil {
		return "", err
	}

	var resp createConfigResp
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", &UpstreamError{Op: "create configuration", Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Data.ID == "" {
		return "", &UpstreamError{Op: "create configuration", Err: fmt.Errorf("response carries no configuration id")}
	}
	return resp.Data.ID, nil
}

func (c *ConfigAPIClient) Update(ctx context.Context, configID string, content model.ConfigContent) error {
	_, err := c.do(ctx, "update configuration", http.MethodPut,
		configurationsEP+"/"+url.PathEscape(configID), updateConfigReq{Content: content})
	return err
}

func (c *ConfigAPIClient) Delete(ctx context.Context, configID string) error {
	_, err := c.do(ctx, "delete configuration", http.MethodDelete,
		configurationsEP+"/"+url.PathEscape(configID), nil)
	return err
}

func (c *ConfigAPIClient) do(ctx context.Context, op, method, path string, body any) (respBody []byte, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveDependency("config_api", op, err, time.Since(start)) }()

	var reader io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return raw, nil
}
