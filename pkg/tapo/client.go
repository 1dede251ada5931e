package tapo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vegobolt/vegobolt-backend/pkg/config"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

var (
	errDeviceIPRequired    = errors.New("tapo device ip is required")
	errCredentialsRequired = errors.New("tapo credentials are required")
	errLoggerRequired      = errors.New("tapo logger is required")
)

// Device is the smart plug surface the pump service depends on.
type Device interface {
	IsOn(ctx context.Context) (bool, error)
	SetState(ctx context.Context, on bool) error
	DeviceInfo(ctx context.Context) (*DeviceInfo, error)
	EnergyUsage(ctx context.Context) (*EnergyUsage, error)
}

// DeviceInfo mirrors the relevant fields of the plug's get_device_info response.
type DeviceInfo struct {
	DeviceID string `json:"device_id"`
	Model    string `json:"model"`
	DeviceOn bool   `json:"device_on"`
	Overheat bool   `json:"overheated"`
	OnTime   int64  `json:"on_time"`
}

// EnergyUsage mirrors the plug's get_energy_usage response.
type EnergyUsage struct {
	TodayRuntime  int64 `json:"today_runtime"`
	MonthRuntime  int64 `json:"month_runtime"`
	TodayEnergy   int64 `json:"today_energy"`
	MonthEnergy   int64 `json:"month_energy"`
	CurrentPowerW int64 `json:"current_power"`
}

// Client speaks the plug's local JSON API. The session token is obtained
// lazily on the first call and refreshed when the device rejects it.
type Client struct {
	cfg    config.TapoConfig
	http   *http.Client
	logger *logger.Logger

	mu    sync.Mutex
	token string
}

// NewClient validates the configuration and returns a lazy-connecting client.
func NewClient(cfg config.TapoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if strings.TrimSpace(cfg.DeviceIP) == "" {
		return nil, errDeviceIPRequired
	}
	if cfg.Email == "" || cfg.Password == "" {
		return nil, errCredentialsRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logg,
	}, nil
}

type request struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ErrorCode int             `json:"error_code"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// IsOn reports the relay position.
func (c *Client) IsOn(ctx context.Context) (bool, error) {
	info, err := c.DeviceInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.DeviceOn, nil
}

// SetState drives the relay to the requested position.
func (c *Client) SetState(ctx context.Context, on bool) error {
	_, err := c.call(ctx, request{
		Method: "set_device_info",
		Params: map[string]any{"device_on": on},
	})
	return err
}

// DeviceInfo fetches the current device state.
func (c *Client) DeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	raw, err := c.call(ctx, request{Method: "get_device_info"})
	if err != nil {
		return nil, err
	}
	var info DeviceInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding device info")
	}
	return &info, nil
}

// EnergyUsage fetches the plug's consumption counters.
func (c *Client) EnergyUsage(ctx context.Context) (*EnergyUsage, error) {
	raw, err := c.call(ctx, request{Method: "get_energy_usage"})
	if err != nil {
		return nil, err
	}
	var usage EnergyUsage
	if err := json.Unmarshal(raw, &usage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding energy usage")
	}
	return &usage, nil
}

func (c *Client) call(ctx context.Context, req request) (json.RawMessage, error) {
	token, err := c.session(ctx, false)
	if err != nil {
		return nil, err
	}

	raw, retry, err := c.exchange(ctx, token, req)
	if retry {
		// device dropped the session, re-authenticate once
		token, err = c.session(ctx, true)
		if err != nil {
			return nil, err
		}
		raw, _, err = c.exchange(ctx, token, req)
	}
	return raw, err
}

// exchange performs one request against the device. The second return value
// reports a stale session token.
func (c *Client) exchange(ctx context.Context, token string, req request) (json.RawMessage, bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding device request")
	}

	url := fmt.Sprintf("http://%s/app?token=%s", c.cfg.DeviceIP, token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building device request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "smart plug unreachable")
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding device response")
	}
	if decoded.ErrorCode != 0 {
		if decoded.ErrorCode == -40401 { // session expired
			return nil, true, pkgerrors.New(pkgerrors.CodeDependency, "smart plug session expired")
		}
		return nil, false, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("smart plug returned error %d for %s", decoded.ErrorCode, req.Method))
	}
	return decoded.Result, false, nil
}

func (c *Client) session(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	payload := request{
		Method: "login_device",
		Params: map[string]string{
			"username": base64.StdEncoding.EncodeToString([]byte(c.cfg.Email)),
			"password": base64.StdEncoding.EncodeToString([]byte(c.cfg.Password)),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding login request")
	}

	url := fmt.Sprintf("http://%s/app", c.cfg.DeviceIP)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building login request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "smart plug unreachable")
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding login response")
	}
	if decoded.ErrorCode != 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("smart plug login failed with error %d", decoded.ErrorCode))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decoded.Result, &result); err != nil || result.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "smart plug login returned no token")
	}

	c.token = result.Token
	c.logger.Info(ctx, "smart plug session established")
	return c.token, nil
}
