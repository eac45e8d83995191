package carrier

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Endpoint action names used in Settings.Endpoints.
const (
	ActionCalculateRate  = "calculate_rate"
	ActionCreateShipment = "create_shipment"
	ActionTrackShipment  = "track_shipment"
	ActionPing           = "ping"
)

// Settings is the typed per-tenant configuration of one carrier.
type Settings struct {
	BaseURL   string
	APIKey    string
	Endpoints map[string]string
	Timeout   time.Duration
	UseMock   bool

	// RequestsPerSecond limits outbound calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Validate checks the settings of a live (non-mock) carrier.
func (s Settings) Validate() error {
	if s.UseMock {
		return nil
	}
	var errs []error
	if s.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", s.BaseURL))
	}
	if strings.TrimSpace(s.APIKey) == "" {
		errs = append(errs, errors.New("api_key is required"))
	}
	for action, path := range s.Endpoints {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, fmt.Errorf("endpoint %s must start with /, got %q", action, path))
		}
	}
	if s.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if s.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second must not be negative"))
	}
	return errors.Join(errs...)
}

// Endpoint returns the configured path for action, or def.
func (s Settings) Endpoint(action, def string) string {
	if p, ok := s.Endpoints[action]; ok && p != "" {
		return p
	}
	return def
}

// URL joins the base URL with the path of action.
func (s Settings) URL(action, def string) string {
	return strings.TrimRight(s.BaseURL, "/") + s.Endpoint(action, def)
}
