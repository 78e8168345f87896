// Package geoip resolves client IP addresses to coarse locations using
// public geolocation providers, with fallback and bounded latency. It never
// returns an error: every failure path collapses to the Unknown sentinel so
// that a third-party outage can never be the reason a scan fails to record.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"qrlinks/internal/validation"
)

// UnknownValue is the sentinel used when no provider produced any answer.
// It is distinct from a field a provider simply omitted, which stays empty.
const UnknownValue = "Unknown"

// Location is the normalized geolocation record.
type Location struct {
	Country   string
	City      string
	Region    string
	Latitude  *float64
	Longitude *float64
}

// Unknown returns the sentinel location.
func Unknown() Location {
	return Location{Country: UnknownValue, City: UnknownValue, Region: UnknownValue}
}

// IsUnknown reports whether l is the sentinel location.
func (l Location) IsUnknown() bool {
	return l.Country == UnknownValue && l.City == UnknownValue && l.Region == UnknownValue &&
		l.Latitude == nil && l.Longitude == nil
}

// Config holds resolver settings. Zero values fall back to defaults.
type Config struct {
	PrimaryURL      string   // e.g. "http://ip-api.com/json"
	SecondaryURL    string   // e.g. "https://ipwho.is"
	EchoURLs        []string // public "what is my IP" services
	ProviderTimeout time.Duration
	EchoTimeout     time.Duration
	Client          *http.Client
	Logger          *slog.Logger
}

// Resolver maps IP addresses to locations via a primary/secondary provider
// chain. Private and loopback addresses are substituted with the deployment's
// discovered public egress IP before lookup.
type Resolver struct {
	client          *http.Client
	primaryURL      string
	secondaryURL    string
	echoURLs        []string
	providerTimeout time.Duration
	echoTimeout     time.Duration
	logger          *slog.Logger
}

// NewResolver creates a resolver with the given configuration.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		client:          cfg.Client,
		primaryURL:      cfg.PrimaryURL,
		secondaryURL:    cfg.SecondaryURL,
		echoURLs:        cfg.EchoURLs,
		providerTimeout: cfg.ProviderTimeout,
		echoTimeout:     cfg.EchoTimeout,
		logger:          cfg.Logger,
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.primaryURL == "" {
		r.primaryURL = "http://ip-api.com/json"
	}
	if r.secondaryURL == "" {
		r.secondaryURL = "https://ipwho.is"
	}
	if len(r.echoURLs) == 0 {
		r.echoURLs = []string{
			"https://api.ipify.org",
			"https://ifconfig.me/ip",
			"https://icanhazip.com",
		}
	}
	if r.providerTimeout <= 0 {
		r.providerTimeout = 4 * time.Second
	}
	if r.echoTimeout <= 0 {
		r.echoTimeout = 2 * time.Second
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Locate resolves ip to a location. Non-routable addresses (empty, loopback,
// private, unparseable) are replaced with the discovered public egress IP.
// All failures return the Unknown sentinel, never an error.
func (r *Resolver) Locate(ctx context.Context, ip string) Location {
	if !validation.IsRoutableAddr(ip) {
		egress, ok := r.publicIP(ctx)
		if !ok {
			r.logger.Debug("geoip: egress discovery failed, no lookup possible", "ip", ip)
			return Unknown()
		}
		ip = egress
	}

	loc, err := r.lookupPrimary(ctx, ip)
	if err == nil {
		return loc
	}
	r.logger.Debug("geoip: primary provider failed", "ip", ip, "error", err)

	loc, err = r.lookupSecondary(ctx, ip)
	if err == nil {
		return loc
	}
	r.logger.Debug("geoip: secondary provider failed", "ip", ip, "error", err)

	return Unknown()
}

// primaryPayload is the ip-api.com response shape.
type primaryPayload struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Country string   `json:"country"`
	City    string   `json:"city"`
	Region  string   `json:"regionName"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (r *Resolver) lookupPrimary(ctx context.Context, ip string) (Location, error) {
	body, err := r.get(ctx, r.primaryURL+"/"+ip, r.providerTimeout)
	if err != nil {
		return Location{}, err
	}

	var payload primaryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, fmt.Errorf("decode response: %w", err)
	}
	// Rate limits and bad queries come back as a semantic failure payload.
	if payload.Status != "success" {
		return Location{}, fmt.Errorf("provider error: %s", payload.Message)
	}

	return Location{
		Country:   payload.Country,
		City:      payload.City,
		Region:    payload.Region,
		Latitude:  payload.Lat,
		Longitude: payload.Lon,
	}, nil
}

// secondaryPayload is the ipwho.is response shape.
type secondaryPayload struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Country   string   `json:"country"`
	City      string   `json:"city"`
	Region    string   `json:"region"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *Resolver) lookupSecondary(ctx context.Context, ip string) (Location, error) {
	body, err := r.get(ctx, r.secondaryURL+"/"+ip, r.providerTimeout)
	if err != nil {
		return Location{}, err
	}

	var payload secondaryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, fmt.Errorf("decode response: %w", err)
	}
	if !payload.Success {
		return Location{}, fmt.Errorf("provider error: %s", payload.Message)
	}

	return Location{
		Country:   payload.Country,
		City:      payload.City,
		Region:    payload.Region,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}, nil
}

// publicIP discovers the deployment's public egress address by asking plain
// text IP echo services in sequence. First success wins.
func (r *Resolver) publicIP(ctx context.Context) (string, bool) {
	for _, echoURL := range r.echoURLs {
		body, err := r.get(ctx, echoURL, r.echoTimeout)
		if err != nil {
			r.logger.Debug("geoip: ip echo attempt failed", "url", echoURL, "error", err)
			continue
		}
		addr := strings.TrimSpace(string(body))
		if validation.IsRoutableAddr(addr) {
			return addr, true
		}
	}
	return "", false
}

func (r *Resolver) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 64*1024))
}
