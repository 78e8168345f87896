package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestResolver(primary, secondary string, echoURLs []string) *Resolver {
	return NewResolver(Config{
		PrimaryURL:      primary,
		SecondaryURL:    secondary,
		EchoURLs:        echoURLs,
		ProviderTimeout: 2 * time.Second,
		EchoTimeout:     time.Second,
	})
}

func TestLocate_PrimarySuccess(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin","regionName":"Berlin","lat":52.52,"lon":13.405}`))
	}))
	defer primary.Close()

	r := newTestResolver(primary.URL, "http://127.0.0.1:1", nil)

	loc := r.Locate(context.Background(), "93.184.216.34")
	if loc.Country != "Germany" {
		t.Errorf("Country = %q, want %q", loc.Country, "Germany")
	}
	if loc.City != "Berlin" {
		t.Errorf("City = %q, want %q", loc.City, "Berlin")
	}
	if loc.Latitude == nil || *loc.Latitude != 52.52 {
		t.Errorf("Latitude = %v, want 52.52", loc.Latitude)
	}
}

func TestLocate_RateLimitedPrimaryFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"quota exceeded"}`))
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"country":"France","city":"Paris","region":"Ile-de-France","latitude":48.85,"longitude":2.35}`))
	}))
	defer secondary.Close()

	r := newTestResolver(primary.URL, secondary.URL, nil)

	loc := r.Locate(context.Background(), "93.184.216.34")
	if loc.Country != "France" {
		t.Errorf("Country = %q, want %q", loc.Country, "France")
	}
}

func TestLocate_TransportErrorFallsBack(t *testing.T) {
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"country":"Japan","city":"Tokyo","region":"Tokyo"}`))
	}))
	defer secondary.Close()

	// Primary points at a closed port.
	r := newTestResolver("http://127.0.0.1:1", secondary.URL, nil)

	loc := r.Locate(context.Background(), "93.184.216.34")
	if loc.Country != "Japan" {
		t.Errorf("Country = %q, want %q", loc.Country, "Japan")
	}
	if loc.Latitude != nil {
		t.Errorf("Latitude = %v, want nil for omitted field", loc.Latitude)
	}
}

func TestLocate_AllProvidersFailReturnsUnknown(t *testing.T) {
	r := newTestResolver("http://127.0.0.1:1", "http://127.0.0.1:1", nil)

	loc := r.Locate(context.Background(), "93.184.216.34")
	if !loc.IsUnknown() {
		t.Errorf("Locate() = %+v, want Unknown sentinel", loc)
	}
	if loc.Country != UnknownValue {
		t.Errorf("Country = %q, want %q", loc.Country, UnknownValue)
	}
}

func TestLocate_PrivateIPUsesEgressDiscovery(t *testing.T) {
	var lookedUp atomic.Value

	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("93.184.216.34\n"))
	}))
	defer echo.Close()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookedUp.Store(r.URL.Path)
		w.Write([]byte(`{"status":"success","country":"United States","city":"Norwell","regionName":"Massachusetts"}`))
	}))
	defer primary.Close()

	r := newTestResolver(primary.URL, "http://127.0.0.1:1", []string{echo.URL})

	for _, ip := range []string{"", "127.0.0.1", "192.168.1.50"} {
		loc := r.Locate(context.Background(), ip)
		if loc.IsUnknown() {
			t.Errorf("Locate(%q) returned Unknown with working echo and provider", ip)
		}
		if got := lookedUp.Load(); got != "/93.184.216.34" {
			t.Errorf("Locate(%q) looked up %v, want /93.184.216.34", ip, got)
		}
	}
}

func TestLocate_EchoChainFirstSuccessWins(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.9"))
	}))
	defer good.Close()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Australia"}`))
	}))
	defer primary.Close()

	// First echo is dead, second replies garbage, third works.
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an ip</html>"))
	}))
	defer garbage.Close()

	r := newTestResolver(primary.URL, "http://127.0.0.1:1",
		[]string{"http://127.0.0.1:1", garbage.URL, good.URL})

	loc := r.Locate(context.Background(), "10.0.0.5")
	if loc.Country != "Australia" {
		t.Errorf("Country = %q, want %q", loc.Country, "Australia")
	}
}

func TestLocate_AllEchoesFailReturnsUnknown(t *testing.T) {
	r := newTestResolver("http://127.0.0.1:1", "http://127.0.0.1:1", []string{"http://127.0.0.1:1"})

	loc := r.Locate(context.Background(), "127.0.0.1")
	if !loc.IsUnknown() {
		t.Errorf("Locate() = %+v, want Unknown sentinel", loc)
	}
}

func TestLocate_ProviderTimeoutBounded(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"status":"success","country":"Nowhere"}`))
	}))
	defer slow.Close()

	r := NewResolver(Config{
		PrimaryURL:      slow.URL,
		SecondaryURL:    slow.URL,
		ProviderTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	loc := r.Locate(context.Background(), "93.184.216.34")
	elapsed := time.Since(start)

	if !loc.IsUnknown() {
		t.Errorf("Locate() = %+v, want Unknown sentinel after timeouts", loc)
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("Locate() took %v, expected both provider timeouts to bound it", elapsed)
	}
}

func TestUnknownSentinel(t *testing.T) {
	if !Unknown().IsUnknown() {
		t.Error("Unknown().IsUnknown() = false")
	}

	loc := Location{Country: "Germany"}
	if loc.IsUnknown() {
		t.Error("a real location must not equal the sentinel")
	}
}
