package scans

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/geoip"
	"qrlinks/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore collects inserted scans and can be told to fail.
type fakeStore struct {
	mu       sync.Mutex
	scans    []*models.Scan
	failures int // fail this many inserts before succeeding
}

func (s *fakeStore) InsertScan(ctx context.Context, scan *models.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("insert failed")
	}
	s.scans = append(s.scans, scan)
	return nil
}

func (s *fakeStore) inserted() []*models.Scan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Scan(nil), s.scans...)
}

// fakeLocator returns a fixed location, optionally after a delay.
type fakeLocator struct {
	location geoip.Location
	delay    time.Duration
}

func (l *fakeLocator) Locate(ctx context.Context, ip string) geoip.Location {
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
		}
	}
	return l.location
}

func berlin() geoip.Location {
	lat, lon := 52.52, 13.405
	return geoip.Location{Country: "Germany", City: "Berlin", Region: "Berlin", Latitude: &lat, Longitude: &lon}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRecorder_PersistsEnrichedScan(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, &fakeLocator{location: berlin()}, discardLogger(), 1)
	recorder.Start()
	defer recorder.Stop()

	codeID := uuid.New()
	recorder.Record(Event{QRCodeID: codeID, IP: "93.184.216.34", UserAgent: "curl/8.0"})

	waitFor(t, 2*time.Second, func() bool { return len(store.inserted()) == 1 })

	scan := store.inserted()[0]
	if scan.QRCodeID != codeID {
		t.Errorf("QRCodeID = %s, want %s", scan.QRCodeID, codeID)
	}
	if scan.Country == nil || *scan.Country != "Germany" {
		t.Errorf("Country = %v, want Germany", scan.Country)
	}
	if scan.IP == nil || *scan.IP != "93.184.216.34" {
		t.Errorf("IP = %v, want 93.184.216.34", scan.IP)
	}
	if scan.Latitude == nil || *scan.Latitude != 52.52 {
		t.Errorf("Latitude = %v, want 52.52", scan.Latitude)
	}
}

func TestRecorder_EmptyFieldsStoredAsNull(t *testing.T) {
	store := &fakeStore{}
	recorder := NewRecorder(store, &fakeLocator{location: geoip.Unknown()}, discardLogger(), 1)
	recorder.Start()
	defer recorder.Stop()

	recorder.Record(Event{QRCodeID: uuid.New()})

	waitFor(t, 2*time.Second, func() bool { return len(store.inserted()) == 1 })

	scan := store.inserted()[0]
	if scan.IP != nil {
		t.Errorf("IP = %v, want nil", scan.IP)
	}
	if scan.UserAgent != nil {
		t.Errorf("UserAgent = %v, want nil", scan.UserAgent)
	}
	if scan.Country == nil || *scan.Country != geoip.UnknownValue {
		t.Errorf("Country = %v, want the Unknown sentinel", scan.Country)
	}
}

func TestRecorder_RetriesWithMinimalRecord(t *testing.T) {
	store := &fakeStore{failures: 1}
	recorder := NewRecorder(store, &fakeLocator{location: berlin()}, discardLogger(), 1)
	recorder.Start()
	defer recorder.Stop()

	recorder.Record(Event{QRCodeID: uuid.New(), IP: "93.184.216.34", UserAgent: "curl/8.0"})

	waitFor(t, 2*time.Second, func() bool { return len(store.inserted()) == 1 })

	scan := store.inserted()[0]
	if scan.Country != nil {
		t.Errorf("retry record Country = %v, want nil (minimal record)", scan.Country)
	}
	if scan.IP == nil || *scan.IP != "93.184.216.34" {
		t.Errorf("retry record IP = %v, want 93.184.216.34", scan.IP)
	}
}

func TestRecorder_SecondFailureDropsSilently(t *testing.T) {
	store := &fakeStore{failures: 2}
	recorder := NewRecorder(store, &fakeLocator{location: berlin()}, discardLogger(), 1)
	recorder.Start()

	recorder.Record(Event{QRCodeID: uuid.New()})

	// Give the worker time to run both attempts, then stop cleanly.
	time.Sleep(100 * time.Millisecond)
	recorder.Stop()

	if got := len(store.inserted()); got != 0 {
		t.Errorf("inserted %d scans, want 0 after both attempts failed", got)
	}
}

func TestRecord_DoesNotBlockOnSlowGeolocation(t *testing.T) {
	store := &fakeStore{}
	slow := &fakeLocator{location: berlin(), delay: 2 * time.Second}
	recorder := NewRecorder(store, slow, discardLogger(), 1)
	recorder.Start()
	defer recorder.Stop()

	start := time.Now()
	for i := 0; i < 10; i++ {
		recorder.Record(Event{QRCodeID: uuid.New()})
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Record() took %v for 10 events, must not wait on geolocation", elapsed)
	}
}

func TestRecord_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	store := &fakeStore{}
	slow := &fakeLocator{location: berlin(), delay: time.Minute}
	recorder := &Recorder{
		store:   store,
		locator: slow,
		logger:  discardLogger(),
		events:  make(chan Event, 1),
		workers: 1,
	}
	recorder.Start()
	defer recorder.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			recorder.Record(Event{QRCodeID: uuid.New()})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record() blocked on a full buffer")
	}
}
