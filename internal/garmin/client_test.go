// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package garmin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.GarminConfig{
		BaseURL:           srv.URL,
		AccessToken:       "test-token",
		DisplayName:       "user-1234",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             100,
		PageSize:          2,
		DetailPageSize:    2,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func testWindow(days int) models.Window {
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return models.Window{Start: end.AddDate(0, 0, -(days - 1)), End: end}
}

func TestResolveToken(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()

	if tok, err := resolveToken(" direct ", dir, now); err != nil || tok != "direct" {
		t.Errorf("resolveToken(direct) = %q, %v", tok, err)
	}
	if _, err := resolveToken("", dir, now); !errors.Is(err, ErrNoToken) {
		t.Errorf("missing file error = %v, want ErrNoToken", err)
	}

	write := func(tok oauth2Token) {
		data, _ := json.Marshal(tok)
		if err := os.WriteFile(filepath.Join(dir, TokenFile), data, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write(oauth2Token{AccessToken: "from-file", ExpiresAt: now.Add(time.Hour).Unix()})
	if tok, err := resolveToken("", dir, now); err != nil || tok != "from-file" {
		t.Errorf("resolveToken(file) = %q, %v", tok, err)
	}

	write(oauth2Token{AccessToken: "stale", ExpiresAt: now.Add(-time.Hour).Unix()})
	if _, err := resolveToken("", dir, now); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("expired token error = %v", err)
	}
}

func TestFetchDayPaginatesByDate(t *testing.T) {
	t.Parallel()
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/wellness-service/wellness/dailySleepData/user-1234") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		date := r.URL.Query().Get("date")
		mu.Lock()
		seen = append(seen, date)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"dailySleepDTO": {"calendarDate": "` + date + `"}}`))
	})

	window := testWindow(3)
	var (
		cursor  string
		objects []transport.Object
	)
	for i := 0; i < 5; i++ {
		page, err := c.FetchPage(context.Background(), models.DomainSleep, window, cursor)
		if err != nil {
			t.Fatalf("FetchPage() error = %v", err)
		}
		objects = append(objects, page.Objects...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"2026-03-13", "2026-03-14", "2026-03-15"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("requested dates = %v, want %v", seen, want)
	}
	if len(objects) != 3 || objects[0].Day != "2026-03-13" {
		t.Errorf("objects = %+v", objects)
	}
}

func TestStatusClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		status    int
		header    map[string]string
		domain    models.Domain
		transient bool
		fatal     bool
		retry     time.Duration
	}{
		{"rate limited", http.StatusTooManyRequests, map[string]string{"Retry-After": "7"}, models.DomainHRV, true, false, 7 * time.Second},
		{"server error", http.StatusBadGateway, nil, models.DomainHRV, true, false, 0},
		{"unauthorized", http.StatusUnauthorized, nil, models.DomainHRV, false, true, 0},
		{"forbidden", http.StatusForbidden, nil, models.DomainHRV, false, true, 0},
		{"bad request", http.StatusBadRequest, nil, models.DomainHRV, false, true, 0},
		{"not found is empty", http.StatusNotFound, nil, models.DomainHRV, false, false, 0},
		{"no content is empty", http.StatusNoContent, nil, models.DomainHRV, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			})
			page, err := c.FetchPage(context.Background(), tt.domain, testWindow(1), "")

			var te *transport.TransientTransportError
			var fe *transport.FatalTransportError
			if got := errors.As(err, &te); got != tt.transient {
				t.Errorf("transient = %v, want %v (err %v)", got, tt.transient, err)
			}
			if got := errors.As(err, &fe); got != tt.fatal {
				t.Errorf("fatal = %v, want %v (err %v)", got, tt.fatal, err)
			}
			if tt.transient && te.RetryAfter != tt.retry {
				t.Errorf("RetryAfter = %v, want %v", te.RetryAfter, tt.retry)
			}
			if err == nil && len(page.Objects) != 0 {
				t.Errorf("objects = %d, want empty page", len(page.Objects))
			}
		})
	}
}

func TestActivitiesOffsetCursor(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("start") {
		case "0":
			_, _ = w.Write([]byte(`[{"activityId": 1}, {"activityId": 2}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"activityId": 3}]`))
		default:
			t.Errorf("unexpected start %q", r.URL.Query().Get("start"))
		}
	})
	ctx := context.Background()

	first, err := c.FetchPage(ctx, models.DomainActivities, testWindow(7), "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(first.Objects) != 2 || first.NextCursor != "2" {
		t.Fatalf("first page = %d objects, cursor %q", len(first.Objects), first.NextCursor)
	}
	if string(first.Objects[1].Payload) != `{"activityId": 2}` {
		t.Errorf("payload not passed through: %s", first.Objects[1].Payload)
	}

	second, err := c.FetchPage(ctx, models.DomainActivities, testWindow(7), first.NextCursor)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(second.Objects) != 1 || second.NextCursor != "" {
		t.Errorf("second page = %d objects, cursor %q", len(second.Objects), second.NextCursor)
	}
}

func TestHRZonesForbiddenIsEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/search/activities"):
			_, _ = w.Write([]byte(`[{"activityId": 11}, {"activityId": 12}]`))
		case strings.HasSuffix(r.URL.Path, "/11/hrTimeInZones"):
			_, _ = w.Write([]byte(`[{"zoneNumber": 1, "secsInZone": 60, "zoneLowBoundary": 100}]`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	})
	page, err := c.FetchPage(context.Background(), models.DomainActivityHRZones, testWindow(7), "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Objects) != 1 || page.Objects[0].ActivityID != "11" {
		t.Errorf("objects = %+v", page.Objects)
	}
	if page.NextCursor != "2" {
		t.Errorf("NextCursor = %q, want 2", page.NextCursor)
	}
}

func TestActivityDetailsSkipListEntriesWithoutID(t *testing.T) {
	t.Parallel()
	var detailCalls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/search/activities"):
			_, _ = w.Write([]byte(`[{"activityName": "manual entry"}, {"activityId": 12}]`))
		case r.URL.Path == "/activity-service/activity/12":
			detailCalls.Add(1)
			_, _ = w.Write([]byte(`{"activityId": 12, "splitSummaries": []}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	page, err := c.FetchPage(context.Background(), models.DomainActivitySplits, testWindow(7), "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Objects) != 1 || page.Objects[0].ActivityID != "12" {
		t.Errorf("objects = %+v, want only activity 12", page.Objects)
	}
	if n := detailCalls.Load(); n != 1 {
		t.Errorf("detail fetched %d times, want 1", n)
	}
	if page.NextCursor != "2" {
		t.Errorf("NextCursor = %q, want 2", page.NextCursor)
	}
}

func TestFitnessScoresMerged(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("aggregation") != "daily" {
			t.Errorf("aggregation = %q", r.URL.Query().Get("aggregation"))
		}
		if strings.Contains(r.URL.Path, "endurancescore") {
			_, _ = w.Write([]byte(`{"enduranceScoreDTOList": [
				{"calendarDate": "2026-03-14", "overallScore": 6100},
				{"calendarDate": "2026-03-15", "overallScore": 6150}]}`))
			return
		}
		_, _ = w.Write([]byte(`[{"calendarDate": "2026-03-15", "overallScore": 55}]`))
	})
	page, err := c.FetchPage(context.Background(), models.DomainFitnessScores, testWindow(2), "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(page.Objects))
	}

	var merged struct {
		CalendarDate string          `json:"calendarDate"`
		Endurance    json.RawMessage `json:"endurance"`
		Hill         json.RawMessage `json:"hill"`
	}
	if err := json.Unmarshal(page.Objects[0].Payload, &merged); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if merged.CalendarDate != "2026-03-14" || string(merged.Hill) != "null" {
		t.Errorf("first merged object = %s", page.Objects[0].Payload)
	}
	if err := json.Unmarshal(page.Objects[1].Payload, &merged); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if merged.CalendarDate != "2026-03-15" || len(merged.Hill) == 0 || string(merged.Hill) == "null" {
		t.Errorf("second merged object = %s", page.Objects[1].Payload)
	}
}

func TestReadinessUnwrapsList(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"calendarDate": "2026-03-15", "score": 80}, {"calendarDate": "2026-03-15", "score": 70}]`))
	})
	page, err := c.FetchPage(context.Background(), models.DomainTrainingReadiness, testWindow(1), "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Objects) != 1 || !strings.Contains(string(page.Objects[0].Payload), `"score": 80`) {
		t.Errorf("objects = %+v", page.Objects)
	}
}

func TestDisplayNameResolvedOnce(t *testing.T) {
	t.Parallel()
	var profileCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/userprofile-service/socialProfile" {
			profileCalls.Add(1)
			_, _ = w.Write([]byte(`{"displayName": "abc-123", "fullName": "Jo Runner"}`))
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/abc-123") {
			t.Errorf("path %s does not use resolved display name", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.GarminConfig{
		BaseURL: srv.URL, AccessToken: "t", Timeout: time.Second,
		RequestsPerSecond: 100, Burst: 10, PageSize: 10, DetailPageSize: 5,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c.FetchPage(context.Background(), models.DomainPersonalRecords, testWindow(1), ""); err != nil {
			t.Fatalf("FetchPage() error = %v", err)
		}
	}
	if n := profileCalls.Load(); n != 1 {
		t.Errorf("social profile fetched %d times, want 1", n)
	}
}

func TestDisplayNameLookupDoesNotBlockOtherCallers(t *testing.T) {
	t.Parallel()
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"displayName": "abc-123"}`))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	c, err := NewClient(&config.GarminConfig{
		BaseURL: srv.URL, AccessToken: "t", Timeout: 5 * time.Second,
		RequestsPerSecond: 100, Burst: 10, PageSize: 10, DetailPageSize: 5,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	type result struct {
		name string
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		name, err := c.DisplayName(context.Background())
		slow <- result{name, err}
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.DisplayName(ctx); err == nil {
		t.Error("DisplayName() with an expired context succeeded")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("DisplayName() waited %v behind the in-flight lookup", elapsed)
	}

	once.Do(func() { close(release) })
	got := <-slow
	if got.err != nil || got.name != "abc-123" {
		t.Fatalf("DisplayName() = %q, %v; want abc-123", got.name, got.err)
	}
	name, err := c.DisplayName(context.Background())
	if err != nil || name != "abc-123" {
		t.Errorf("cached DisplayName() = %q, %v", name, err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"-1", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
