// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package garmin

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// dayEndpoint builds the request for a domain fetched one day at a time.
type dayEndpoint func(displayName, day string) request

var dayEndpoints = map[models.Domain]dayEndpoint{
	models.DomainDailySummary: func(dn, day string) request {
		return request{endpoint: "daily_summary", path: "/usersummary-service/usersummary/daily/" + url.PathEscape(dn),
			query: url.Values{"calendarDate": {day}}}
	},
	models.DomainSleep: func(dn, day string) request {
		return request{endpoint: "sleep", path: "/wellness-service/wellness/dailySleepData/" + url.PathEscape(dn),
			query: url.Values{"date": {day}, "nonSleepBufferMinutes": {"60"}}}
	},
	models.DomainHeartRate: func(dn, day string) request {
		return request{endpoint: "heart_rate", path: "/wellness-service/wellness/dailyHeartRate/" + url.PathEscape(dn),
			query: url.Values{"date": {day}}}
	},
	models.DomainTrainingReadiness: func(_, day string) request {
		return request{endpoint: "training_readiness", path: "/metrics-service/metrics/trainingreadiness/" + day}
	},
	models.DomainHRV: func(_, day string) request {
		return request{endpoint: "hrv", path: "/hrv-service/hrv/" + day}
	},
	models.DomainTrainingStatus: func(_, day string) request {
		return request{endpoint: "training_status", path: "/metrics-service/metrics/trainingstatus/aggregated/" + day}
	},
}

// needsDisplayName lists per-day domains whose path carries the display name.
var needsDisplayName = map[models.Domain]bool{
	models.DomainDailySummary: true,
	models.DomainSleep:        true,
	models.DomainHeartRate:    true,
}

// FetchPage implements transport.Fetcher.
//
// Cursors by domain:
//   - per-day domains: the next calendar date to fetch
//   - activities and the per-activity detail domains: an offset into the
//     activity search list
//   - ranged and snapshot domains: always a single page
func (c *Client) FetchPage(ctx context.Context, domain models.Domain, window models.Window, cursor string) (transport.Page, error) {
	if _, ok := dayEndpoints[domain]; ok {
		return c.fetchDay(ctx, domain, window, cursor)
	}
	switch domain {
	case models.DomainActivities:
		return c.fetchActivities(ctx, window, cursor)
	case models.DomainActivitySplits:
		return c.fetchActivityDetails(ctx, window, cursor, func(id string) request {
			return request{endpoint: "activity", path: "/activity-service/activity/" + id}
		})
	case models.DomainActivityHRZones:
		return c.fetchActivityDetails(ctx, window, cursor, func(id string) request {
			return request{endpoint: "activity_hr_zones", path: "/activity-service/activity/" + id + "/hrTimeInZones", forbiddenIsEmpty: true}
		})
	case models.DomainBodyComposition:
		return c.fetchBodyComposition(ctx, window)
	case models.DomainFitnessScores:
		return c.fetchFitnessScores(ctx, window)
	case models.DomainRacePredictions:
		return c.fetchRacePredictions(ctx, window)
	case models.DomainPersonalRecords:
		return c.fetchPersonalRecords(ctx)
	default:
		return transport.Page{}, &transport.FatalTransportError{Op: string(domain), Err: fmt.Errorf("unsupported domain %q", domain)}
	}
}

func (c *Client) fetchDay(ctx context.Context, domain models.Domain, window models.Window, cursor string) (transport.Page, error) {
	days := window.Days()
	if len(days) == 0 {
		return transport.Page{}, nil
	}
	idx := 0
	if cursor != "" {
		idx = sort.SearchStrings(days, cursor)
		if idx == len(days) || days[idx] != cursor {
			return transport.Page{}, &transport.FatalTransportError{Op: string(domain), Err: fmt.Errorf("cursor %q outside window", cursor)}
		}
	}
	day := days[idx]

	var dn string
	if needsDisplayName[domain] {
		var err error
		if dn, err = c.DisplayName(ctx); err != nil {
			return transport.Page{}, err
		}
	}

	body, err := c.get(ctx, dayEndpoints[domain](dn, day))
	if err != nil {
		return transport.Page{}, err
	}

	var page transport.Page
	if idx+1 < len(days) {
		page.NextCursor = days[idx+1]
	}
	payload := body
	if domain == models.DomainTrainingReadiness {
		// Readiness is a list with one entry per assessment of the day.
		if payload, err = firstElement(body); err != nil {
			return transport.Page{}, &transport.FatalTransportError{Op: string(domain), Err: err}
		}
	}
	if payload != nil {
		page.Objects = []transport.Object{{Payload: payload, Day: day}}
	}
	return page, nil
}

type activitySummary struct {
	ActivityID json.Number `json:"activityId"`
}

// searchActivities returns one page of the activity list for the window.
func (c *Client) searchActivities(ctx context.Context, window models.Window, offset, limit int) ([]json.RawMessage, error) {
	body, err := c.get(ctx, request{
		endpoint: "activities",
		path:     "/activitylist-service/activities/search/activities",
		query: url.Values{
			"startDate": {window.StartDate()},
			"endDate":   {window.EndDate()},
			"start":     {strconv.Itoa(offset)},
			"limit":     {strconv.Itoa(limit)},
		},
	})
	if err != nil {
		return nil, err
	}
	elems, err := elements(body, "", false)
	if err != nil {
		return nil, &transport.FatalTransportError{Op: "activities", Err: err}
	}
	return elems, nil
}

func parseOffset(op, cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0, &transport.FatalTransportError{Op: op, Err: fmt.Errorf("invalid cursor %q", cursor)}
	}
	return n, nil
}

// nextOffset returns the cursor after a page of n items; a short page ends the list.
func nextOffset(offset, n, limit int) string {
	if n < limit {
		return ""
	}
	return strconv.Itoa(offset + n)
}

func (c *Client) fetchActivities(ctx context.Context, window models.Window, cursor string) (transport.Page, error) {
	offset, err := parseOffset("activities", cursor)
	if err != nil {
		return transport.Page{}, err
	}
	elems, err := c.searchActivities(ctx, window, offset, c.pageSize)
	if err != nil {
		return transport.Page{}, err
	}
	page := transport.Page{NextCursor: nextOffset(offset, len(elems), c.pageSize)}
	for _, e := range elems {
		page.Objects = append(page.Objects, transport.Object{Payload: e})
	}
	return page, nil
}

// fetchActivityDetails lists a page of activities and fetches one detail
// payload per activity.
func (c *Client) fetchActivityDetails(ctx context.Context, window models.Window, cursor string, detail func(id string) request) (transport.Page, error) {
	offset, err := parseOffset("activity_details", cursor)
	if err != nil {
		return transport.Page{}, err
	}
	elems, err := c.searchActivities(ctx, window, offset, c.detailPageSize)
	if err != nil {
		return transport.Page{}, err
	}

	page := transport.Page{NextCursor: nextOffset(offset, len(elems), c.detailPageSize)}
	for i, e := range elems {
		var a activitySummary
		if err := json.Unmarshal(e, &a); err != nil || a.ActivityID == "" {
			logging.Debug().
				Err(err).
				Str("endpoint", detail("").endpoint).
				Int("offset", offset+i).
				Msg("Skipping activity list entry without activityId")
			continue
		}
		id := a.ActivityID.String()
		body, err := c.get(ctx, detail(id))
		if err != nil {
			return transport.Page{}, err
		}
		if body != nil {
			page.Objects = append(page.Objects, transport.Object{Payload: body, ActivityID: id})
		}
	}
	return page, nil
}

func (c *Client) fetchBodyComposition(ctx context.Context, window models.Window) (transport.Page, error) {
	body, err := c.get(ctx, request{
		endpoint: "body_composition",
		path:     "/weight-service/weight/dateRange",
		query:    url.Values{"startDate": {window.StartDate()}, "endDate": {window.EndDate()}},
	})
	if err != nil {
		return transport.Page{}, err
	}
	elems, err := elements(body, "dateWeightList", false)
	if err != nil {
		return transport.Page{}, &transport.FatalTransportError{Op: "body_composition", Err: err}
	}
	var page transport.Page
	for _, e := range elems {
		page.Objects = append(page.Objects, transport.Object{Payload: e})
	}
	return page, nil
}

// fetchFitnessScores merges the endurance and hill score series into one
// object per date: {"calendarDate": ..., "endurance": {...}, "hill": {...}}.
func (c *Client) fetchFitnessScores(ctx context.Context, window models.Window) (transport.Page, error) {
	series := func(endpoint, path, listField string) (map[string]json.RawMessage, error) {
		body, err := c.get(ctx, request{
			endpoint: endpoint,
			path:     path,
			query: url.Values{
				"startDate":   {window.StartDate()},
				"endDate":     {window.EndDate()},
				"aggregation": {"daily"},
			},
		})
		if err != nil {
			return nil, err
		}
		elems, err := elements(body, listField, true)
		if err != nil {
			return nil, &transport.FatalTransportError{Op: endpoint, Err: err}
		}
		byDate := make(map[string]json.RawMessage, len(elems))
		for _, e := range elems {
			var d struct {
				CalendarDate string `json:"calendarDate"`
				Date         string `json:"date"`
			}
			if json.Unmarshal(e, &d) != nil {
				continue
			}
			date := d.CalendarDate
			if date == "" {
				date = d.Date
			}
			if len(date) >= 10 {
				byDate[date[:10]] = e
			}
		}
		return byDate, nil
	}

	endurance, err := series("endurance_score", "/metrics-service/metrics/endurancescore/stats", "enduranceScoreDTOList")
	if err != nil {
		return transport.Page{}, err
	}
	hill, err := series("hill_score", "/metrics-service/metrics/hillscore/stats", "hillScoreDTOList")
	if err != nil {
		return transport.Page{}, err
	}

	dates := make([]string, 0, len(endurance)+len(hill))
	for d := range endurance {
		dates = append(dates, d)
	}
	for d := range hill {
		if _, ok := endurance[d]; !ok {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	var page transport.Page
	for _, d := range dates {
		merged, err := json.Marshal(struct {
			CalendarDate string          `json:"calendarDate"`
			Endurance    json.RawMessage `json:"endurance"`
			Hill         json.RawMessage `json:"hill"`
		}{d, endurance[d], hill[d]})
		if err != nil {
			return transport.Page{}, &transport.FatalTransportError{Op: "fitness_scores", Err: err}
		}
		page.Objects = append(page.Objects, transport.Object{Payload: merged, Day: d})
	}
	return page, nil
}

func (c *Client) fetchRacePredictions(ctx context.Context, window models.Window) (transport.Page, error) {
	dn, err := c.DisplayName(ctx)
	if err != nil {
		return transport.Page{}, err
	}
	body, err := c.get(ctx, request{
		endpoint: "race_predictions",
		path:     "/metrics-service/metrics/racepredictions/latest/" + url.PathEscape(dn),
	})
	if err != nil {
		return transport.Page{}, err
	}
	payload, err := firstElement(body)
	if err != nil {
		return transport.Page{}, &transport.FatalTransportError{Op: "race_predictions", Err: err}
	}
	if payload == nil {
		return transport.Page{}, nil
	}
	return transport.Page{Objects: []transport.Object{{Payload: payload, Day: window.EndDate()}}}, nil
}

func (c *Client) fetchPersonalRecords(ctx context.Context) (transport.Page, error) {
	dn, err := c.DisplayName(ctx)
	if err != nil {
		return transport.Page{}, err
	}
	body, err := c.get(ctx, request{
		endpoint: "personal_records",
		path:     "/personalrecord-service/personalrecord/prs/" + url.PathEscape(dn),
	})
	if err != nil {
		return transport.Page{}, err
	}
	elems, err := elements(body, "personalRecords", false)
	if err != nil {
		return transport.Page{}, &transport.FatalTransportError{Op: "personal_records", Err: err}
	}
	var page transport.Page
	for _, e := range elems {
		page.Objects = append(page.Objects, transport.Object{Payload: e})
	}
	return page, nil
}

// elements splits a response into raw array elements. The body may be the
// array itself or an object holding it under field. With single set, an
// object without field counts as one element.
func elements(body []byte, field string, single bool) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(body, &elems); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return elems, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	raw, ok := obj[field]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		if single && len(obj) > 0 {
			return []json.RawMessage{json.RawMessage(body)}, nil
		}
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	return elems, nil
}

// firstElement unwraps a one-element list; objects pass through unchanged.
func firstElement(body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		if len(body) == 0 {
			return nil, nil
		}
		return body, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if len(elems) == 0 {
		return nil, nil
	}
	return elems[0], nil
}
