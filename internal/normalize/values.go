// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// decodeObject decodes a JSON object, keeping numbers as json.Number so
// integer ids and large values survive without float rounding.
func decodeObject(payload []byte) (map[string]any, error) {
	v, err := decodeValue(payload)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is %s, want JSON object", kindOf(v))
	}
	return m, nil
}

func decodeValue(payload []byte) (any, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}

// rawElements returns the undecoded elements of the array stored under
// field, or of payload itself when field is empty. ok is false when the
// field is absent or null.
func rawElements(payload []byte, field string) (elems []json.RawMessage, ok bool, err error) {
	raw := json.RawMessage(payload)
	if field != "" {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, false, fmt.Errorf("invalid JSON: %w", err)
		}
		var present bool
		raw, present = fields[field]
		if !present || string(bytes.TrimSpace(raw)) == "null" {
			return nil, false, nil
		}
	}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false, fmt.Errorf("%s is not an array: %w", field, err)
	}
	return elems, true, nil
}

// get walks nested objects; any missing step yields nil.
func get(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

// firstOf returns the first non-nil value.
func firstOf(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// toFloat converts a JSON number; anything else is nil.
func toFloat(v any) *float64 {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// toInt converts a JSON number to an integer, rounding fractional values.
func toInt(v any) *int64 {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	if i, err := n.Int64(); err == nil {
		return &i
	}
	f := toFloat(v)
	if f == nil || math.Abs(*f) > math.MaxInt64 {
		return nil
	}
	i := int64(math.Round(*f))
	return &i
}

// toString returns strings as-is; other types are nil.
func toString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// idString renders a numeric or string identifier; "" when absent.
func idString(v any) string {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case string:
		return strings.TrimSpace(x)
	default:
		return ""
	}
}

func optionalID(v any) *string {
	if s := idString(v); s != "" {
		return &s
	}
	return nil
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// scaled divides v by divisor and rounds to places decimals.
func scaled(v any, divisor float64, places int) *float64 {
	f := toFloat(v)
	if f == nil {
		return nil
	}
	r := round(*f/divisor, places)
	return &r
}

// scaledNonZero is scaled, with a reported zero treated as "not measured".
// Garmin reports 0 for distance and mass when the sensor recorded nothing.
func scaledNonZero(v any, divisor float64, places int) *float64 {
	f := toFloat(v)
	if f == nil || *f == 0 {
		return nil
	}
	return scaled(v, divisor, places)
}

// minutesFromSeconds floors seconds to whole minutes.
func minutesFromSeconds(v any) *int64 {
	f := toFloat(v)
	if f == nil {
		return nil
	}
	m := int64(math.Floor(*f / 60))
	return &m
}

// paceFromSpeed converts metres per second into "m:ss" per kilometre.
func paceFromSpeed(v any) *string {
	speed := toFloat(v)
	if speed == nil || *speed <= 0 {
		return nil
	}
	secs := int64(1000 / *speed)
	s := fmt.Sprintf("%d:%02d", secs/60, secs%60)
	return &s
}

// toSeconds parses a race time given as seconds, "h:m:s", or "m:s".
func toSeconds(v any) *int64 {
	switch x := v.(type) {
	case json.Number:
		f := toFloat(x)
		if f == nil {
			return nil
		}
		i := int64(*f)
		return &i
	case string:
		parts := strings.Split(strings.TrimSpace(x), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil
		}
		var total int64
		for _, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil
			}
			total = total*60 + n
		}
		return &total
	default:
		return nil
	}
}

// calendarDate normalises a date or timestamp string to YYYY-MM-DD.
func calendarDate(v any) string {
	s, ok := v.(string)
	if !ok || len(s) < 10 {
		return ""
	}
	return s[:10]
}

// firstMapValue picks one entry of a device-keyed map deterministically:
// the entry flagged primaryTrainingDevice, else the smallest key.
func firstMapValue(v any) map[string]any {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if primary, _ := get(m[k], "primaryTrainingDevice").(bool); primary {
			return asMap(m[k])
		}
	}
	return asMap(m[keys[0]])
}
