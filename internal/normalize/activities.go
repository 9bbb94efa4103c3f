// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"fmt"

	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// normalizeActivity maps one activity summary. When the payload embeds
// splitSummaries or hrTimeInZones, their rows are emitted too and the
// activity row keeps the full payload.
func normalizeActivity(obj transport.Object) (Result, error) {
	const domain = models.DomainActivities
	a, err := decodeObject(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	id := firstNonEmpty(idString(a["activityId"]), obj.ActivityID)
	if id == "" {
		return Result{}, invalid(domain, "missing activityId")
	}

	var date *string
	if d := calendarDate(a["startTimeLocal"]); d != "" {
		date = &d
	}
	pace := toString(a["averagePace"])
	if pace == nil {
		pace = paceFromSpeed(a["averageSpeed"])
	}

	var res Result
	res.add(models.Activity{
		ID:             id,
		Name:           toString(a["activityName"]),
		Type:           toString(get(a, "activityType", "typeKey")),
		Date:           date,
		DurationMin:    scaled(a["duration"], 60, 1),
		DistanceKm:     scaledNonZero(a["distance"], 1000, 2),
		Calories:       toInt(a["calories"]),
		AvgHR:          toInt(a["averageHR"]),
		MaxHR:          toInt(a["maxHR"]),
		AvgPace:        pace,
		ElevationM:     toFloat(a["elevationGain"]),
		Steps:          toInt(a["steps"]),
		TrainingEffect: toFloat(a["aerobicTrainingEffect"]),
		VO2Max:         toFloat(a["vO2MaxValue"]),
		RawJSON:        obj.Payload,
	})

	if err := appendSplits(&res, id, obj.Payload, "splitSummaries"); err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	if err := appendHRZones(&res, id, obj.Payload, "hrTimeInZones"); err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	return res, nil
}

// normalizeSplitsPayload maps an activity detail payload to its splits.
func normalizeSplitsPayload(obj transport.Object) (Result, error) {
	const domain = models.DomainActivitySplits
	a, err := decodeObject(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	id := firstNonEmpty(obj.ActivityID, idString(a["activityId"]))
	if id == "" {
		return Result{}, invalid(domain, "missing activityId")
	}
	var res Result
	if err := appendSplits(&res, id, obj.Payload, "splitSummaries"); err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	return res, nil
}

// normalizeHRZonesPayload maps the time-in-zone payload of one activity.
// The endpoint returns a bare array; an object wrapping hrTimeInZones is
// accepted as well.
func normalizeHRZonesPayload(obj transport.Object) (Result, error) {
	const domain = models.DomainActivityHRZones
	v, err := decodeValue(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	id := obj.ActivityID
	field := ""
	switch x := v.(type) {
	case []any:
	case map[string]any:
		id = firstNonEmpty(id, idString(x["activityId"]))
		field = "hrTimeInZones"
	default:
		return Result{}, invalid(domain, "payload is %s, want array or object", kindOf(v))
	}
	if id == "" {
		return Result{}, invalid(domain, "missing activity id")
	}
	var res Result
	if err := appendHRZones(&res, id, obj.Payload, field); err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	return res, nil
}

func appendSplits(res *Result, activityID string, payload []byte, field string) error {
	elems, ok, err := rawElements(payload, field)
	if err != nil || !ok {
		return err
	}
	for i, raw := range elems {
		sp, err := decodeObject(raw)
		if err != nil {
			return fmt.Errorf("split %d: %w", i+1, err)
		}
		res.add(models.ActivitySplit{
			ActivityID:     activityID,
			SplitNum:       int64(i + 1),
			DistanceKm:     scaledNonZero(sp["distance"], 1000, 3),
			DurationSec:    scaled(sp["duration"], 1, 1),
			AvgHR:          toInt(sp["averageHR"]),
			MaxHR:          toInt(sp["maxHR"]),
			AvgPace:        paceFromSpeed(sp["averageSpeed"]),
			ElevationGainM: toFloat(sp["elevationGain"]),
			ElevationLossM: toFloat(sp["elevationLoss"]),
			Calories:       toInt(sp["calories"]),
			RawJSON:        []byte(raw),
		})
	}
	res.Details = append(res.Details, models.DetailSet{
		Table: models.TableActivitySplits, ActivityID: activityID, Count: len(elems),
	})
	return nil
}

func appendHRZones(res *Result, activityID string, payload []byte, field string) error {
	elems, ok, err := rawElements(payload, field)
	if err != nil || !ok {
		return err
	}
	zones := make([]map[string]any, len(elems))
	for i, raw := range elems {
		z, err := decodeObject(raw)
		if err != nil {
			return fmt.Errorf("zone %d: %w", i+1, err)
		}
		zones[i] = z
	}

	for i, z := range zones {
		zoneNum := int64(i + 1)
		if n := toInt(z["zoneNumber"]); n != nil {
			zoneNum = *n
		}
		// Garmin reports only lower bounds; a zone ends one beat below the next.
		var maxHR *int64
		if i+1 < len(zones) {
			if next := toInt(zones[i+1]["zoneLowBoundary"]); next != nil && *next-1 > 0 {
				v := *next - 1
				maxHR = &v
			}
		}
		name := fmt.Sprintf("Zone %d", zoneNum)
		res.add(models.ActivityHRZone{
			ActivityID:  activityID,
			Zone:        zoneNum,
			ZoneName:    &name,
			MinHR:       toInt(firstOf(z["zoneLowBoundary"], z["startBpm"])),
			MaxHR:       maxHR,
			DurationSec: toInt(firstOf(z["secsInZone"], z["duration"])),
			RawJSON:     []byte(elems[i]),
		})
	}
	res.Details = append(res.Details, models.DetailSet{
		Table: models.TableActivityHRZones, ActivityID: activityID, Count: len(zones),
	})
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
