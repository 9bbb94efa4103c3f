// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// Readiness and HRV payloads changed field names across firmware versions;
// each metric is read from the current name first, then the older one.

func normalizeTrainingReadiness(obj transport.Object) (Result, error) {
	d, date, ok, err := decodeDaily(models.DomainTrainingReadiness, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	var res Result
	res.add(models.TrainingReadiness{
		Date:            date,
		Score:           toInt(firstOf(d["score"], d["trainingReadinessScore"])),
		Level:           toString(firstOf(d["level"], d["trainingReadinessLevel"])),
		HRVStatus:       toString(d["hrvStatus"]),
		SleepScore:      toInt(firstOf(d["sleepScore"], d["sleepQuality"])),
		RecoveryTimeHrs: toInt(firstOf(d["recoveryTimeInHours"], d["recoveryTime"])),
		RawJSON:         obj.Payload,
	})
	return res, nil
}

// normalizeHRV maps the nightly HRV payload, whose metrics sit either in
// hrvSummary or at the root.
func normalizeHRV(obj transport.Object) (Result, error) {
	const domain = models.DomainHRV
	d, err := decodeObject(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	s := asMap(d["hrvSummary"])
	if len(s) == 0 {
		s = d
	}
	if len(s) == 0 {
		return Result{}, nil
	}
	date := calendarDate(firstOf(d["calendarDate"], s["calendarDate"]))
	if date == "" {
		if date, err = dayKey(domain, s, obj); err != nil {
			return Result{}, err
		}
	}
	var res Result
	res.add(models.HRV{
		Date:         date,
		WeeklyAvg:    toInt(s["weeklyAvg"]),
		LastNight:    toInt(firstOf(s["lastNight"], s["lastNightAvg"])),
		BaselineLow:  toInt(firstOf(s["baselineLow"], get(s, "baseline", "lowUpper"))),
		BaselineHigh: toInt(firstOf(s["baselineHigh"], get(s, "baseline", "highUpper"))),
		Status:       toString(firstOf(s["status"], s["hrvStatus"])),
		RawJSON:      obj.Payload,
	})
	return res, nil
}

// normalizeTrainingStatus maps the aggregated training status. Load and
// VO2max live in device-keyed maps; one device is chosen deterministically.
func normalizeTrainingStatus(obj transport.Object) (Result, error) {
	d, date, ok, err := decodeDaily(models.DomainTrainingStatus, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	vo2 := asMap(get(d, "mostRecentVO2Max", "generic"))
	load := firstMapValue(get(d, "mostRecentTrainingLoadBalance", "metricsTrainingLoadBalanceDTOMap"))
	latest := firstMapValue(get(d, "mostRecentTrainingStatus", "latestTrainingStatusData"))

	var res Result
	res.add(models.TrainingStatus{
		Date:       date,
		Status:     toString(firstOf(d["trainingStatusPhrase"], d["trainingStatus"], latest["trainingStatusFeedbackPhrase"])),
		Load7d:     toFloat(firstOf(load["weeklyTrainingLoad"], load["monthlyLoadAerobicLow"])),
		Load28d:    toFloat(load["monthlyLoadAerobicHigh"]),
		VO2Max:     toFloat(firstOf(vo2["vo2MaxPreciseValue"], vo2["vo2MaxValue"])),
		FitnessAge: toInt(firstOf(vo2["fitnessAge"], d["fitnessAge"])),
		RawJSON:    obj.Payload,
	})
	return res, nil
}

// normalizeFitnessScore maps the per-date object the client merges from
// the endurance and hill score series:
//
//	{"calendarDate": "...", "endurance": {...} | null, "hill": {...} | null}
func normalizeFitnessScore(obj transport.Object) (Result, error) {
	d, date, ok, err := decodeDaily(models.DomainFitnessScores, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	endurance := asMap(d["endurance"])
	hill := asMap(d["hill"])
	if endurance == nil && hill == nil {
		return Result{}, nil
	}
	var res Result
	res.add(models.FitnessScore{
		Date:           date,
		EnduranceScore: toFloat(firstOf(endurance["overallScore"], endurance["enduranceScore"])),
		HillScore:      toFloat(firstOf(hill["overallScore"], hill["hillScore"])),
		RawJSON:        obj.Payload,
	})
	return res, nil
}

func normalizeRacePrediction(obj transport.Object) (Result, error) {
	p, date, ok, err := decodeDaily(models.DomainRacePredictions, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	var res Result
	res.add(models.RacePrediction{
		Date:            date,
		FiveKSec:        toSeconds(firstOf(p["time5K"], get(p, "5k", "time"))),
		TenKSec:         toSeconds(firstOf(p["time10K"], get(p, "10k", "time"))),
		HalfMarathonSec: toSeconds(firstOf(p["timeHalfMarathon"], get(p, "half", "time"))),
		MarathonSec:     toSeconds(firstOf(p["timeMarathon"], get(p, "marathon", "time"))),
		RawJSON:         obj.Payload,
	})
	return res, nil
}

func normalizePersonalRecord(obj transport.Object) (Result, error) {
	const domain = models.DomainPersonalRecords
	r, err := decodeObject(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	id := idString(r["id"])
	if id == "" {
		return Result{}, invalid(domain, "missing id")
	}

	var date *string
	if s, ok := r["actStartDateTimeInGMTFormatted"].(string); ok && s != "" {
		if d := calendarDate(s); d != "" {
			s = d
		}
		date = &s
	}

	var res Result
	res.add(models.PersonalRecord{
		ID:           id,
		Type:         optionalID(r["typeId"]),
		ActivityType: toString(r["activityType"]),
		Value:        toFloat(r["value"]),
		ValueDisplay: toString(r["activityName"]),
		Date:         date,
		ActivityID:   optionalID(r["activityId"]),
		RawJSON:      obj.Payload,
	})
	return res, nil
}
