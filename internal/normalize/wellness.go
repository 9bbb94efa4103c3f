// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// decodeDaily decodes a per-day payload. ok is false for an empty object,
// which Garmin returns for days without data.
func decodeDaily(domain models.Domain, obj transport.Object) (m map[string]any, date string, ok bool, err error) {
	m, err = decodeObject(obj.Payload)
	if err != nil {
		return nil, "", false, invalid(domain, "%v", err)
	}
	if len(m) == 0 {
		return nil, "", false, nil
	}
	date, err = dayKey(domain, m, obj)
	if err != nil {
		return nil, "", false, err
	}
	return m, date, true, nil
}

func normalizeDailySummary(obj transport.Object) (Result, error) {
	s, date, ok, err := decodeDaily(models.DomainDailySummary, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	var res Result
	res.add(models.DailySummary{
		Date:             date,
		Steps:            toInt(s["totalSteps"]),
		Floors:           toInt(s["floorsAscended"]),
		CaloriesTotal:    toInt(s["totalKilocalories"]),
		CaloriesActive:   toInt(s["activeKilocalories"]),
		DistanceKm:       scaled(s["totalDistanceMeters"], 1000, 2),
		ActiveMinutes:    minutesFromSeconds(s["activeSeconds"]),
		IntensityMinutes: toInt(s["moderateIntensityMinutes"]),
		RestingHR:        toInt(s["restingHeartRate"]),
		StressAvg:        toInt(s["averageStressLevel"]),
		BodyBatteryHigh:  toInt(s["bodyBatteryHighestValue"]),
		BodyBatteryLow:   toInt(s["bodyBatteryLowestValue"]),
		RawJSON:          obj.Payload,
	})
	return res, nil
}

// normalizeSleep maps dailySleepData. A payload without dailySleepDTO
// means no sleep was recorded for the night.
func normalizeSleep(obj transport.Object) (Result, error) {
	const domain = models.DomainSleep
	m, err := decodeObject(obj.Payload)
	if err != nil {
		return Result{}, invalid(domain, "%v", err)
	}
	dto := asMap(m["dailySleepDTO"])
	if len(dto) == 0 {
		return Result{}, nil
	}
	date, err := dayKey(domain, dto, obj)
	if err != nil {
		return Result{}, err
	}
	var res Result
	res.add(models.Sleep{
		Date:          date,
		TotalSleepMin: minutesFromSeconds(dto["sleepTimeSeconds"]),
		DeepSleepMin:  minutesFromSeconds(dto["deepSleepSeconds"]),
		LightSleepMin: minutesFromSeconds(dto["lightSleepSeconds"]),
		RemSleepMin:   minutesFromSeconds(dto["remSleepSeconds"]),
		AwakeMin:      minutesFromSeconds(dto["awakeSleepSeconds"]),
		SleepScore:    toInt(get(dto, "sleepScores", "overall", "value")),
		RawJSON:       obj.Payload,
	})
	return res, nil
}

func normalizeHeartRate(obj transport.Object) (Result, error) {
	hr, date, ok, err := decodeDaily(models.DomainHeartRate, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	var res Result
	res.add(models.HeartRate{
		Date:      date,
		RestingHR: toInt(hr["restingHeartRate"]),
		MinHR:     toInt(hr["minHeartRate"]),
		MaxHR:     toInt(hr["maxHeartRate"]),
		RawJSON:   obj.Payload,
	})
	return res, nil
}

// normalizeBodyComposition maps one dateWeightList entry. Weights arrive
// in grams.
func normalizeBodyComposition(obj transport.Object) (Result, error) {
	e, date, ok, err := decodeDaily(models.DomainBodyComposition, obj)
	if err != nil || !ok {
		return Result{}, err
	}
	var res Result
	res.add(models.BodyComposition{
		Date:         date,
		WeightKg:     scaledNonZero(e["weight"], 1000, 1),
		BMI:          toFloat(e["bmi"]),
		BodyFatPct:   toFloat(e["bodyFat"]),
		MuscleMassKg: scaledNonZero(e["muscleMass"], 1000, 1),
		RawJSON:      obj.Payload,
	})
	return res, nil
}
