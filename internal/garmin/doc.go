// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package garmin implements transport.Fetcher against the Garmin Connect API.

The client does not log in. It presents a bearer token taken from
garmin.access_token or from the oauth2_token.json that garth writes into
garmin.token_dir, and fails fast when the token is missing or expired.

Request Pipeline:

	rate.Limiter.Wait -> gobreaker -> http.Client.Do -> status classification

Status Classification:

  - 200: payload
  - 204, 404: no data (empty page)
  - 403 on hrTimeInZones: no data; the endpoint is denied for many accounts
  - 429: transient, carrying Retry-After
  - 5xx and network errors: transient
  - 401, 403, other 4xx: fatal
  - open circuit breaker: fatal

Payloads are passed through byte-for-byte so raw_json keeps exactly what
Garmin returned. The one exception is fitness_scores, where the endurance
and hill series are merged into one object per date.
*/
package garmin
