// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package sync orchestrates a sync run: for each requested domain it plans a
fetch window from the domain's watermark, pulls every page from the
Fetcher, normalizes the payloads, upserts the rows, prunes stale detail
rows, and finally advances the watermark.

Domain State Machine:

	PENDING -> FETCHING -> NORMALIZING -> COMMITTING -> SUCCEEDED
	                                                 -> PARTIAL
	   any state ----------------------------------> FAILED

  - SUCCEEDED: every object normalized and committed
  - PARTIAL: some objects were skipped as malformed; the rest committed
    and the watermark advanced
  - FAILED: fetch, store, or deadline failure; the watermark is untouched

The run status is the worst domain status (FAILED > PARTIAL > SUCCEEDED).

Concurrency:

Domains run in a bounded worker pool (semaphore channel plus WaitGroup).
Domains share no mutable state; the store serializes writes per natural
key, and the watermark write keeps the greatest success time, so
overlapping runs converge on last-write-wins rows and monotonic
watermarks.

Retries:

Only *transport.TransientTransportError is retried, with exponential
backoff starting at sync.retry_delay and honouring the vendor Retry-After.
Fatal transport errors fail the domain at once.

Periodic Mode:

Start runs one sync immediately and then one every sync.interval until
Stop. A tick that fires while the previous periodic run is still active
is skipped.
*/
package sync
