// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dashboard computes the claim metrics shown to administrators and
the personal view of each handler.

All figures use the latest status of each claim. A claim is closed when its
latest status is in the catalog's closed set; the time to close is counted
in business days from the creation date to the closing status date.

Service caches the summary for a cooldown period, in Redis when configured
and otherwise in process. Writes call Invalidate so the next read is fresh.
*/
package dashboard
