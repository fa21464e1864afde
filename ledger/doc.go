// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements the read-side logic over claim ledger rows.

Every status change of a claim is stored as its own row, so most views need
to reduce the ledger first.

# Latest-Status Projection

LatestPerClaim groups rows by claim number and keeps the row with the
greatest status time:

	latest := ledger.LatestPerClaim(rows)

Ordering within a claim is (status time, row ID). Row IDs are ULIDs, so
rows written in the same second still order by insertion. Status times that
do not parse order before all parseable ones.

# Search

Matches performs a case-insensitive substring match over every textual
column of a row. Filter applies it to a slice.

# Status Times

NextStatusTime stamps a new event so that it is strictly later than the
previous latest event of the same claim.

# Business Days

BusinessDays counts Monday to Friday between two dates, start inclusive and
end exclusive. It is used for the closure latency on the dashboard.
*/
package ledger
