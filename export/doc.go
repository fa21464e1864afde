// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export renders claim ledger rows as xlsx workbooks with the
// Spanish column headers used by the operations team.
package export
