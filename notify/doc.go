// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify sends the transactional emails of the service. Only the
// welcome message for new accounts exists today.
package notify
