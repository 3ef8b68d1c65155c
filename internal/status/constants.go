// internal/status/constants.go
package status

// Link health codes, as reported by the monitor.
// These values are stable and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a responsive controller.
const HealthOK uint16 = 1

// HealthError represents a failing poll cycle.
const HealthError uint16 = 2

// ---- LIMITS ----

// MaxSecondsInError saturates the error duration counter.
const MaxSecondsInError = 65535
