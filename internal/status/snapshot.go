// internal/status/snapshot.go
package status

import "fmt"

// Snapshot is the current link state as seen by one monitor.
// It contains no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// HealthName renders a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	default:
		return fmt.Sprintf("health(%d)", h)
	}
}

func (s Snapshot) String() string {
	if s.Health != HealthError {
		return HealthName(s.Health)
	}
	return fmt.Sprintf("error code=%d for %ds", s.LastErrorCode, s.SecondsInError)
}
