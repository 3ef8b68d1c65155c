// internal/executor/types.go
package executor

import (
	"fmt"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// Client abstracts the Modbus operations a test needs.
// Bit regions carry one 0/1 word per bit.
type Client interface {
	Read(region register.Region, addr, qty uint16) ([]uint16, error)
	Write(region register.Region, addr uint16, words []uint16) error
}

// TestKind names one performance test.
type TestKind string

const (
	BaseCoords    TestKind = "base_coords"
	ToolCoords    TestKind = "tool_coords"
	JointAngles   TestKind = "joint_angles"
	RobotStatus   TestKind = "robot_status"
	UserRead      TestKind = "user_read"
	UserWrite     TestKind = "user_write"
	UserReadWrite TestKind = "user_read_write"
	Mixed         TestKind = "mixed"
	Stress        TestKind = "stress"
)

// Kinds lists every test kind in menu order.
func Kinds() []TestKind {
	return []TestKind{
		BaseCoords, ToolCoords, JointAngles, RobotStatus,
		UserRead, UserWrite, UserReadWrite, Mixed, Stress,
	}
}

// ParseTestKind validates a test name.
func ParseTestKind(s string) (TestKind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("executor: unknown test %q", s)
}

// Writes reports whether the test modifies device memory.
func (k TestKind) Writes() bool {
	return k == UserWrite || k == UserReadWrite
}

// Outcome is the verdict of one execution.
type Outcome uint8

const (
	Success Outcome = iota
	Failure
	// Mismatch is a write-then-read whose read-back differed. It counts as failed.
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "ok"
	case Failure:
		return "failed"
	case Mismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Result is one timed execution.
type Result struct {
	Elapsed time.Duration
	Outcome Outcome
}

// OK reports whether the execution succeeded.
func (r Result) OK() bool { return r.Outcome == Success }
