// internal/executor/executor.go
package executor

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tamzrod/tmrobot-sim/internal/codec"
	"github.com/tamzrod/tmrobot-sim/internal/device"
	"github.com/tamzrod/tmrobot-sim/internal/register"
)

// geometry is one address range resolved from a device field.
type geometry struct {
	region register.Region
	addr   uint16
	qty    uint16
}

// plan is the fixed operation sequence of one test kind.
type plan struct {
	reads []geometry
	// anyOK passes when at least one read succeeded; default is all must succeed.
	anyOK bool

	write  *geometry // one random word written before the reads
	verify bool      // read back the written word and compare
}

// readSpec names a field and how many words of it to read (0 = whole field).
type readSpec struct {
	field string
	qty   uint16
}

type planSpec struct {
	reads  []readSpec
	anyOK  bool
	write  string
	verify bool
}

var planSpecs = map[TestKind]planSpec{
	BaseCoords:    {reads: []readSpec{{field: device.FieldBaseCoords}}},
	ToolCoords:    {reads: []readSpec{{field: device.FieldToolCoords}}},
	JointAngles:   {reads: []readSpec{{field: device.FieldJointAngles}}},
	RobotStatus:   {reads: []readSpec{{field: device.FieldRobotLink, qty: 4}}},
	UserRead:      {reads: []readSpec{{field: device.FieldUserArea, qty: 10}}},
	UserWrite:     {write: device.FieldUserArea},
	UserReadWrite: {write: device.FieldUserArea, verify: true},
	// Base XYZ plus the first two status flags.
	Mixed: {
		reads: []readSpec{{field: device.FieldBaseCoords, qty: 6}, {field: device.FieldRobotLink, qty: 2}},
		anyOK: true,
	},
	Stress: {reads: []readSpec{{field: device.FieldUserArea, qty: 1}}},
}

func resolve(spec planSpec) (plan, error) {
	var p plan
	for _, rs := range spec.reads {
		f, ok := device.Lookup(rs.field)
		if !ok {
			return plan{}, fmt.Errorf("executor: unknown field %q", rs.field)
		}
		qty := rs.qty
		if qty == 0 {
			qty = uint16(f.Words())
		}
		p.reads = append(p.reads, geometry{region: f.Region, addr: f.Address, qty: qty})
	}
	p.anyOK = spec.anyOK

	if spec.write != "" {
		f, ok := device.Lookup(spec.write)
		if !ok {
			return plan{}, fmt.Errorf("executor: unknown field %q", spec.write)
		}
		p.write = &geometry{region: f.Region, addr: f.Address, qty: 1}
		p.verify = spec.verify
	}
	return p, nil
}

// Executor issues one test's operations and times them.
type Executor struct {
	client Client
	plans  map[TestKind]plan
	log    *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New resolves every test plan against the device layout.
// seed drives the random write payloads.
func New(client Client, seed uint64, log *slog.Logger) (*Executor, error) {
	if log == nil {
		log = slog.Default()
	}

	plans := make(map[TestKind]plan, len(planSpecs))
	for kind, spec := range planSpecs {
		p, err := resolve(spec)
		if err != nil {
			return nil, err
		}
		plans[kind] = p
	}

	return &Executor{
		client: client,
		plans:  plans,
		log:    log.With("component", "executor"),
		rng:    rand.New(rand.NewPCG(seed, seed+1)),
	}, nil
}

// Execute runs one test and reports elapsed wall-clock time and outcome.
// Transport errors and panics become Failure; they never propagate.
func (e *Executor) Execute(kind TestKind) (res Result) {
	p, ok := e.plans[kind]
	if !ok {
		e.log.Warn("unknown test", "test", kind)
		return Result{Outcome: Failure}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("test panicked", "test", kind, "panic", r)
			res = Result{Elapsed: time.Since(start), Outcome: Failure}
		}
	}()

	outcome := e.run(kind, p)
	return Result{Elapsed: time.Since(start), Outcome: outcome}
}

func (e *Executor) run(kind TestKind, p plan) Outcome {
	if p.write != nil {
		value := e.payload()
		words, err := codec.Encode(codec.UInt16, value)
		if err != nil {
			return Failure
		}
		if err := e.client.Write(p.write.region, p.write.addr, words); err != nil {
			e.log.Debug("write failed", "test", kind, "err", err)
			return Failure
		}

		if p.verify {
			got, err := e.client.Read(p.write.region, p.write.addr, 1)
			if err != nil {
				e.log.Debug("read-back failed", "test", kind, "err", err)
				return Failure
			}
			v, err := codec.ToUint16(got)
			if err != nil {
				return Failure
			}
			if v != value {
				e.log.Warn("read-back mismatch", "test", kind, "addr", p.write.addr, "got", v, "want", value)
				return Mismatch
			}
		}
	}

	if len(p.reads) == 0 {
		return Success
	}

	passed := 0
	for _, r := range p.reads {
		if _, err := e.client.Read(r.region, r.addr, r.qty); err != nil {
			e.log.Debug("read failed", "test", kind, "region", r.region, "addr", r.addr, "err", err)
			continue
		}
		passed++
	}

	switch {
	case p.anyOK && passed > 0:
		return Success
	case passed == len(p.reads):
		return Success
	default:
		return Failure
	}
}

// payload draws a write value in 1..65535.
func (e *Executor) payload() uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return uint16(e.rng.IntN(65535) + 1)
}
