// internal/register/bank_test.go
package register

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
	"github.com/tamzrod/tmrobot-sim/internal/latency"
)

const testCapacity = 10000

func TestBankBounds(t *testing.T) {
	b := NewBank(Holding, testCapacity)

	_, err := b.Read(testCapacity-1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrOutOfRange))

	words, err := b.Read(0, testCapacity)
	require.NoError(t, err)
	assert.Len(t, words, testCapacity)

	_, err = b.Read(-1, 1)
	assert.True(t, errors.Is(err, fault.ErrOutOfRange))

	_, err = b.Read(0, 0)
	assert.True(t, errors.Is(err, fault.ErrInvalidLength))
}

func TestBankWriteWholeOrNothing(t *testing.T) {
	b := NewBank(Holding, 10)

	err := b.Write(8, []uint16{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrOutOfRange))
	assert.Equal(t, make([]uint16, 10), b.Snapshot(), "failed write must not touch the bank")

	require.NoError(t, b.Write(7, []uint16{1, 2, 3}))
	got, err := b.Read(7, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3}, got)
}

func TestBankReadReturnsCopy(t *testing.T) {
	b := NewBank(Input, 4)
	require.NoError(t, b.Seed(0, []uint16{9, 9, 9, 9}))

	got, err := b.Read(0, 4)
	require.NoError(t, err)
	got[0] = 0

	again, err := b.Read(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(9), again[0])
}

func TestBankCountersAndLatency(t *testing.T) {
	var slept []time.Duration
	b := NewBank(Holding, 100,
		WithLatency(latency.Fixed{Read: 5 * time.Millisecond, Write: 8 * time.Millisecond}),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)

	_, err := b.Read(0, 1)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, []uint16{1}))
	_, err = b.Read(99, 2) // rejected: not counted, not delayed
	require.Error(t, err)

	reads, writes := b.Counters()
	assert.Equal(t, uint64(1), reads)
	assert.Equal(t, uint64(1), writes)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 8 * time.Millisecond}, slept)
}

type recordingModel struct {
	mu    sync.Mutex
	reads []uint64
}

func (m *recordingModel) NextDelay(op latency.Op, reads, _ uint64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == latency.Read {
		m.reads = append(m.reads, reads)
	}
	return 0
}

func TestBankPassesRunningCountersToModel(t *testing.T) {
	m := &recordingModel{}
	b := NewBank(BinaryInput, 16, WithLatency(m))

	for i := 0; i < 3; i++ {
		_, err := b.Read(0, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1, 2, 3}, m.reads)
}

func TestBankSerializesIncludingDelay(t *testing.T) {
	const delay = 20 * time.Millisecond
	b := NewBank(Holding, 10, WithLatency(latency.Fixed{Read: delay}))

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Read(0, 1)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 3*delay)
}

func TestBanksDoNotBlockEachOther(t *testing.T) {
	const delay = 100 * time.Millisecond
	slow := NewBank(Holding, 10, WithLatency(latency.Fixed{Read: delay}))
	fast := NewBank(Input, 10)

	go func() { _, _ = slow.Read(0, 1) }()
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	_, err := fast.Read(0, 1)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), delay/2)
}

func TestSeedBounds(t *testing.T) {
	b := NewBank(Holding, 4)
	err := b.Seed(3, []uint16{1, 2})
	assert.True(t, errors.Is(err, fault.ErrOutOfRange))

	reads, writes := b.Counters()
	assert.Zero(t, reads)
	assert.Zero(t, writes)
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("HR")
	require.NoError(t, err)
	assert.Equal(t, Holding, r)

	r, err = ParseRegion("2")
	require.NoError(t, err)
	assert.Equal(t, BinaryInput, r)
	assert.True(t, r.IsBit())
	assert.False(t, r.Writable())

	_, err = ParseRegion("eeprom")
	assert.Error(t, err)
}
