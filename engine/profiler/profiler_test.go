package profiler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTick_ReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		withClock(clock.now),
		WithUpdateInterval(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	for i := 0; i < 59; i++ {
		clock.t = clock.t.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())

	clock.t = time.Unix(2, 0)
	assert.True(t, p.Tick())
	assert.InDelta(t, 30.0, p.FPS(), 1e-9)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "fps=30")

	// the counter restarts after a report
	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestNewProfiler_IgnoresInvalidOptions(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(0), WithLogger(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.Equal(t, slog.Default(), p.logger)
	assert.Zero(t, p.FPS())
}

func TestNewProfiler_SeedsMemoryBaseline(t *testing.T) {
	runtime.GC()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	p := NewProfiler()

	assert.GreaterOrEqual(t, p.lastTotalAlloc, before.TotalAlloc)
	assert.NotZero(t, p.lastTotalAlloc)
	assert.GreaterOrEqual(t, p.lastGCCount, before.NumGC)
	assert.NotZero(t, p.lastGCCount)
}

func TestTick_FirstRateExcludesEarlierAllocations(t *testing.T) {
	// churn well past anything the first interval allocates
	sink := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		sink = append(sink, make([]byte, 1<<20))
	}
	_ = sink

	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		withClock(clock.now),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
	)
	clock.t = clock.t.Add(time.Second)
	require.True(t, p.Tick())

	var record struct {
		AllocRate float64 `json:"alloc_rate_mb_s"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Less(t, record.AllocRate, 32.0)
}
