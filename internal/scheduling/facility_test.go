package scheduling

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCronFacilityRunsOnce(t *testing.T) {
	f := NewCronFacility(zap.NewNop())
	f.Start()
	defer f.Stop()

	var calls atomic.Int32
	f.AfterFunc(time.Now().Add(30*time.Millisecond), func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Eventually(t, func() bool { return f.Entries() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCronFacilityPastDeadlineRunsImmediately(t *testing.T) {
	f := NewCronFacility(zap.NewNop())
	f.Start()
	defer f.Stop()

	var calls atomic.Int32
	f.AfterFunc(time.Now().Add(-time.Second), func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCronFacilityCancel(t *testing.T) {
	f := NewCronFacility(zap.NewNop())
	f.Start()
	defer f.Stop()

	var calls atomic.Int32
	cancel := f.AfterFunc(time.Now().Add(50*time.Millisecond), func() { calls.Add(1) })
	cancel()
	cancel()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, f.Entries())
}

func TestOnceScheduleNext(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	s := &onceSchedule{at: at}

	assert.Equal(t, at, s.Next(at.Add(-time.Minute)))
	assert.Equal(t, at, s.Next(at.Add(-time.Second)))
	assert.True(t, s.Next(at).IsZero())

	late := &onceSchedule{at: at}
	assert.Equal(t, at, late.Next(at.Add(time.Minute)))
	assert.True(t, late.Next(at.Add(time.Minute)).IsZero())
}
