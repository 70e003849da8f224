package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_ScheduleFiresOnAdvanceTime(t *testing.T) {
	tc := NewTest()
	fired := false
	tc.Schedule(tc.Now().Add(time.Second), func() { fired = true })

	n := tc.AdvanceTime(500 * time.Millisecond)
	assert.Equal(t, 0, n)
	assert.False(t, fired)

	n = tc.AdvanceTime(600 * time.Millisecond)
	assert.Equal(t, 1, n)
	assert.True(t, fired)
}

func TestTest_PeriodicReschedulesWithinSameWindow(t *testing.T) {
	tc := NewTest()
	var fires []time.Time
	tc.SchedulePeriodically(tc.Now().Add(time.Second), func() {
		fires = append(fires, tc.Now())
	}, time.Second)

	n := tc.AdvanceTime(3500 * time.Millisecond)
	assert.Equal(t, 3, n)
	require.Len(t, fires, 3)
}

func TestTest_TriggerTimeoutFiresEarliestRegardlessOfTargetTime(t *testing.T) {
	tc := NewTest()
	var order []string
	tc.Schedule(tc.Now().Add(5*time.Second), func() { order = append(order, "late") })
	tc.Schedule(tc.Now().Add(time.Second), func() { order = append(order, "early") })

	require.True(t, tc.TriggerTimeout())
	assert.Equal(t, []string{"early"}, order)
	assert.True(t, tc.HasPendingTimeout())
}

func TestTest_TriggerTimeoutsFiresAllPendingOnce(t *testing.T) {
	tc := NewTest()
	count := 0
	for i := 0; i < 3; i++ {
		tc.Schedule(tc.Now().Add(time.Duration(i)*time.Second), func() { count++ })
	}
	n := tc.TriggerTimeouts()
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, count)
	assert.False(t, tc.HasPendingTimeout())
}

func TestTest_DisposeCancelsBeforeFiring(t *testing.T) {
	tc := NewTest()
	fired := false
	d := tc.Schedule(tc.Now().Add(time.Second), func() { fired = true })
	d.Dispose()

	tc.AdvanceTime(2 * time.Second)
	assert.False(t, fired)
	assert.False(t, tc.HasPendingTimeout())
}

func TestTest_NextTimeoutReportsEarliestPending(t *testing.T) {
	tc := NewTest()
	t1 := tc.Now().Add(2 * time.Second)
	t2 := tc.Now().Add(time.Second)
	tc.Schedule(t1, func() {})
	tc.Schedule(t2, func() {})
	assert.True(t, tc.NextTimeout().Equal(t2))
}
