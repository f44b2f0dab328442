package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFiresOnceAndInOrder(t *testing.T) {
	sched := NewManualScheduler()

	var order []int
	sched.AfterFunc(time.Second, func() { order = append(order, 1) })
	sched.AfterFunc(time.Minute, func() { order = append(order, 2) })
	assert.Equal(t, 2, sched.Pending())

	sched.Fire()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, sched.Pending())

	sched.Fire()
	assert.Equal(t, []int{1, 2}, order)
}

func TestManualSchedulerCancel(t *testing.T) {
	sched := NewManualScheduler()

	ran := false
	cancel := sched.AfterFunc(time.Second, func() { ran = true })
	cancel()

	sched.Fire()
	assert.False(t, ran)
}

func TestEffectRegistryRunsScheduledAction(t *testing.T) {
	sched := NewManualScheduler()
	reg := newEffectRegistry(sched)

	runs := 0
	reg.schedule(time.Second, func() { runs++ })

	sched.Fire()
	assert.Equal(t, 1, runs)

	// A second fire of the same timer must not re-run the action.
	sched.Fire()
	assert.Equal(t, 1, runs)
}

func TestEffectRegistryResetInvalidatesPendingActions(t *testing.T) {
	sched := NewManualScheduler()
	reg := newEffectRegistry(sched)

	runs := 0
	reg.schedule(time.Second, func() { runs++ })
	reg.schedule(time.Second, func() { runs++ })

	reg.reset()
	sched.Fire()
	assert.Equal(t, 0, runs)

	// The registry stays usable after a reset.
	reg.schedule(time.Second, func() { runs++ })
	sched.Fire()
	assert.Equal(t, 1, runs)
}
