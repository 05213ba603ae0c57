package ai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/model"
)

// countingController is a Controller that records ticks.
type countingController struct {
	id      uint32
	state   model.AgentState
	ticks   atomic.Int32
	elapsed atomic.Uint64 // total dt in microseconds
	started atomic.Bool
	stopped atomic.Bool
}

func (c *countingController) Start()                          { c.started.Store(true) }
func (c *countingController) Stop()                           { c.stopped.Store(true) }
func (c *countingController) AgentID() uint32                 { return c.id }
func (c *countingController) CurrentState() model.AgentState { return c.state }
func (c *countingController) Tick(dt float64) {
	c.ticks.Add(1)
	c.elapsed.Add(uint64(dt * 1e6))
}

func TestTickManager_RegisterUnregister(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{})
	c := &countingController{id: 1}

	mgr.Register(c)
	assert.Equal(t, 1, mgr.Count())
	assert.True(t, c.started.Load())

	got, err := mgr.GetController(1)
	require.NoError(t, err)
	assert.Same(t, c, got)

	// Re-registering the same ID replaces without double counting.
	mgr.Register(&countingController{id: 1})
	assert.Equal(t, 1, mgr.Count())

	mgr.Unregister(1)
	assert.Equal(t, 0, mgr.Count())
	_, err = mgr.GetController(1)
	assert.ErrorIs(t, err, ErrControllerNotFound)

	mgr.Unregister(1) // no-op
	assert.Equal(t, 0, mgr.Count())
}

func TestTickManager_StepAdvancesSimTime(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{TickRate: 10})
	c := &countingController{id: 1}
	mgr.Register(c)

	var hooked float64
	mgr.SetAfterStep(func(dt float64) { hooked += dt })

	for range 10 {
		require.NoError(t, mgr.Step(context.Background(), mgr.FixedStep()))
	}

	assert.InDelta(t, 1.0, mgr.Now(), 1e-9)
	assert.InDelta(t, 1.0, hooked, 1e-9)
	assert.Equal(t, int32(10), c.ticks.Load())
	assert.Equal(t, uint64(10), mgr.Steps())
}

func TestTickManager_TimeScaleAndPause(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{})
	c := &countingController{id: 1}
	mgr.Register(c)
	ctx := context.Background()

	mgr.SetTimeScale(2)
	require.NoError(t, mgr.Step(ctx, 0.1))
	assert.InDelta(t, 0.2, mgr.Now(), 1e-9)
	assert.Equal(t, uint64(200000), c.elapsed.Load())

	mgr.Pause()
	assert.True(t, mgr.Paused())
	require.NoError(t, mgr.Step(ctx, 0.1))
	assert.InDelta(t, 0.2, mgr.Now(), 1e-9)
	assert.Equal(t, int32(1), c.ticks.Load(), "paused world does not tick")

	mgr.SetTimeScale(100)
	assert.Equal(t, maxTimeScale, mgr.TimeScale())
	mgr.SetTimeScale(-1)
	assert.Zero(t, mgr.TimeScale())
}

func TestTickManager_ParallelWorkers(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{Workers: 4})
	controllers := make([]*countingController, 50)
	for i := range controllers {
		controllers[i] = &countingController{id: uint32(i + 1)}
		mgr.Register(controllers[i])
	}

	for range 20 {
		require.NoError(t, mgr.Step(context.Background(), 0.05))
	}

	for _, c := range controllers {
		assert.Equal(t, int32(20), c.ticks.Load(), "agent %d", c.id)
	}
}

func TestTickManager_ControllersOrdered(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{})
	for _, id := range []uint32{5, 1, 3} {
		mgr.Register(&countingController{id: id})
	}

	var ids []uint32
	for _, c := range mgr.Controllers() {
		ids = append(ids, c.AgentID())
	}
	assert.Equal(t, []uint32{1, 3, 5}, ids)
}

func TestTickManager_RemovesDeadAfterDelay(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{RemovalDelay: 1})
	dead := &countingController{id: 1, state: model.StateDead}
	alive := &countingController{id: 2, state: model.StateIdle}
	mgr.Register(dead)
	mgr.Register(alive)

	var removed []uint32
	mgr.SetOnRemove(func(id uint32) { removed = append(removed, id) })

	ctx := context.Background()
	for range 10 {
		require.NoError(t, mgr.Step(ctx, 0.1))
	}
	assert.Equal(t, 2, mgr.Count(), "corpse stays for the removal delay")

	require.NoError(t, mgr.Step(ctx, 0.1))
	assert.Equal(t, 1, mgr.Count())
	assert.Equal(t, []uint32{1}, removed)
	assert.True(t, dead.stopped.Load())
	assert.False(t, alive.stopped.Load())
}

func TestTickManager_Start(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{TickRate: 100})
	c := &countingController{id: 1}
	mgr.Register(c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(ctx)
	}()

	require.Eventually(t, func() bool { return c.ticks.Load() >= 5 }, time.Second, 5*time.Millisecond)

	mgr.Stop()
	mgr.Stop() // idempotent

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestTickManager_StartCanceled(t *testing.T) {
	mgr := NewTickManager(ManagerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, mgr.Start(ctx), context.Canceled)
}

func TestTickManager_DrivesAgents(t *testing.T) {
	f := newAgentFixture(t, model.V3(0, 0, 14), nil, nil)
	mgr := NewTickManager(ManagerConfig{Workers: 2})
	mgr.SetAfterStep(f.mover.Step)
	mgr.Register(f.ai)

	for range 60 {
		require.NoError(t, mgr.Step(context.Background(), 0.1))
	}
	assert.Equal(t, model.StateAttack, f.ai.CurrentState())

	f.ai.TakeDamage(1000)
	for range 60 {
		require.NoError(t, mgr.Step(context.Background(), 0.1))
	}
	assert.Zero(t, mgr.Count(), "dead agent removed after default delay")
}
