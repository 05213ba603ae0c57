package event

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hostile/internal/model"
)

func TestSubscribeTyped(t *testing.T) {
	bus := NewBus()

	var died []EnemyDied
	Subscribe(bus, func(e EnemyDied) { died = append(died, e) })

	var hits int
	Subscribe(bus, func(e PlayerHit) { hits++ })

	bus.Publish(EnemyDied{Header: Header{AgentID: 3, SimTime: 1.5}, RemoveAfter: 5})
	bus.Publish(EnemyAlerted{Header: Header{AgentID: 3}})

	require.Len(t, died, 1)
	assert.Equal(t, uint32(3), died[0].AgentID)
	assert.Equal(t, 5.0, died[0].RemoveAfter)
	assert.Equal(t, 0, hits)
	assert.Equal(t, uint64(2), bus.Published())
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var kinds []Kind
	bus.SubscribeAll(func(e Event) { kinds = append(kinds, e.Kind()) })

	bus.Publish(EnemyAlerted{})
	bus.Publish(EnemyWeaponFired{})
	bus.Publish(EnemyStateChanged{From: model.StatePatrol, To: model.StateAlert})

	assert.Equal(t, []Kind{KindEnemyAlerted, KindEnemyWeaponFired, KindEnemyStateChanged}, kinds)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	var typed, all int
	unsubTyped := Subscribe(bus, func(e EnemyDamaged) { typed++ })
	unsubAll := bus.SubscribeAll(func(e Event) { all++ })

	bus.Publish(EnemyDamaged{})
	unsubTyped()
	unsubAll()
	bus.Publish(EnemyDamaged{})

	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(EnemyDied{}) })
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bus.Publish(EnemyWeaponFired{Header: Header{AgentID: uint32(i)}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, count)
}

func TestKindString(t *testing.T) {
	names := map[string]bool{}
	for _, k := range Kinds {
		name := k.String()
		assert.NotEqual(t, "Unknown", name)
		names[name] = true
	}
	assert.Len(t, names, len(Kinds))
	assert.Equal(t, "Unknown", Kind(0).String())
}

func TestEncode(t *testing.T) {
	env := Encode(PlayerHit{
		Header:   Header{AgentID: 9, SimTime: 12.5},
		PlayerID: 1,
		Amount:   10,
	})
	assert.Equal(t, "PlayerHit", env.Kind)
	assert.Equal(t, uint32(9), env.AgentID)
	assert.Equal(t, 12.5, env.SimTime)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"player_id":1`)

	env = Encode(EnemyStateChanged{From: model.StateChase, To: model.StateSearch})
	raw, err = json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"from":"CHASE"`)
	assert.Contains(t, string(raw), `"to":"SEARCH"`)
}
