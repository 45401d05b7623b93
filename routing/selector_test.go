package routing_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

func Test_FirstReplica_IsDeterministic(t *testing.T) {
	replicas := []routing.Identity{"a", "b", "c"}

	for range 5 {
		assert.Equal(t, routing.Identity("a"), routing.FirstReplica{}.Select(replicas))
	}
}

func Test_RoundRobin_CyclesInOrder(t *testing.T) {
	// arrange
	selector := routing.NewRoundRobin()
	replicas := []routing.Identity{"a", "b", "c"}

	// act
	got := make([]routing.Identity, 0, 6)
	for range 6 {
		got = append(got, selector.Select(replicas))
	}

	// assert
	assert.Equal(t, []routing.Identity{"a", "b", "c", "a", "b", "c"}, got)
}

func Test_RoundRobin_SpreadsEvenlyUnderConcurrency(t *testing.T) {
	// setup
	selector := routing.NewRoundRobin()
	replicas := []routing.Identity{"a", "b"}

	var mu sync.Mutex
	var wg sync.WaitGroup
	counts := map[routing.Identity]int{}

	// act
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identity := selector.Select(replicas)

			mu.Lock()
			counts[identity]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, 50, counts["a"])
	assert.Equal(t, 50, counts["b"])
}

func Test_ParseSelector(t *testing.T) {
	first, err := routing.ParseSelector("")
	require.NoError(t, err)
	assert.IsType(t, routing.FirstReplica{}, first)

	roundRobin, err := routing.ParseSelector("round_robin")
	require.NoError(t, err)
	assert.IsType(t, &routing.RoundRobin{}, roundRobin)

	_, err = routing.ParseSelector("random")
	assert.ErrorIs(t, err, routing.ErrUnknownSelector)
}
