package watch_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playforge/gamekit/pkg/watch"
)

func TestValue_GetSet(t *testing.T) {
	t.Parallel()

	v := watch.NewValue("initial")
	assert.Equal(t, "initial", v.Get())

	v.Set("updated")
	assert.Equal(t, "updated", v.Get())
}

func TestValue_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("notifies on set", func(t *testing.T) {
		t.Parallel()

		v := watch.NewValue(0)
		var got []int
		v.Subscribe(func(n int) { got = append(got, n) })

		v.Set(1)
		v.Set(2)

		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("no notification at subscription time", func(t *testing.T) {
		t.Parallel()

		v := watch.NewValue(7)
		called := false
		v.Subscribe(func(int) { called = true })

		assert.False(t, called)
	})

	t.Run("multiple subscribers see same update", func(t *testing.T) {
		t.Parallel()

		v := watch.NewValue("")
		var a, b string
		v.Subscribe(func(s string) { a = s })
		v.Subscribe(func(s string) { b = s })

		v.Set("hello")
		assert.Equal(t, "hello", a)
		assert.Equal(t, "hello", b)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		t.Parallel()

		v := watch.NewValue(0)
		count := 0
		stop := v.Subscribe(func(int) { count++ })

		v.Set(1)
		stop()
		v.Set(2)

		assert.Equal(t, 1, count)
		assert.Equal(t, 0, v.Len())
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		t.Parallel()

		v := watch.NewValue(0)
		stop := v.Subscribe(func(int) {})
		stop()
		assert.NotPanics(t, func() { stop() })
	})
}

func TestValue_Concurrent(t *testing.T) {
	t.Parallel()

	v := watch.NewValue(0)
	var mu sync.Mutex
	seen := 0
	v.Subscribe(func(int) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, seen)
}
