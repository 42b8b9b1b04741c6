package cell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_GetAndVersion(t *testing.T) {
	c := New("a")
	assert.Equal(t, "a", c.Get())
	assert.Equal(t, uint64(0), c.Version())

	c.Set("b")
	assert.Equal(t, "b", c.Get())
	assert.Equal(t, uint64(1), c.Version())
}

func TestCell_SetAlwaysNotifies(t *testing.T) {
	c := New(1)
	rx := c.Subscribe()

	c.Set(1)
	assert.True(t, rx.HasChanged(), "Set must notify even for an equal value")
}

func TestCell_SetIfSkipsUnchanged(t *testing.T) {
	c := New("same")
	rx := c.Subscribe()

	changed := c.SetIf(func(v *string) bool {
		if *v == "same" {
			return false
		}

		*v = "same"

		return true
	})

	assert.False(t, changed)
	assert.False(t, rx.HasChanged())
	assert.Equal(t, uint64(0), c.Version())
}

func TestCell_SetIfRejectedLeavesValueUntouched(t *testing.T) {
	c := New("keep")

	c.SetIf(func(v *string) bool {
		*v = "scratch"
		return false
	})

	assert.Equal(t, "keep", c.Get())
}

func TestReceiver_NextReturnsLatest(t *testing.T) {
	c := New(0)
	rx := c.Subscribe()

	c.Set(1)
	c.Set(2)
	c.Set(3)

	got, err := rx.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got, "intermediate values are coalesced")
	assert.False(t, rx.HasChanged())
}

func TestReceiver_NextBlocksUntilChange(t *testing.T) {
	c := New("initial")
	rx := c.Subscribe()

	done := make(chan string, 1)
	go func() {
		v, err := rx.Next(context.Background())
		if err == nil {
			done <- v
		}
	}()

	select {
	case <-done:
		t.Fatal("Next returned before any change")
	case <-time.After(30 * time.Millisecond):
	}

	c.Set("updated")

	select {
	case v := <-done:
		assert.Equal(t, "updated", v)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake up")
	}
}

func TestReceiver_ContextCancel(t *testing.T) {
	c := New(0)
	rx := c.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := rx.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReceiver_Close(t *testing.T) {
	c := New(0)
	rx := c.Subscribe()

	c.Set(7)
	c.Close()

	v, err := rx.Next(context.Background())
	require.NoError(t, err, "pending value is delivered before ErrClosed")
	assert.Equal(t, 7, v)

	_, err = rx.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	c.Set(8)
	assert.Equal(t, 7, c.Get(), "writes after Close are ignored")
	assert.True(t, c.Closed())
}

func TestReceiver_MarkChanged(t *testing.T) {
	c := New("seed")
	rx := c.Subscribe()
	rx.MarkChanged()

	v, err := rx.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seed", v)
}

func TestReceiver_IndependentSubscribers(t *testing.T) {
	c := New(0)
	a := c.Subscribe()
	b := c.Subscribe()

	c.Set(1)

	va, err := a.Next(context.Background())
	require.NoError(t, err)

	vb, err := b.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, va)
	assert.Equal(t, 1, vb)
}

func TestCell_ModifyWithCloneIsCopyOnWrite(t *testing.T) {
	clone := func(m map[string]int) map[string]int {
		out := make(map[string]int, len(m))
		for k, v := range m {
			out[k] = v
		}

		return out
	}

	c := New(map[string]int{"a": 1}, WithClone(clone))
	before := c.Get()

	c.Modify(func(m *map[string]int) {
		(*m)["a"] = 2
	})

	assert.Equal(t, 1, before["a"], "handed-out value must not change")
	assert.Equal(t, 2, c.Get()["a"])
}

func TestCell_ConcurrentWriters(t *testing.T) {
	c := New(0)
	rx := c.Subscribe()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.Modify(func(v *int) { *v++ })
		}()
	}

	wg.Wait()

	assert.Equal(t, 50, c.Get())
	assert.Equal(t, uint64(50), c.Version())

	v, err := rx.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, v)
}
