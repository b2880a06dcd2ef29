package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThreadPool(maxStates int) (*DocumentsWriterPerThreadPool, *int) {
	created := new(int)
	return NewDocumentsWriterPerThreadPool(maxStates, func() *ThreadState {
		*created++
		return &ThreadState{}
	}), created
}

func TestThreadPoolReusesReleasedStates(t *testing.T) {
	tp, created := newTestThreadPool(2)
	ctx := context.Background()

	a, err := tp.getAndLock(ctx)
	require.NoError(t, err)
	b, err := tp.getAndLock(ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, *created)

	tp.release(a)
	c, err := tp.getAndLock(ctx)
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, 2, *created)
	assert.Equal(t, 2, tp.numThreadStates())

	tp.release(b)
	tp.release(c)
	var seen []*ThreadState
	tp.foreach(func(state *ThreadState) { seen = append(seen, state) })
	assert.Equal(t, []*ThreadState{a, b}, seen)
}

func TestThreadPoolBlocksWhenExhausted(t *testing.T) {
	tp, _ := newTestThreadPool(1)
	held, err := tp.getAndLock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tp.getAndLock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	got := make(chan *ThreadState)
	go func() {
		ts, err := tp.getAndLock(context.Background())
		if err != nil {
			close(got)
			return
		}
		got <- ts
	}()
	tp.release(held)
	assert.Same(t, held, <-got)
}

func TestThreadPoolRejectsZeroStates(t *testing.T) {
	assert.PanicsWithValue(t, "maxThreadStates must be >= 1 but was: 0", func() {
		newTestThreadPool(0)
	})
}
