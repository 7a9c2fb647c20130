package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() (func(ctx context.Context) (int, error), *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) (int, error) {
		return int(n.Add(1)), nil
	}, &n
}

func TestRun_StopsWhenDone(t *testing.T) {
	fetch, calls := counter()
	var seen []int
	p := &Poller[int]{
		Fetch:    fetch,
		Interval: time.Millisecond,
		Done:     func(v int) bool { return v == 3 },
		OnUpdate: func(v int) { seen = append(seen, v) },
	}

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRun_FirstFetchIsImmediate(t *testing.T) {
	fetch, calls := counter()
	p := &Poller[int]{
		Fetch:    fetch,
		Interval: time.Hour,
		Done:     func(int) bool { return true },
	}
	require.NoError(t, p.Run(context.Background()))
	assert.EqualValues(t, 1, calls.Load())
}

func TestRun_ErrorsDoNotStopPolling(t *testing.T) {
	boom := errors.New("boom")
	var n atomic.Int32
	var errs []error
	p := &Poller[int]{
		Fetch: func(context.Context) (int, error) {
			if n.Add(1) <= 2 {
				return 0, boom
			}
			return 7, nil
		},
		Interval: time.Millisecond,
		Done:     func(v int) bool { return v == 7 },
		OnError:  func(err error) { errs = append(errs, err) },
	}

	require.NoError(t, p.Run(context.Background()))
	assert.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], boom)
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch, calls := counter()
	p := &Poller[int]{
		Fetch:    fetch,
		Interval: time.Millisecond,
		OnUpdate: func(v int) {
			if v == 2 {
				cancel()
			}
		},
	}

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRun_NoFetchAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetch, calls := counter()
	p := &Poller[int]{Fetch: fetch, Interval: time.Millisecond}

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestWatch(t *testing.T) {
	boom := errors.New("boom")
	var n atomic.Int32
	ch := Watch(context.Background(), Poller[int]{
		Fetch: func(context.Context) (int, error) {
			v := int(n.Add(1))
			if v == 2 {
				return 0, boom
			}
			return v, nil
		},
		Interval: time.Millisecond,
		Done:     func(v int) bool { return v >= 3 },
	})

	var got []Update[int]
	for u := range ch {
		got = append(got, u)
	}
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Value)
	assert.ErrorIs(t, got[1].Err, boom)
	assert.Equal(t, 3, got[2].Value)
}

func TestWatch_ClosedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch, _ := counter()
	ch := Watch(ctx, Poller[int]{Fetch: fetch, Interval: time.Millisecond})

	<-ch
	cancel()
	for range ch {
	}
}

func TestRun_FatalStops(t *testing.T) {
	boom := errors.New("bad data")
	var calls atomic.Int32
	var errs []error
	p := &Poller[int]{
		Fetch: func(context.Context) (int, error) {
			calls.Add(1)
			return 0, boom
		},
		Interval: time.Millisecond,
		Fatal:    func(err error) bool { return errors.Is(err, boom) },
		OnError:  func(err error) { errs = append(errs, err) },
	}

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, calls.Load())
	assert.Len(t, errs, 1)
}

func TestWatch_FatalIsLast(t *testing.T) {
	boom := errors.New("bad data")
	var n atomic.Int32
	ch := Watch(context.Background(), Poller[int]{
		Fetch: func(context.Context) (int, error) {
			if n.Add(1) == 1 {
				return 1, nil
			}
			return 0, boom
		},
		Interval: time.Millisecond,
		Fatal:    func(err error) bool { return errors.Is(err, boom) },
	})

	var got []Update[int]
	for u := range ch {
		got = append(got, u)
	}
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Value)
	assert.ErrorIs(t, got[1].Err, boom)
	assert.EqualValues(t, 2, n.Load())
}
