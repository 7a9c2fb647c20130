// Package poll re-fetches a snapshot on a fixed interval.
//
// Polling is the only recurring background work in blueprint: the
// execution view re-reads its execution every few seconds and re-projects
// it. A Poller runs one fetch at a time and stops when its context is
// cancelled, which is how a torn-down view stops receiving updates.
package poll

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Poller calls Fetch immediately and then every Interval.
//
// Successful snapshots go to OnUpdate, failures to OnError; a failure does
// not stop polling unless Fatal reports it as fatal, in which case the
// poller stops after delivering it. When Done is set and returns true for a
// snapshot, the poller stops after delivering it. Ticks that arrive while a
// fetch is in flight are dropped.
type Poller[T any] struct {
	Fetch    func(ctx context.Context) (T, error)
	Interval time.Duration
	Done     func(T) bool
	Fatal    func(error) bool
	OnUpdate func(T)
	OnError  func(error)
	Logger   *log.Logger
}

// Run polls until ctx is cancelled, Done holds or a fetch fails fatally.
// It returns nil when Done stopped it, the fatal error, or ctx.Err().
func (p *Poller[T]) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if stop, err := p.poll(ctx); stop {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if stop, err := p.poll(ctx); stop {
				return err
			}
		}
	}
}

// poll runs one fetch and reports whether polling should stop, with the
// fatal error that stopped it.
func (p *Poller[T]) poll(ctx context.Context) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}
	v, err := p.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		fatal := p.Fatal != nil && p.Fatal(err)
		if p.Logger != nil {
			p.Logger.Debug("poll failed", "error", err, "fatal", fatal)
		}
		if p.OnError != nil {
			p.OnError(err)
		}
		return fatal, err
	}
	if p.OnUpdate != nil {
		p.OnUpdate(v)
	}
	return p.Done != nil && p.Done(v), nil
}

// Update is one delivery of Watch: a snapshot or the error of a failed fetch.
type Update[T any] struct {
	Value T
	Err   error
}

// Watch runs the poller in a goroutine and delivers every result on the
// returned channel. The channel is closed when polling stops, so a fatal
// error is the last delivery. OnUpdate and
// OnError are ignored.
func Watch[T any](ctx context.Context, p Poller[T]) <-chan Update[T] {
	ch := make(chan Update[T])
	send := func(u Update[T]) {
		select {
		case ch <- u:
		case <-ctx.Done():
		}
	}
	p.OnUpdate = func(v T) { send(Update[T]{Value: v}) }
	p.OnError = func(err error) { send(Update[T]{Err: err}) }

	go func() {
		defer close(ch)
		_ = p.Run(ctx)
	}()
	return ch
}
