package session

import (
	"sync"
	"time"
)

// ticker runs a tick function at a fixed interval on its own goroutine until
// stopped. Stop is idempotent and safe to call from inside the tick function,
// which is how the engine disarms the countdown on the timeout path itself.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func newTicker(interval time.Duration, tick func()) *ticker {
	t := &ticker{stop: make(chan struct{})}
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				tick()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func (t *ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
