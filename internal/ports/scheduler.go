package ports

import (
	"sync"
	"time"
)

type Scheduler interface {
	// Every runs fn once per interval until the returned stop func is called.
	Every(interval time.Duration, fn func()) (stop func())
}

type SystemScheduler struct{}

func (SystemScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
