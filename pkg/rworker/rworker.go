package rworker

import "sync"

// Job runs fn on its own goroutine, bounded by the rate channel's capacity.
// A non-nil error is pushed to errCh unless the channel is full.
func Job(wg *sync.WaitGroup, fn func() error, rate chan struct{}, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		rate <- struct{}{}
		if err := fn(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		<-rate
	}()
}
