package bot

import (
	"log"
	"time"
)

// sessionSweeper is the slice of a feature the janitor needs.
type sessionSweeper interface {
	SweepSessions() int
}

// janitor periodically evicts expired wizard sessions across features. The
// stores already evict lazily on lookup; the sweep frees sessions whose keys
// are never touched again.
type janitor struct {
	sweepers []sessionSweeper
	stopChan chan struct{}
	ticker   *time.Ticker
	interval time.Duration
}

func newJanitor(sweepers []sessionSweeper) *janitor {
	return &janitor{
		sweepers: sweepers,
		stopChan: make(chan struct{}),
		interval: time.Minute,
	}
}

func (j *janitor) start() {
	if j == nil {
		return
	}
	j.ticker = time.NewTicker(j.interval)
	go j.loop()
}

func (j *janitor) stop() {
	if j == nil {
		return
	}
	close(j.stopChan)
	if j.ticker != nil {
		j.ticker.Stop()
	}
}

func (j *janitor) loop() {
	for {
		select {
		case <-j.stopChan:
			return
		case <-j.ticker.C:
			j.sweep()
		}
	}
}

func (j *janitor) sweep() {
	total := 0
	for _, s := range j.sweepers {
		total += s.SweepSessions()
	}
	if total > 0 {
		log.Printf("bot: evicted %d expired wizard sessions", total)
	}
}
