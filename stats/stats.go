package stats

import (
	"fmt"
	"time"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

// Reporter logs the progress of a counter until Stop is called.
type Reporter struct {
	name    string
	counter *RpsCounter
	done    chan struct{}
	stopped chan struct{}
}

// StartReporter logs the count of c every interval.
func StartReporter(name string, c *RpsCounter, interval time.Duration) *Reporter {
	r := &Reporter{
		name:    name,
		counter: c,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(r.stopped)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-r.done:
				log.Printf("[progress] %s", r.counter.Count().String(r.name))
				return
			case <-tick.C:
				log.Printf("[progress] %s", r.counter.Count().String(r.name))
			}
		}
	}()
	return r
}

// Stop logs the final count and waits for the reporter to exit.
func (r *Reporter) Stop() {
	close(r.done)
	<-r.stopped
}

func (c Count) String(name string) string {
	if c.Total > 0 {
		return fmt.Sprintf("%s: %d/%d (%3.0f%%) %7.0f/s",
			name, c.Current, c.Total, float64(c.Current)/float64(c.Total)*100, c.Rps)
	}
	return fmt.Sprintf("%s: %d %7.0f/s", name, c.Current, c.Rps)
}
