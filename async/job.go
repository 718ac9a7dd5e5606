package async

import (
	"sync"
	"time"
)

// Job is the handle to a deferred or repeating unit of work created by
// After, At or Every.
type Job struct {
	mu       sync.Mutex
	started  bool
	canceled bool
	stop     chan struct{}
	done     chan struct{}
}

func newJob() *Job {
	return &Job{stop: make(chan struct{}), done: make(chan struct{})}
}

// Cancel prevents any pending execution and stops a repeating job's future
// runs. It reports whether the work was prevented from ever running:
// cancellation before the work starts guarantees non-execution; after it
// has started, the in-flight run is not interrupted.
func (j *Job) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.canceled {
		j.canceled = true
		close(j.stop)
	}
	return !j.started
}

// Done returns a channel closed once the job will never run again (after
// cancellation or, for one-shot jobs, after the work returns).
func (j *Job) Done() <-chan struct{} { return j.done }

// beginRun flips the started flag unless the job was cancelled in the
// window between the timer firing and the work starting.
func (j *Job) beginRun() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.canceled {
		return false
	}
	j.started = true
	return true
}

// After schedules fn to run once after delay d.
func After(d time.Duration, fn func()) *Job {
	j := newJob()
	go func() {
		defer close(j.done)
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-j.stop:
			return
		}
		if j.beginRun() {
			fn()
		}
	}()
	return j
}

// At schedules fn to run once at the absolute time t. A time in the past
// runs immediately.
func At(t time.Time, fn func()) *Job {
	return After(time.Until(t), fn)
}

// Every schedules fn to run repeatedly at a fixed interval until the job is
// cancelled. The first run happens after one interval. Runs do not overlap:
// a slow fn delays subsequent ticks.
func Every(interval time.Duration, fn func()) *Job {
	j := newJob()
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-j.stop:
				return
			}
			if !j.beginRun() {
				return
			}
			fn()
		}
	}()
	return j
}
