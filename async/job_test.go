package async

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfterRuns(t *testing.T) {
	var ran atomic.Bool
	j := After(10*time.Millisecond, func() { ran.Store(true) })
	select {
	case <-j.Done():
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}
	assert.True(t, ran.Load())
}

func TestCancelBeforeRunPreventsExecution(t *testing.T) {
	var ran atomic.Bool
	j := After(time.Hour, func() { ran.Store(true) })
	assert.True(t, j.Cancel(), "cancel before the timer fires must prevent the run")
	<-j.Done()
	assert.False(t, ran.Load())
}

func TestCancelAfterRunReportsFalse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	j := After(time.Millisecond, func() {
		close(started)
		<-release
	})
	<-started
	prevented := j.Cancel()
	close(release)
	<-j.Done()
	assert.False(t, prevented, "work already started")
}

func TestEveryRepeatsUntilCancel(t *testing.T) {
	var runs atomic.Int32
	j := Every(10*time.Millisecond, func() { runs.Add(1) })
	time.Sleep(55 * time.Millisecond)
	j.Cancel()
	<-j.Done()
	n := runs.Load()
	assert.GreaterOrEqual(t, n, int32(2))
	final := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, final, runs.Load(), "no runs after cancel")
}

func TestAtPastTimeRunsImmediately(t *testing.T) {
	var ran atomic.Bool
	j := At(time.Now().Add(-time.Second), func() { ran.Store(true) })
	select {
	case <-j.Done():
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}
	assert.True(t, ran.Load())
}
