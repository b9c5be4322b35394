package entity

import (
	"runtime"
	"time"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

// Run is the actor loop. It blocks until ready is closed, then paces frames
// until a kill is processed. Done is closed on return.
func (e *Entity) Run(ready <-chan struct{}) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(e.done)

	if e.opts.DedicatedThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	<-ready

	e.setState(StateRunning)
	e.log.Debug("actor running")

	// the first frame is taken to have lasted exactly one target frame
	last := time.Now().Add(-e.opts.TargetFrame)
	var work time.Duration
	for {
		now := time.Now()
		elapsed := now.Sub(last)
		last = now
		avg := e.recordFrame(elapsed)

		e.pace(e.opts.TargetFrame - work)
		start := time.Now()

		frameTime := 1 / avg
		if !e.mailbox.Killed() {
			e.dispatch(event.New(event.FlagUpdate).WithFrameTime(frameTime))
		} else {
			e.setState(StateDraining)
		}

		if stop := e.drain(frameTime); stop {
			e.terminate()
			return nil
		}

		e.frames.Add(1)
		work = time.Since(start)
	}
}

// recordFrame pushes 1/elapsed into the window and returns the new average
func (e *Entity) recordFrame(elapsed time.Duration) float64 {
	if elapsed < time.Microsecond {
		elapsed = time.Microsecond
	}
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	e.fps.Push(1 / elapsed.Seconds())
	return e.fps.Average()
}

// pace sleeps for d, waking early when a kill is posted
func (e *Entity) pace(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-e.mailbox.killCh:
	}
}

// drain delivers the queued messages in order. It reports true when the
// actor must stop: a kill was reached, or a front kill arrived while the
// batch was being processed.
func (e *Entity) drain(frameTime float64) bool {
	batch, gen, ok := e.mailbox.take(e.opts.MailboxSpin)
	if !ok {
		return false
	}
	defer recycle(batch)
	for _, msg := range batch {
		if msg.Kind == MessageKill || e.mailbox.preempted(gen) {
			return true
		}
		e.dispatch(msg.delivered().WithFrameTime(frameTime))
	}
	return false
}

// dispatch hands ev to every interested component. A failing component is
// logged and counted; the others still see the event.
func (e *Entity) dispatch(ev event.Event) {
	for _, c := range e.snapshot() {
		handled, err := c.deliver(ev)
		if handled {
			e.dispatched.Add(1)
		}
		if err != nil {
			e.failures.Add(1)
			e.log.Warn("component handler failed",
				log.String("component_name", c.componentName()),
				log.Stringer("event", ev),
				log.Error(err),
			)
		}
	}
}

func (e *Entity) terminate() {
	e.setState(StateDraining)
	if dropped := e.mailbox.close(); dropped > 0 {
		e.log.Debug("discarded queued messages", log.Int("count", dropped))
	}
	for _, c := range e.seal() {
		if err := c.detach(); err != nil {
			e.failures.Add(1)
			e.log.Warn("component detach failed",
				log.String("component_name", c.componentName()),
				log.Error(err),
			)
		}
	}
	e.setState(StateTerminated)
	e.log.Debug("actor terminated")
}
