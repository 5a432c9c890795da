package task

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Group is a group of tasks which should each be executed concurrently,
// and which should be collectively blocked on until all are complete.
// Tasks should be preemptable, and the first task to return a non-nil
// error cancels the entire Group. Group is not itself thread-safe.
type Group struct {
	// Context of the Group, which is cancelled by:
	//  * Any function of the Group returning non-nil error, or
	//  * An explicit call to Cancel, or
	//  * A cancellation of the parent Context of the Group.
	ctx      context.Context
	cancelFn context.CancelFunc

	tasks   []task
	eg      *errgroup.Group
	started bool
}

type task struct {
	desc string
	fn   func() error
}

// NewGroup returns a new, empty Group with the given Context.
func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{ctx: ctx, eg: eg, cancelFn: cancel}
}

// Context returns the Group Context.
func (g *Group) Context() context.Context { return g.ctx }

// Cancel the Group Context.
func (g *Group) Cancel() { g.cancelFn() }

// Queue a function for execution with the Group, under description |desc|.
// Queue panics if called after GoRun.
func (g *Group) Queue(desc string, fn func() error) {
	if g.started {
		panic("Queue called after GoRun")
	}
	g.tasks = append(g.tasks, task{desc: desc, fn: fn})
}

// Descriptions of queued tasks, in Queue order.
func (g *Group) Descriptions() []string {
	var out = make([]string, len(g.tasks))
	for i, t := range g.tasks {
		out[i] = t.desc
	}
	return out
}

// GoRun all queued functions. GoRun panics if called more than once.
func (g *Group) GoRun() {
	if g.started {
		panic("GoRun already called")
	}
	g.started = true

	for i := range g.tasks {
		var t = g.tasks[i]
		g.eg.Go(func() error {
			var err = t.fn()

			if err != nil && g.ctx.Err() == nil {
				log.WithFields(log.Fields{"task": t.desc, "err": err}).Warn("task failed; cancelling group")
			} else {
				log.WithField("task", t.desc).Debug("task exited")
			}
			return errors.WithMessage(err, t.desc)
		})
	}
}

// Wait for started functions, returning only after all complete.
// The first encountered non-nil error is returned.
// Wait panics if GoRun was not called.
func (g *Group) Wait() error {
	if !g.started {
		panic("Wait called before GoRun")
	}
	return g.eg.Wait()
}
