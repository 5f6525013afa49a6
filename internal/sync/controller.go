package sync

import (
	"context"
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/modulesync/internal/editsource"
	"github.com/nhle/modulesync/internal/metrics"
	"github.com/nhle/modulesync/internal/modulelist"
)

const (
	eventBuffer  = 64
	signalBuffer = 64
)

// StateMsg is a tea.Msg carrying the latest model snapshot.
type StateMsg struct {
	Model modulelist.Model
}

// SignalMsg is a tea.Msg carrying a presentation effect for the view.
type SignalMsg struct {
	Effect modulelist.Effect
}

// Controller owns one course's module list model. Events from the view,
// from the edit bus and from finished effects are applied one at a time on
// a single goroutine, so the model is never shared.
type Controller struct {
	runner *Runner
	bus    *editsource.Bus
	log    *zap.SugaredLogger

	model modulelist.Model

	events  chan modulelist.Event
	states  chan modulelist.Model
	signals chan modulelist.Effect

	pageCancel context.CancelFunc
	bulkCancel context.CancelFunc
	effects    gosync.WaitGroup

	mu      gosync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewController creates a controller for the initial model. bus may be nil.
func NewController(initial modulelist.Model, runner *Runner, bus *editsource.Bus, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{
		runner:  runner,
		bus:     bus,
		log:     log,
		model:   initial,
		events:  make(chan modulelist.Event, eventBuffer),
		states:  make(chan modulelist.Model, 1),
		signals: make(chan modulelist.Effect, signalBuffer),
		done:    make(chan struct{}),
	}
}

// Start runs the event loop until ctx is cancelled or Stop is called. The
// first page load begins immediately.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	var sub *editsource.Subscription
	if c.bus != nil {
		sub = c.bus.Subscribe()
	}

	go c.loop(ctx, sub)
}

// Stop halts the loop, cancels in-flight effects and waits for them.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	<-c.done
}

// Dispatch queues an event. It returns false once the controller stopped.
func (c *Controller) Dispatch(ev modulelist.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// States delivers model snapshots. Only the most recent unread snapshot is
// kept. The channel is closed when the loop exits.
func (c *Controller) States() <-chan modulelist.Model {
	return c.states
}

// Signals delivers presentation effects in order. The channel is closed
// when the loop exits.
func (c *Controller) Signals() <-chan modulelist.Effect {
	return c.signals
}

// WaitForState returns a tea.Cmd that waits for the next model snapshot.
func (c *Controller) WaitForState() tea.Cmd {
	return func() tea.Msg {
		m, ok := <-c.states
		if !ok {
			return nil
		}
		return StateMsg{Model: m}
	}
}

// WaitForSignal returns a tea.Cmd that waits for the next presentation effect.
func (c *Controller) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		eff, ok := <-c.signals
		if !ok {
			return nil
		}
		return SignalMsg{Effect: eff}
	}
}

func (c *Controller) loop(ctx context.Context, sub *editsource.Subscription) {
	defer func() {
		if c.pageCancel != nil {
			c.pageCancel()
		}
		if c.bulkCancel != nil {
			c.bulkCancel()
		}
		if sub != nil {
			sub.Close()
		}
		c.effects.Wait()
		close(c.states)
		close(c.signals)
		close(c.done)
	}()

	var notifications <-chan editsource.Notification
	if sub != nil {
		notifications = sub.C()
	}

	next, effects := modulelist.Init(c.model)
	c.commit(ctx, next, effects)
	c.log.Infow("controller started", "course", c.model.Course.ID)

	for {
		select {
		case <-ctx.Done():
			c.log.Infow("controller stopped", "course", c.model.Course.ID)
			return
		case ev := <-c.events:
			c.apply(ctx, ev)
		case n, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			c.apply(ctx, eventForNotification(n))
		}
	}
}

func eventForNotification(n editsource.Notification) modulelist.Event {
	if n.Action == editsource.ActionDeleted {
		return modulelist.RemoveModuleItems{Matcher: n.Matcher()}
	}
	return modulelist.ItemRefreshRequested{Matcher: n.Matcher()}
}

func (c *Controller) apply(ctx context.Context, ev modulelist.Event) {
	if pl, ok := ev.(modulelist.PageLoaded); ok && pl.Generation != c.model.Generation {
		metrics.StalePageResult()
		c.log.Debugw("discarding stale page", "generation", pl.Generation, "current", c.model.Generation)
		return
	}

	if _, ok := ev.(modulelist.BulkUpdateCancelled); ok && c.bulkCancel != nil {
		c.bulkCancel()
		c.bulkCancel = nil
	}

	next, effects := modulelist.Update(c.model, ev)
	c.commit(ctx, next, effects)
}

func (c *Controller) commit(ctx context.Context, next modulelist.Model, effects []modulelist.Effect) {
	c.model = next
	c.publishState(next)

	for _, eff := range effects {
		if modulelist.IsPresentation(eff) {
			c.signal(eff)
			continue
		}
		c.runEffect(ctx, eff)
	}
}

func (c *Controller) publishState(m modulelist.Model) {
	// Drop the unread snapshot, if any, so the newest one is always kept.
	select {
	case <-c.states:
	default:
	}
	c.states <- m
}

func (c *Controller) signal(eff modulelist.Effect) {
	select {
	case c.signals <- eff:
	default:
		c.log.Warnw("signal dropped, view is not keeping up", "effect", modulelist.EffectName(eff))
	}
}

func (c *Controller) runEffect(ctx context.Context, eff modulelist.Effect) {
	effCtx := ctx
	switch e := eff.(type) {
	case modulelist.LoadNextPage:
		// A new page load supersedes the previous one.
		if c.pageCancel != nil {
			c.pageCancel()
		}
		var cancel context.CancelFunc
		effCtx, cancel = context.WithCancel(ctx)
		c.pageCancel = cancel
		c.log.Debugw("loading page", "generation", e.Generation, "first", e.Cursor.IsFirstPage(),
			"force", e.ForceNetwork, "scroll_target", e.ScrollTarget)
	case modulelist.BulkUpdateModules:
		if c.bulkCancel != nil {
			c.bulkCancel()
		}
		var cancel context.CancelFunc
		effCtx, cancel = context.WithCancel(ctx)
		c.bulkCancel = cancel
	}

	emit := func(ev modulelist.Event) {
		select {
		case c.events <- ev:
		case <-ctx.Done():
		}
	}

	c.effects.Add(1)
	go func() {
		defer c.effects.Done()
		c.runner.Run(effCtx, eff, emit)
	}()
}
