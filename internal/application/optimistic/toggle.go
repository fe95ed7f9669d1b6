// Package optimistic implements the client's optimistic-update engine for
// toggle-style actions such as likes and event membership. The visible state
// flips immediately, the server call runs in the background, and a failing
// call rolls the flip back.
package optimistic

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/shared"
)

// State is the lifecycle state of a single flip.
type State int

const (
	StateIdle State = iota
	StatePending
	StateConfirmed
	StateRolledBack
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "idle"
	}
}

// Flip describes one optimistic toggle. Apply mutates the visible state,
// Revert undoes exactly that mutation, and Commit performs the server call.
// Apply and Revert must be cheap and must not call back into the engine.
type Flip struct {
	// Key identifies the toggled resource, e.g. "like:42:7". Flips sharing
	// a key are committed in submission order.
	Key string

	Apply  func()
	Revert func()
	Commit func(context.Context) error
}

// Result reports how a flip ended.
type Result struct {
	State State
	Err   error
}

type job struct {
	ctx  context.Context
	flip Flip
	done chan Result
}

// Engine serializes commits per resource key. A failed commit rolls back its
// own flip and every flip still queued behind it on the same key, so the
// visible state never drifts ahead of a server that has stopped agreeing.
//
// Thread Safety: safe for concurrent use.
type Engine struct {
	logger *zap.Logger

	mu      sync.Mutex
	queues  map[string][]*job
	running map[string]bool
	closed  bool
	wg      sync.WaitGroup
}

// NewEngine creates an engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:  logger.Named("optimistic"),
		queues:  make(map[string][]*job),
		running: make(map[string]bool),
	}
}

// Do applies the flip immediately and schedules its commit. The returned
// channel delivers exactly one Result and is then closed.
func (e *Engine) Do(ctx context.Context, flip Flip) (<-chan Result, error) {
	if flip.Key == "" || flip.Apply == nil || flip.Revert == nil || flip.Commit == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "incomplete toggle")
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "engine is closed")
	}

	flip.Apply()

	j := &job{ctx: ctx, flip: flip, done: make(chan Result, 1)}
	e.queues[flip.Key] = append(e.queues[flip.Key], j)
	if !e.running[flip.Key] {
		e.running[flip.Key] = true
		e.wg.Add(1)
		go e.drain(flip.Key)
	}
	e.mu.Unlock()

	return j.done, nil
}

// Close waits for all in-flight commits to finish. Queued flips that have
// not started are rolled back and reported as such.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
}

// drain commits queued flips for one key in FIFO order.
func (e *Engine) drain(key string) {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		queue := e.queues[key]
		if len(queue) == 0 {
			e.running[key] = false
			delete(e.queues, key)
			e.mu.Unlock()
			return
		}
		j := queue[0]
		e.queues[key] = queue[1:]
		closed := e.closed
		e.mu.Unlock()

		if closed {
			e.abort(j, shared.NewDomainError(shared.CodeInvalidInput, "engine is closed"))
			continue
		}

		if err := j.flip.Commit(j.ctx); err != nil {
			e.logger.Warn("toggle commit failed, rolling back",
				zap.String("key", key),
				zap.Error(err))
			e.abort(j, err)
			e.cancelQueued(key, err)
			continue
		}

		e.finish(j, Result{State: StateConfirmed})
	}
}

// cancelQueued rolls back every flip still waiting on key. Their deltas were
// applied at submission time and must come off again.
func (e *Engine) cancelQueued(key string, cause error) {
	e.mu.Lock()
	queue := e.queues[key]
	delete(e.queues, key)
	e.mu.Unlock()

	for _, j := range queue {
		e.abort(j, cause)
	}
}

func (e *Engine) abort(j *job, err error) {
	j.flip.Revert()
	e.finish(j, Result{State: StateRolledBack, Err: err})
}

func (e *Engine) finish(j *job, r Result) {
	j.done <- r
	close(j.done)
}
