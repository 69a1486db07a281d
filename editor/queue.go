package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned when submitting to a closed queue.
var ErrQueueClosed = errors.New("editor: queue closed")

type task struct {
	ctx    context.Context
	fn     func(*Session) error
	result chan error
}

// Queue serializes the intents sent to a session from several goroutines:
// they run one at a time, in the order they were submitted.
type Queue struct {
	session *Session
	tasks   chan task
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewQueue starts a queue for a session. size is the number of intents
// waiting before Submit blocks.
func NewQueue(s *Session, size int) *Queue {
	q := &Queue{
		session: s,
		tasks:   make(chan task, size),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.loop()
	return q
}

// Submit runs fn on the session and returns its error. It returns early
// when ctx is done; fn may still run if it was already started.
func (q *Queue) Submit(ctx context.Context, fn func(*Session) error) error {
	t := task{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stopped:
		// The task may have been queued after the loop drained the buffer.
		select {
		case err := <-t.result:
			return err
		default:
			return ErrQueueClosed
		}
	}
}

func (q *Queue) loop() {
	defer q.wg.Done()
	defer close(q.stopped)
	for {
		select {
		case t := <-q.tasks:
			q.run(t)
		case <-q.done:
			// Fail what is still waiting.
			for {
				select {
				case t := <-q.tasks:
					t.result <- ErrQueueClosed
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) run(t task) {
	if err := t.ctx.Err(); err != nil {
		t.result <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.session.logger.Error("intent panicked", zap.Any("panic", r))
			t.result <- fmt.Errorf("editor: intent panicked: %v", r)
		}
	}()
	t.result <- t.fn(q.session)
}

// Close stops the queue once the running intent is done.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
