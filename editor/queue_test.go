package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/cozy/quill-go/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	s, _ := newSession(t)
	q := NewQueue(s, 4)
	defer q.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Submit(context.Background(), func(s *Session) error {
				_, err := s.InsertText(0, "x", nil, API)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 21, s.GetLength())

	// errors and panics come back to the caller
	boom := errors.New("boom")
	err := q.Submit(context.Background(), func(*Session) error { return boom })
	assert.Equal(t, boom, err)
	err = q.Submit(context.Background(), func(*Session) error { panic("oops") })
	assert.Error(t, err)

	// the queue still works
	err = q.Submit(context.Background(), func(s *Session) error {
		_, err := s.InsertText(0, "y", nil, API)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 22, s.GetLength())
}

func TestQueueCanceled(t *testing.T) {
	s, _ := newSession(t)
	q := NewQueue(s, 1)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := q.Submit(ctx, func(*Session) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}

func TestQueueClosed(t *testing.T) {
	s, _ := newSession(t)
	q := NewQueue(s, 1)
	q.Close()
	q.Close()
	err := q.Submit(context.Background(), func(*Session) error { return nil })
	assert.Equal(t, ErrQueueClosed, err)
}

func TestQueueCloseWhileSubmitting(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, _ := newSession(t)
		q := NewQueue(s, 8)

		var wg sync.WaitGroup
		for j := 0; j < 16; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := q.Submit(context.Background(), func(*Session) error { return nil })
				if err != nil {
					assert.Equal(t, ErrQueueClosed, err)
				}
			}()
		}
		q.Close()

		returned := make(chan struct{})
		go func() {
			wg.Wait()
			close(returned)
		}()
		select {
		case <-returned:
		case <-time.After(5 * time.Second):
			t.Fatal("Submit still blocked after Close")
		}
	}
}
