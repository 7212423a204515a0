package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSenderRunsQueuedJobs(t *testing.T) {
	s := New(Options{Workers: 2, QueueSize: 8})
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		err := s.Enqueue(context.Background(), "sendMessage", func() error {
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	s.Close()
	if ran.Load() != 5 {
		t.Fatalf("ran = %d, expected 5", ran.Load())
	}
	if s.ErrorCount() != 0 {
		t.Fatalf("errors = %d", s.ErrorCount())
	}
}

func TestSenderCountsFailures(t *testing.T) {
	s := New(Options{Workers: 1, MaxRetries: 0, RetryBackoff: time.Millisecond})
	err := s.Enqueue(context.Background(), "sendMessage", func() error {
		return errors.New("telegram says no")
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	s.Close()
	if s.ErrorCount() != 1 {
		t.Fatalf("errors = %d, expected 1", s.ErrorCount())
	}
}

func TestSenderRejectsAfterClose(t *testing.T) {
	s := New(Options{Workers: 1})
	s.Close()
	err := s.Enqueue(context.Background(), "sendMessage", func() error { return nil })
	if err != ErrQueueClosed {
		t.Fatalf("err = %v, expected ErrQueueClosed", err)
	}
}

func TestSenderEnqueueDuringCloseDoesNotPanic(t *testing.T) {
	s := New(Options{Workers: 2, QueueSize: 4})
	start := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-start
		for i := 0; i < 200; i++ {
			err := s.Enqueue(context.Background(), "sendMessage", func() error { return nil })
			switch err {
			case nil, ErrQueueClosed, ErrQueueFull:
			default:
				t.Errorf("enqueue: %v", err)
				return
			}
		}
	}()
	close(start)
	s.Close()
	<-done
	if err := s.Enqueue(context.Background(), "sendMessage", func() error { return nil }); err != ErrQueueClosed {
		t.Fatalf("err = %v, expected ErrQueueClosed", err)
	}
}

func TestSanitizeErrorRedactsToken(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAE-secret_token/sendMessage": timeout`)
	msg := sanitizeError(err)
	if msg != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("sanitized = %q", msg)
	}
}
