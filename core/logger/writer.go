package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter decouples log emission from sink I/O. Writes are queued and a
// single goroutine fans each record out to every buffered sink in order.
type asyncWriter struct {
	in      chan writeOp
	stopped chan struct{}
	closing sync.Once

	mu   sync.Mutex
	out  []*bufio.Writer
	fail error
}

// writeOp carries either a payload to fan out or, when ack is set, a flush
// request that the run goroutine answers in queue order.
type writeOp struct {
	data []byte
	ack  chan error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	aw := &asyncWriter{
		in:      make(chan writeOp, 256),
		stopped: make(chan struct{}),
	}
	for _, w := range writers {
		if w != nil {
			aw.out = append(aw.out, bufio.NewWriterSize(w, bufSize))
		}
	}
	go aw.run()
	return aw
}

func (w *asyncWriter) run() {
	defer close(w.stopped)
	for op := range w.in {
		if op.ack != nil {
			op.ack <- w.flushSinks()
			continue
		}
		if len(op.data) == 0 {
			continue
		}
		if err := w.fanOut(op.data); err != nil {
			w.recordErr(err)
		}
	}
	w.flushSinks()
}

// Write copies p and hands it to the fan-out goroutine. When the queue is
// full it blocks rather than dropping the record.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	w.in <- writeOp{data: buf}
	return nil
}

// Flush blocks until every record queued before the call has reached its sink.
func (w *asyncWriter) Flush() error {
	if err := w.firstErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.in <- writeOp{ack: ack}
	return <-ack
}

// Close drains the queue, flushes the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closing.Do(func() { close(w.in) })
	<-w.stopped
	return w.firstErr()
}

func (w *asyncWriter) fanOut(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.out {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushSinks() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.out {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) firstErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fail
}

func (w *asyncWriter) recordErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail == nil {
		w.fail = err
	}
}
