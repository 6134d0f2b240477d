package link

import (
	"bytes"
	"io"
	"sync"
)

const DefaultBacklog = 64

// LineReader is the polling side of a line oriented stream.
type LineReader interface {
	// Available reports whether a complete line is waiting. It never blocks.
	Available() bool
	// ReadLine returns the next line without its delimiter. It only blocks when
	// no line is queued.
	ReadLine() (string, error)
}

// Lines buffers newline delimited input from one or more producers until the
// control loop polls for it.
type Lines struct {
	lock    sync.Mutex
	partial []byte
	queue   chan string
	done    chan struct{}
	once    sync.Once
}

func NewLines(backlog int) *Lines {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	return &Lines{
		queue: make(chan string, backlog),
		done:  make(chan struct{}),
	}
}

// Write accepts a raw byte stream. Bytes after the last newline are held back
// until the rest of their line arrives.
func (l *Lines) Write(p []byte) (n int, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.partial = append(l.partial, p...)
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}

		line := string(l.partial[:i])
		l.partial = l.partial[i+1:]
		if err = l.enqueue(line); err != nil {
			return len(p), err
		}
	}

	return len(p), nil
}

// PushLine queues a line that is already complete, bypassing the partial buffer
// shared by Write.
func (l *Lines) PushLine(line string) error {
	return l.enqueue(line)
}

func (l *Lines) enqueue(line string) error {
	select {
	case <-l.done:
		return io.ErrClosedPipe
	default:
	}

	select {
	case l.queue <- line:
		return nil
	case <-l.done:
		return io.ErrClosedPipe
	}
}

func (l *Lines) Available() bool {
	return len(l.queue) > 0
}

func (l *Lines) ReadLine() (string, error) {
	select {
	case line := <-l.queue:
		return line, nil
	default:
	}

	select {
	case line := <-l.queue:
		return line, nil
	case <-l.done:
		return "", io.EOF
	}
}

// Close wakes blocked readers and writers. Queued lines are dropped.
func (l *Lines) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
