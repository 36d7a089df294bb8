package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/core/ports"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.MailJob
	err  error
	done chan struct{}
}

func (n *recordingNotifier) Send(_ context.Context, job ports.MailJob) error {
	n.mu.Lock()
	n.sent = append(n.sent, job)
	n.mu.Unlock()
	if n.done != nil {
		n.done <- struct{}{}
	}
	return n.err
}

func TestDispatcher_DeliversJobs(t *testing.T) {
	notifier := &recordingNotifier{done: make(chan struct{}, 1)}
	d := NewDispatcher(2, notifier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.MailJob{Kind: ports.MailWelcome, Email: "a@x.com", Name: "a"})

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not delivered")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(notifier.sent))
	}
	if notifier.sent[0].ID == "" {
		t.Fatalf("expected dispatcher to assign a job id")
	}
}

func TestDispatcher_DeliveryFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("provider down"), done: make(chan struct{}, 2)}
	d := NewDispatcher(1, notifier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A failing job must not stop the worker from taking the next one.
	d.Enqueue(ports.MailJob{Kind: ports.MailWelcome, Email: "a@x.com"})
	d.Enqueue(ports.MailJob{Kind: ports.MailGoodbye, Email: "b@x.com"})

	for i := 0; i < 2; i++ {
		select {
		case <-notifier.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("delivery %d never attempted", i)
		}
	}
}

func TestDispatcher_DrainingDropsNewJobs(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(1, notifier, zerolog.Nop())
	d.draining.Store(true)

	d.Enqueue(ports.MailJob{Kind: ports.MailWelcome, Email: "a@x.com"})

	if len(d.jobs) != 0 {
		t.Fatalf("draining dispatcher must not buffer new jobs, got %d", len(d.jobs))
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	// No workers started: the buffer fills up and further jobs are dropped.
	d := NewDispatcher(1, &recordingNotifier{}, zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(ports.MailJob{Kind: ports.MailWelcome, Email: "a@x.com"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full buffer")
	}
}
