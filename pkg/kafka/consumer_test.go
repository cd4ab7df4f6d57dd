package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type flakyHandler struct {
	failures int
	err      error
	calls    int
	panics   bool
}

func (h *flakyHandler) Topic() string { return "pumpscan.records" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panics {
		panic("bad payload")
	}
	if h.calls <= h.failures {
		return h.err
	}
	return nil
}

func newTestConsumer(t *testing.T) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestHandleWithRetryRecoversFromTransientErrors(t *testing.T) {
	c := newTestConsumer(t)
	h := &flakyHandler{failures: 2, err: errors.New("archive unavailable")}
	permanent, err := c.handleWithRetry(h, []byte("{}"))
	if err != nil || permanent {
		t.Fatalf("expected success, got %v (permanent=%v)", err, permanent)
	}
	if h.calls != 3 {
		t.Fatalf("calls %d", h.calls)
	}
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	c := newTestConsumer(t)
	h := &flakyHandler{failures: 100, err: errors.New("still down")}
	permanent, err := c.handleWithRetry(h, nil)
	if err == nil || permanent {
		t.Fatalf("expected transient failure, got %v (permanent=%v)", err, permanent)
	}
	if h.calls != 4 {
		t.Fatalf("calls %d, want 1 + 3 retries", h.calls)
	}
}

func TestHandleWithRetryStopsOnPermanent(t *testing.T) {
	c := newTestConsumer(t)
	cause := errors.New("invalid record")
	h := &flakyHandler{failures: 100, err: Permanent(cause)}
	permanent, err := c.handleWithRetry(h, nil)
	if !permanent || !errors.Is(err, cause) {
		t.Fatalf("expected permanent %v, got %v (permanent=%v)", cause, err, permanent)
	}
	if h.calls != 1 {
		t.Fatalf("calls %d", h.calls)
	}
}

func TestHandleWithRetryPanicIsPermanent(t *testing.T) {
	c := newTestConsumer(t)
	h := &flakyHandler{panics: true}
	permanent, err := c.handleWithRetry(h, nil)
	if !permanent || err == nil {
		t.Fatalf("expected permanent panic error, got %v", err)
	}
}

type orderHandler struct {
	mu      sync.Mutex
	offsets map[int][]int
}

func (h *orderHandler) Topic() string { return "pumpscan.records" }

func (h *orderHandler) Handle(_ context.Context, data []byte) error {
	var partition, offset int
	if _, err := fmt.Sscanf(string(data), "%d:%d", &partition, &offset); err != nil {
		return Permanent(err)
	}
	time.Sleep(20 * time.Microsecond)
	h.mu.Lock()
	h.offsets[partition] = append(h.offsets[partition], offset)
	h.mu.Unlock()
	return nil
}

func TestWorkersKeepPartitionOrder(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerWorkers(4, 16),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	h := &orderHandler{offsets: map[int][]int{}}
	c.RegisterHandler(h)

	var wg sync.WaitGroup
	for _, q := range c.queues {
		wg.Add(1)
		go func(q <-chan kafka.Message) {
			defer wg.Done()
			c.messageWorker(q)
		}(q)
	}

	const partitions, perPartition = 3, 1000
	for off := 0; off < perPartition; off++ {
		for p := 0; p < partitions; p++ {
			msg := kafka.Message{
				Topic:     h.Topic(),
				Partition: p,
				Offset:    int64(off),
				Value:     []byte(fmt.Sprintf("%d:%d", p, off)),
			}
			if !c.dispatch(msg) {
				t.Fatalf("dispatch refused")
			}
		}
	}
	for _, q := range c.queues {
		close(q)
	}
	wg.Wait()

	for p := 0; p < partitions; p++ {
		got := h.offsets[p]
		if len(got) != perPartition {
			t.Fatalf("partition %d handled %d messages", p, len(got))
		}
		for i, off := range got {
			if off != i {
				t.Fatalf("partition %d handled offset %d at position %d", p, off, i)
			}
		}
	}
}

func TestQueueForIsStable(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerWorkers(4, 0))
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	for p := 0; p < 32; p++ {
		q := c.queueFor("pumpscan.records", p)
		if q < 0 || q >= 4 {
			t.Fatalf("queue %d out of range", q)
		}
		if c.queueFor("pumpscan.records", p) != q {
			t.Fatalf("partition %d moved queues", p)
		}
	}
}

func TestStartWithoutHandlers(t *testing.T) {
	if err := newTestConsumer(t).Start(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEncode(t *testing.T) {
	b, err := Encode(map[string]int{"v": 1})
	if err != nil || string(b) != `{"v":1}` {
		t.Fatalf("encode map: %s %v", b, err)
	}
	b, _ = Encode("raw")
	if string(b) != "raw" {
		t.Fatalf("encode string: %s", b)
	}
}
