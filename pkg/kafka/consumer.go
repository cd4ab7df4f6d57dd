package kafka

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	applogger "PumpScan/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Permanent marks err as not worth retrying. The consumer sends such
// messages straight to the DLQ.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Consumer wraps Kafka readers with a worker pool. Every (topic, partition)
// is owned by one worker queue, so messages of a partition are handled and
// committed in offset order.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *applogger.Logger
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	queues   []chan kafka.Message
	dlq      *kafka.Writer
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := defaultConsumerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = applogger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Consumer{
		cfg:      cfg,
		log:      cfg.Logger,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		ctx:      ctx,
		cancel:   cancel,
		queues:   make([]chan kafka.Message, cfg.WorkerCount),
	}
	for i := range c.queues {
		c.queues[i] = make(chan kafka.Message, cfg.BufferSize)
	}

	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.LeastBytes{}}
	}

	return c, nil
}

// RegisterHandler registers a message handler for a specific topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start creates readers for registered topics and starts the workers.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	var workers sync.WaitGroup
	for _, q := range c.queues {
		workers.Add(1)
		go func(q <-chan kafka.Message) {
			defer workers.Done()
			c.messageWorker(q)
		}(q)
	}

	var fetchers sync.WaitGroup
	for topic, reader := range c.readers {
		fetchers.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer fetchers.Done()
			c.consumeMessages(topic, r)
		}(topic, reader)
	}

	// Workers drain their queues after the fetchers exit.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fetchers.Wait()
		for _, q := range c.queues {
			close(q)
		}
		workers.Wait()
	}()

	c.log.Info("kafka consumer started",
		applogger.Int("workers", c.cfg.WorkerCount),
		applogger.Int("topics", len(c.readers)),
	)
	return nil
}

// Stop stops the Kafka consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error

	c.stopOnce.Do(func() {
		c.cancel()

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Warn("kafka reader close error", applogger.String("topic", topic), applogger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Warn("kafka dlq close error", applogger.Error(err))
			}
		}
	})

	return stopErr
}

func (c *Consumer) consumeMessages(topic string, reader *kafka.Reader) {
	for {
		msg, err := reader.FetchMessage(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.log.Error("kafka fetch error", applogger.String("topic", topic), applogger.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-c.ctx.Done():
				return
			}
		}
		if !c.dispatch(msg) {
			return
		}
	}
}

// dispatch queues msg on the worker that owns its partition. It reports
// false when the consumer is stopping.
func (c *Consumer) dispatch(msg kafka.Message) bool {
	select {
	case c.queues[c.queueFor(msg.Topic, msg.Partition)] <- msg:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Consumer) queueFor(topic string, partition int) int {
	h := fnv.New32a()
	h.Write([]byte(topic + "/" + strconv.Itoa(partition)))
	return int(h.Sum32() % uint32(len(c.queues)))
}

func (c *Consumer) messageWorker(q <-chan kafka.Message) {
	for msg := range q {
		c.process(msg)
	}
}

func (c *Consumer) process(msg kafka.Message) {
	handler, ok := c.handlers[msg.Topic]
	if !ok {
		return
	}

	permanent, err := c.handleWithRetry(handler, msg.Value)
	if err != nil {
		c.log.Error("kafka message failed",
			applogger.String("topic", msg.Topic),
			applogger.Int("partition", msg.Partition),
			applogger.Int64("offset", msg.Offset),
			applogger.Error(err),
		)
		// Permanent failures are committed even without a DLQ.
		if !c.sendToDLQ(msg, err) && !permanent {
			return
		}
	}

	if reader := c.readers[msg.Topic]; reader != nil {
		commit := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return reader.CommitMessages(ctx, msg)
		}
		if err := backoff.Retry(commit, backoff.WithMaxRetries(c.newBackOff(), 3)); err != nil {
			c.log.Error("kafka commit failed", applogger.String("topic", msg.Topic), applogger.Error(err))
		}
	}
}

// handleWithRetry retries transient handler errors with exponential backoff.
// Errors wrapped with Permanent stop immediately.
func (c *Consumer) handleWithRetry(h MessageHandler, data []byte) (bool, error) {
	permanent := false
	op := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = backoff.Permanent(fmt.Errorf("panic in handler: %v", r))
			}
			permanent = isPermanent(err)
		}()
		return h.Handle(c.ctx, data)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(max(c.cfg.RetryMax, 0))), c.ctx)
	err := backoff.Retry(op, b)
	return permanent, err
}

func (c *Consumer) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffMin
	b.MaxInterval = c.cfg.BackoffMax
	b.MaxElapsedTime = 0
	return b
}

func (c *Consumer) sendToDLQ(msg kafka.Message, cause error) bool {
	if c.dlq == nil {
		return false
	}
	err := c.dlq.WriteMessages(context.Background(), kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(msg.Topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("kafka dlq write failed", applogger.String("topic", c.cfg.DLQTopic), applogger.Error(err))
		return false
	}
	return true
}

func isPermanent(err error) bool {
	var pe *backoff.PermanentError
	return errors.As(err, &pe)
}
