package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends tasks to the matching queue.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	p, err := newPublisher(ch, cfg.name())
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queue string) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    task.ID,
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// delivery is the part of amqp.Delivery a worker needs.
type delivery interface {
	Ack(multiple bool) error
	Reject(requeue bool) error
}

// Consumer runs a pool of workers reading from the matching queue.
type Consumer struct {
	cfg     Config
	workers int
	handler Handler
	logger  *zap.Logger
}

func NewConsumer(cfg Config, workers int, handler Handler, logger *zap.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{cfg: cfg, workers: workers, handler: handler, logger: logger}
}

// Run blocks until ctx is cancelled or a worker loses its connection.
func (c *Consumer) Run(ctx context.Context) error {
	if c.cfg.URL == "" {
		return errors.New("rabbitmq url is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.logger.Info("starting consumer worker pool", zap.Int("workers", c.workers), zap.String("queue", c.cfg.name()))

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := c.worker(ctx, id); err != nil {
				errOnce.Do(func() { runErr = err })
				cancel()
			}
		}(i + 1)
	}

	wg.Wait()
	return runErr
}

func (c *Consumer) worker(ctx context.Context, id int) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("worker %d: dial rabbitmq: %w", id, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: open channel: %w", id, err)
	}
	defer ch.Close()

	queue := c.cfg.name()
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("worker %d: declare queue: %w", id, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d: set qos: %w", id, err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("worker %d: consume: %w", id, err)
	}

	log := c.logger.With(zap.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			c.handle(ctx, log, &msg, msg.Body)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, log *zap.Logger, d delivery, body []byte) {
	task, err := decodeTask(body)
	if err != nil {
		log.Error("reject malformed message", zap.Error(err))
		if rerr := d.Reject(false); rerr != nil {
			log.Error("reject failed", zap.Error(rerr))
		}
		return
	}

	log = log.With(zap.String("task_id", task.ID), zap.String("candidate_id", task.CandidateID), zap.String("job_id", task.JobID))
	log.Info("processing matching task")

	if err := c.handler(ctx, task); err != nil {
		log.Error("matching task failed", zap.Error(err))
	} else {
		log.Info("matching task done")
	}

	if err := d.Ack(false); err != nil {
		log.Error("ack failed", zap.Error(err))
	}
}
