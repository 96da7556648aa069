package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	outboxmodel "github.com/corray333/food-delivery/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutboxRepo struct {
	mu      sync.Mutex
	pending []outboxmodel.OutboxMessage
	deleted []int64
	retries map[int64]retryRecord
}

type retryRecord struct {
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

func newMemOutboxRepo(msgs ...outboxmodel.OutboxMessage) *memOutboxRepo {
	return &memOutboxRepo{pending: msgs, retries: map[int64]retryRecord{}}
}

func (r *memOutboxRepo) Insert(_ context.Context, msg outboxmodel.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, msg)
	return nil
}

func (r *memOutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outboxmodel.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *memOutboxRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memOutboxRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries[id] = retryRecord{retryCount: retryCount, lastError: lastError, nextRetryAt: nextRetryAt}
	return nil
}

type memAMQPChannel struct {
	mu        sync.Mutex
	published []string
	failKeys  map[string]error
	inFlight  int
	maxSeen   int
}

func (c *memAMQPChannel) Publish(_, key string, _, _ bool, _ amqp.Publishing) error {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.maxSeen {
		c.maxSeen = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if err, ok := c.failKeys[key]; ok {
		return err
	}
	c.published = append(c.published, key)
	return nil
}

func pendingMessage(id int64, key string) outboxmodel.OutboxMessage {
	return outboxmodel.OutboxMessage{
		ID:          id,
		QueueName:   key,
		RoutingKey:  key,
		Payload:     []byte(`{"type":"order.created"}`),
		ContentType: "application/json",
		MaxRetries:  10,
	}
}

func newTestWorker(repo *memOutboxRepo, channel *memAMQPChannel) *Worker {
	return &Worker{
		outboxRepo:    repo,
		publisher:     channel,
		batchSize:     100,
		retryInterval: 30 * time.Second,
		stopCh:        make(chan struct{}),
	}
}

func TestProcessMessagesPublishesAndDeletes(t *testing.T) {
	repo := newMemOutboxRepo(
		pendingMessage(1, "food.order.events"),
		pendingMessage(2, "food.order.events"),
		pendingMessage(3, "food.order.events"),
	)
	channel := &memAMQPChannel{}
	w := newTestWorker(repo, channel)

	w.processMessages(context.Background())

	assert.Len(t, channel.published, 3)
	assert.ElementsMatch(t, []int64{1, 2, 3}, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestProcessMessagesSchedulesRetryOnFailure(t *testing.T) {
	repo := newMemOutboxRepo(
		pendingMessage(1, "food.order.events"),
		pendingMessage(2, "dead.letter"),
	)
	channel := &memAMQPChannel{failKeys: map[string]error{"dead.letter": errors.New("channel closed")}}
	w := newTestWorker(repo, channel)

	before := time.Now()
	w.processMessages(context.Background())

	assert.Equal(t, []int64{1}, repo.deleted)

	rec, ok := repo.retries[2]
	require.True(t, ok)
	assert.Equal(t, 1, rec.retryCount)
	assert.Equal(t, "channel closed", rec.lastError)
	assert.True(t, rec.nextRetryAt.After(before.Add(time.Minute)), "first retry is backed off at least a minute")
}

func TestProcessMessagesBoundsConcurrency(t *testing.T) {
	var msgs []outboxmodel.OutboxMessage
	for i := int64(1); i <= 20; i++ {
		msgs = append(msgs, pendingMessage(i, "food.order.events"))
	}
	repo := newMemOutboxRepo(msgs...)
	channel := &memAMQPChannel{}
	w := newTestWorker(repo, channel)

	w.processMessages(context.Background())

	assert.Len(t, repo.deleted, 20)
	assert.LessOrEqual(t, channel.maxSeen, publishConcurrency)
}

func TestProcessMessagesHonorsBatchSize(t *testing.T) {
	repo := newMemOutboxRepo(
		pendingMessage(1, "food.order.events"),
		pendingMessage(2, "food.order.events"),
		pendingMessage(3, "food.order.events"),
	)
	channel := &memAMQPChannel{}
	w := newTestWorker(repo, channel)
	w.batchSize = 2

	w.processMessages(context.Background())

	assert.Len(t, repo.deleted, 2)
}
