package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
	"github.com/Universal-Commerce-Protocol/conformance/internal/repository"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func setupPoller(t *testing.T, writer MessageWriter) (*OutboxPoller, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	t.Cleanup(func() { repo.Close() })

	poller := &OutboxPoller{eventTick: time.Second, batchSize: 100, repo: repo, writer: writer}
	return poller, repo
}

func completeWithEvent(t *testing.T, repo *repository.MemoryRepository, sessionID string) *repository.OutboxEvent {
	t.Helper()
	session := &domain.Session{ID: sessionID, Status: domain.StatusReadyForPayment, Currency: "USD"}
	require.NoError(t, repo.Create(context.Background(), session))

	session.Status = domain.StatusCompleted
	event := &repository.OutboxEvent{
		ID:          uuid.New().String(),
		AggregateID: sessionID,
		EventType:   "checkout.completed",
		Payload:     []byte(`{"checkout_id":"` + sessionID + `"}`),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Complete(context.Background(), session, event))
	return event
}

func TestOutboxPoller_PublishesAndMarks(t *testing.T) {
	writer := &fakeWriter{}
	poller, repo := setupPoller(t, writer)

	completeWithEvent(t, repo, "cs-1")
	completeWithEvent(t, repo, "cs-2")

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte("cs-1"), writer.messages[0].Key)
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, []byte("checkout.completed"), writer.messages[0].Headers[0].Value)

	events, err := repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOutboxPoller_WriteFailureKeepsEventPending(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	poller, repo := setupPoller(t, writer)

	completeWithEvent(t, repo, "cs-1")

	poller.processUnpublishedEvents(context.Background())

	events, err := repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Next pass after the broker recovers drains the backlog
	writer.err = nil
	poller.processUnpublishedEvents(context.Background())

	events, err = repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
