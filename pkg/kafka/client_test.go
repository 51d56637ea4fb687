package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := f.queue[0]
	f.queue = f.queue[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

type fakeHandler struct {
	err     error
	handled []model.ChatEvent
}

func (f *fakeHandler) Handle(_ context.Context, e model.ChatEvent) error {
	f.handled = append(f.handled, e)
	return f.err
}

type memoryCounter struct {
	counts map[string]int64
	err    error
}

func (m *memoryCounter) Incr(_ context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryCounter) Reset(_ context.Context, key string) error {
	delete(m.counts, key)
	return nil
}

func eventMessage(t *testing.T, offset int64, requestID string) kafka.Message {
	t.Helper()
	v, err := json.Marshal(model.ChatEvent{RequestID: requestID, Outcome: model.OutcomeAnswered, Status: 200, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: v}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	require.NoError(t, p.Publish(context.Background(), model.ChatEvent{RequestID: "req-1", Outcome: model.OutcomeHarmful, Status: 400}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "req-1", string(w.msgs[0].Key))

	var got model.ChatEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, model.OutcomeHarmful, got.Outcome)
	assert.Equal(t, 400, got.Status)

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), model.ChatEvent{RequestID: "req-2"}))
}

func TestHandleMessage_Success(t *testing.T) {
	counter := &memoryCounter{counts: map[string]int64{"kafka:attempts:req-1": 2}}
	h := &fakeHandler{}
	c := newConsumer(&fakeReader{}, h, counter)

	assert.True(t, c.handleMessage(context.Background(), eventMessage(t, 1, "req-1")))
	require.Len(t, h.handled, 1)
	assert.Equal(t, "req-1", h.handled[0].RequestID)
	assert.NotContains(t, counter.counts, "kafka:attempts:req-1")
}

func TestHandleMessage_BadPayloadIsCommitted(t *testing.T) {
	h := &fakeHandler{}
	c := newConsumer(&fakeReader{}, h, &memoryCounter{counts: map[string]int64{}})

	assert.True(t, c.handleMessage(context.Background(), kafka.Message{Value: []byte("{oops")}))
	assert.Empty(t, h.handled)
}

func TestHandleMessage_RetriesThenGivesUp(t *testing.T) {
	counter := &memoryCounter{counts: map[string]int64{}}
	c := newConsumer(&fakeReader{}, &fakeHandler{err: errors.New("db down")}, counter)
	m := eventMessage(t, 7, "req-9")

	assert.False(t, c.handleMessage(context.Background(), m))
	assert.False(t, c.handleMessage(context.Background(), m))
	assert.True(t, c.handleMessage(context.Background(), m))
}

func TestHandleMessage_CounterFailureKeepsOffset(t *testing.T) {
	c := newConsumer(&fakeReader{}, &fakeHandler{err: errors.New("db down")}, &memoryCounter{err: errors.New("redis down")})
	assert.False(t, c.handleMessage(context.Background(), eventMessage(t, 3, "req-3")))
}

func TestConsumerRun(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 10, "a"),
		{Offset: 11, Value: []byte("garbage")},
		eventMessage(t, 12, "b"),
	}}
	h := &fakeHandler{}
	newConsumer(r, h, &memoryCounter{counts: map[string]int64{}}).run(context.Background())

	assert.Equal(t, []int64{10, 11, 12}, r.committed)
	assert.Len(t, h.handled, 2)
	assert.True(t, r.closed)
}

func TestBrokerList(t *testing.T) {
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, brokerList(" k1:9092, ,k2:9092"))
	assert.Nil(t, brokerList(""))
}
