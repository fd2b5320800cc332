package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type sample struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

type recordingJob struct {
	calls int
	last  *sample
	err   error
}

func (j *recordingJob) Name() string { return "recording" }
func (j *recordingJob) Type() string { return "sample" }

func (j *recordingJob) Handle(_ context.Context, payload interface{}) error {
	j.calls++
	p, err := ParsePayload[sample](payload)
	if err != nil {
		return err
	}
	j.last = p
	return j.err
}

// deadClient never reaches a server.
func deadClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestParsePayload(t *testing.T) {
	raw := json.RawMessage(`{"symbol":"AAPL","days":30}`)
	cases := map[string]interface{}{
		"raw":   raw,
		"bytes": []byte(raw),
		"map":   map[string]interface{}{"symbol": "AAPL", "days": 30},
		"value": sample{Symbol: "AAPL", Days: 30},
		"ptr":   &sample{Symbol: "AAPL", Days: 30},
	}
	for name, in := range cases {
		got, err := ParsePayload[sample](in)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Symbol != "AAPL" || got.Days != 30 {
			t.Fatalf("%s: unexpected %+v", name, got)
		}
	}
	if _, err := ParsePayload[sample]("nope"); err == nil {
		t.Fatalf("expected error for string payload")
	}
	if _, err := ParsePayload[sample](json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestRegisterJobModes(t *testing.T) {
	c := deadClient()
	defer c.Close()

	producer := NewRedisQueue(nil, nil, c, ModeProducerOnly)
	producer.RegisterJob(&recordingJob{})
	if len(producer.jobs) != 0 {
		t.Fatalf("producer-only queue must ignore jobs")
	}

	consumer := NewRedisQueue(nil, &QueueConfig{Workers: 3}, c, ModeProducerConsumer, WithKeyPrefix("test:q"))
	consumer.RegisterJobs(&recordingJob{}, &recordingJob{})
	if len(consumer.jobs) != 1 {
		t.Fatalf("duplicate type should register once, got %d", len(consumer.jobs))
	}
	if consumer.queueKey() != "test:q:messages" || consumer.retryKey() != "test:q:retry" || consumer.deadLetterKey() != "test:q:dlq" {
		t.Fatalf("unexpected keys %s %s %s", consumer.queueKey(), consumer.retryKey(), consumer.deadLetterKey())
	}
	if consumer.config.RetryDelay != 10*time.Second || consumer.config.PollWait != time.Second {
		t.Fatalf("defaults not applied: %+v", consumer.config)
	}
}

func TestEnqueueRequiresRunningQueue(t *testing.T) {
	c := deadClient()
	defer c.Close()
	q := NewRedisQueue(nil, nil, c, ModeProducerOnly)

	if err := q.PublishMessage(context.Background(), "sample", sample{Symbol: "AAPL"}); err == nil {
		t.Fatalf("expected error before Start")
	}
	if err := q.Start(); err == nil {
		t.Fatalf("expected ping failure against an unreachable server")
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("stop on idle queue: %v", err)
	}
}

func TestEnqueueRejectsUnknownTypeForConsumers(t *testing.T) {
	c := deadClient()
	defer c.Close()
	q := NewRedisQueue(nil, nil, c, ModeProducerConsumer)
	q.isRunning = true

	err := q.Enqueue(context.Background(), "unknown", sample{})
	if err == nil || err.Error() != "no job registered for type: unknown" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestProcessMessageDispatchesToJob(t *testing.T) {
	c := deadClient()
	defer c.Close()
	q := NewRedisQueue(nil, nil, c, ModeConsumerOnly)
	job := &recordingJob{}
	q.RegisterJob(job)

	q.processMessage(Message{ID: "1", Type: "sample", Payload: json.RawMessage(`{"symbol":"MSFT","days":7}`)})
	if job.calls != 1 || job.last == nil || job.last.Symbol != "MSFT" || job.last.Days != 7 {
		t.Fatalf("job not invoked as expected: calls=%d last=%+v", job.calls, job.last)
	}

	job.err = context.Canceled
	q.processMessage(Message{ID: "2", Type: "sample", Payload: json.RawMessage(`{"symbol":"MSFT"}`)})
	if job.calls != 2 {
		t.Fatalf("cancelled jobs are dropped without retry, expected 2 calls got %d", job.calls)
	}
}
