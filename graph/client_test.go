package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/errors"
)

// fakeRequester answers requests in-process.
type fakeRequester struct {
	calls   atomic.Int64
	handler func(data []byte) (*nats.Msg, error)
	block   chan struct{}
}

func (f *fakeRequester) RequestWithContext(ctx context.Context, _ string, data []byte) (*nats.Msg, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.handler(data)
}

func replyWith(t *testing.T, rows []Row) func([]byte) (*nats.Msg, error) {
	t.Helper()
	return func(data []byte) (*nats.Msg, error) {
		var req queryRequest
		require.NoError(t, json.Unmarshal(data, &req))
		require.NotEmpty(t, req.Query)

		payload, err := json.Marshal(queryReply{Rows: rows})
		require.NoError(t, err)
		return &nats.Msg{Data: payload}, nil
	}
}

func TestExecuteReturnsRows(t *testing.T) {
	fake := &fakeRequester{handler: replyWith(t, []Row{{"id": float64(1), "name": "Temp"}})}
	c := NewClient(fake, Config{Subject: "graph.query"}, nil)

	rows, err := c.Execute(context.Background(), "MATCH (n) RETURN n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Temp", rows[0]["name"])
}

func TestExecuteServiceErrorNotRetried(t *testing.T) {
	fake := &fakeRequester{handler: func([]byte) (*nats.Msg, error) {
		payload, _ := json.Marshal(queryReply{Error: "syntax error"})
		return &nats.Msg{Data: payload}, nil
	}}
	c := NewClient(fake, Config{Subject: "graph.query"}, nil)

	_, err := c.Execute(context.Background(), "bad query")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryExecution))
	assert.Equal(t, int64(1), fake.calls.Load())
}

func TestExecuteRetriesTransportFailureOnce(t *testing.T) {
	fake := &fakeRequester{}
	fake.handler = func(data []byte) (*nats.Msg, error) {
		if fake.calls.Load() == 1 {
			return nil, fmt.Errorf("nats: timeout")
		}
		return replyWith(t, []Row{{"id": float64(2)}})(data)
	}
	c := NewClient(fake, Config{Subject: "graph.query"}, nil)

	rows, err := c.Execute(context.Background(), "MATCH (n) RETURN n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), fake.calls.Load())
}

func TestExecuteSurfacesExhaustedRetries(t *testing.T) {
	fake := &fakeRequester{handler: func([]byte) (*nats.Msg, error) {
		return nil, fmt.Errorf("nats: no responders")
	}}
	c := NewClient(fake, Config{Subject: "graph.query"}, nil)

	_, err := c.Execute(context.Background(), "MATCH (n) RETURN n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryExecution))
	assert.Equal(t, int64(2), fake.calls.Load())
}

func TestExecuteAcquireTimeout(t *testing.T) {
	block := make(chan struct{})
	fake := &fakeRequester{block: block, handler: replyWith(t, nil)}
	c := NewClient(fake, Config{
		Subject:        "graph.query",
		MaxInFlight:    1,
		AcquireTimeout: 50 * time.Millisecond,
	}, nil)

	go func() {
		_, _ = c.Execute(context.Background(), "MATCH (n) RETURN n")
	}()

	// Wait for the first request to occupy the only slot.
	require.Eventually(t, func() bool { return fake.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := c.Execute(context.Background(), "MATCH (n) RETURN n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryExecution))
	assert.True(t, errors.Is(err, errors.ErrPoolExhausted))

	close(block)
}

func TestExecuteRequestTimeout(t *testing.T) {
	// The fake never unblocks, so every attempt expires on its own deadline.
	fake := &fakeRequester{block: make(chan struct{}), handler: replyWith(t, nil)}
	c := NewClient(fake, Config{
		Subject: "graph.query",
		Timeout: 20 * time.Millisecond,
	}, nil)

	_, err := c.Execute(context.Background(), "MATCH (n) RETURN n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueryExecution))
	assert.True(t, errors.Is(err, errors.ErrConnectionTimeout))
	assert.Equal(t, int64(2), fake.calls.Load())
}

func TestConnectRefusedWrapsNoConnection(t *testing.T) {
	_, err := Connect(Config{URL: "nats://127.0.0.1:1", Subject: "graph.query"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoConnection))
	assert.True(t, errors.IsTransient(err))
}

func TestRowNested(t *testing.T) {
	row := Row{
		"timeseries": []any{
			map[string]any{"id": float64(1)},
			"not-a-row",
		},
	}
	nested := row.Nested("timeseries")
	require.Len(t, nested, 1)
	assert.Equal(t, float64(1), nested[0]["id"])

	assert.Nil(t, row.Nested("missing"))
}
