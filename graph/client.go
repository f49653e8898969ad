package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/pkg/retry"
)

// Executor runs a generated graph query and returns the result rows. The
// pipeline depends on this interface so tests can substitute an in-process
// implementation.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Row, error)
}

// Requester is the slice of the NATS connection the client uses.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Config configures the graph query client.
type Config struct {
	// URL is the NATS server URL (used by Connect).
	URL string

	// Subject is the request/reply subject of the graph query service.
	Subject string

	// Timeout bounds one query request (default: 10s).
	Timeout time.Duration

	// MaxInFlight bounds concurrent outstanding queries (default: 16).
	MaxInFlight int

	// AcquireTimeout bounds waiting for an in-flight slot (default: 2s).
	// Exceeding it fails the request instead of hanging.
	AcquireTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 16
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 2 * time.Second
	}
	return c
}

// Client executes graph queries over NATS request/reply.
//
// Wire contract: the request is {"query": "..."}; the reply is
// {"rows": [...], "error": "..."}. A non-empty reply error means the service
// rejected the query and retrying would not help; transport failures are
// retried once with backoff before surfacing as a query execution error.
type Client struct {
	conn   Requester
	owned  *nats.Conn
	cfg    Config
	sem    chan struct{}
	logger *slog.Logger
}

// Connect dials NATS and returns a client owning the connection.
func Connect(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.URL == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("NATS URL is required"),
			"GraphClient", "Connect", "config validation")
	}
	if cfg.Subject == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("query subject is required"),
			"GraphClient", "Connect", "config validation")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("semquery"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrNoConnection, err),
			"GraphClient", "Connect", "NATS connect")
	}

	c := NewClient(nc, cfg, logger)
	c.owned = nc
	return c, nil
}

// NewClient wraps an existing connection; the caller keeps ownership.
func NewClient(conn Requester, cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		conn:   conn,
		cfg:    cfg,
		sem:    make(chan struct{}, cfg.MaxInFlight),
		logger: logger.With("component", "GraphClient"),
	}
}

// Close drains the owned connection, if any.
func (c *Client) Close() {
	if c.owned != nil {
		c.owned.Close()
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryReply struct {
	Rows  []Row  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// Execute sends the query and returns the result rows.
func (c *Client) Execute(ctx context.Context, query string) ([]Row, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-time.After(c.cfg.AcquireTimeout):
		return nil, execError(fmt.Errorf("%w after %s", errors.ErrPoolExhausted, c.cfg.AcquireTimeout))
	case <-ctx.Done():
		return nil, execError(ctx.Err())
	}

	payload, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, errors.WrapFatal(err, "GraphClient", "Execute", "marshal request")
	}

	rows, err := retry.DoWithResult(ctx, retry.Once(), func() ([]Row, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		msg, err := c.conn.RequestWithContext(reqCtx, c.cfg.Subject, payload)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nats.ErrTimeout) {
				return nil, fmt.Errorf("%w: %v", errors.ErrConnectionTimeout, err)
			}
			return nil, err
		}

		var reply queryReply
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			return nil, err
		}
		if reply.Error != "" {
			// The service parsed and rejected the query; retrying won't help.
			return nil, retry.NonRetryable(fmt.Errorf("query service: %s", reply.Error))
		}
		return reply.Rows, nil
	})
	if err != nil {
		c.logger.Error("graph query failed", "subject", c.cfg.Subject, "error", err)
		return nil, execError(err)
	}
	return rows, nil
}

// execError wraps any execution failure so callers can match both the
// execution sentinel and the underlying cause (pool exhaustion, timeout).
func execError(cause error) error {
	return errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrQueryExecution, cause),
		"GraphClient", "Execute", "query request")
}
