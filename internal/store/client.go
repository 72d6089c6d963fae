package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by every operation when the store cannot be
// reached. Handlers translate it to 503 rather than letting it propagate.
var ErrUnavailable = errors.New("store unavailable")

// Hash is the set of store operations repositories depend on. TypeOf and
// HashLen exist only for the deletion diagnostic path.
type Hash interface {
	Exists(ctx context.Context, key string) (bool, error)
	GetAll(ctx context.Context, key string) (map[string]string, error)
	SetFields(ctx context.Context, key string, fields map[string]string) error
	Delete(ctx context.Context, key string) (int64, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	TypeOf(ctx context.Context, key string) (string, error)
	HashLen(ctx context.Context, key string) (int64, error)
}

// Options configures the connection attempt. Timeouts are short so a dead
// backend surfaces as unavailable instead of hanging a request.
type Options struct {
	Host          string
	Port          int
	DB            int
	DialTimeout   time.Duration
	SocketTimeout time.Duration
	TLS           bool
}

// Client lazily dials the store on first use and caches the connection.
// A failed dial leaves the client unset so the next call retries; there is
// no reconnect policy beyond that.
type Client struct {
	opts Options
	log  *slog.Logger

	mu  sync.Mutex
	rdb *redis.Client
}

func NewClient(opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{opts: opts, log: log}
}

var _ Hash = (*Client)(nil)

// conn returns the cached connection, dialing and pinging on first use.
func (c *Client) conn(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb != nil {
		return c.rdb, nil
	}

	var tlsConfig *tls.Config
	if c.opts.TLS {
		tlsConfig = &tls.Config{InsecureSkipVerify: true} // dev only
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.opts.Host, c.opts.Port),
		DB:           c.opts.DB,
		DialTimeout:  c.opts.DialTimeout,
		ReadTimeout:  c.opts.SocketTimeout,
		WriteTimeout: c.opts.SocketTimeout,
		TLSConfig:    tlsConfig,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.log.Warn("store connect failed", "addr", rdb.Options().Addr, "error", err)
		_ = rdb.Close()
		return nil, ErrUnavailable
	}
	c.log.Info("connected to store", "addr", rdb.Options().Addr, "tls", c.opts.TLS)
	c.rdb = rdb
	return c.rdb, nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return false, err
	}
	n, err := rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (c *Client) GetAll(ctx context.Context, key string) (map[string]string, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return fields, nil
}

func (c *Client) SetFields(ctx context.Context, key string, fields map[string]string) error {
	rdb, err := c.conn(ctx)
	if err != nil {
		return err
	}
	if err := rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) (int64, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	n, err := rdb.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", key, err)
	}
	return n, nil
}

// ScanKeys walks the keyspace incrementally with SCAN. Never KEYS: a full
// blocking listing stops being safe as the keyspace grows.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (c *Client) TypeOf(ctx context.Context, key string) (string, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return "", err
	}
	typ, err := rdb.Type(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("type %s: %w", key, err)
	}
	return typ, nil
}

func (c *Client) HashLen(ctx context.Context, key string) (int64, error) {
	rdb, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	n, err := rdb.HLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("hlen %s: %w", key, err)
	}
	return n, nil
}
