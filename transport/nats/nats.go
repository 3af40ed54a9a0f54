// Package nats implements the pub/sub transport collaborator over NATS:
// the production backend for the pubsub source and the
// analysis/debug/control sinks. Publish and Subscribe use core NATS
// subjects; the JetStream context is used only by EnsureStream.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client wraps a NATS connection and its JetStream context.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// Connect dials url and opens a JetStream context.
func Connect(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("nats: jetstream: %w", err)
	}
	return &Client{conn: conn, js: js, logger: logger}, nil
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Drain()
	}
}

// Publish sends raw bytes to channel.
func (c *Client) Publish(channel string, raw []byte) error {
	return c.conn.Publish(channel, raw)
}

// Subscribe implements source.PubSub: every message published to channel is
// handed to handler until the returned unsubscribe func runs.
func (c *Client) Subscribe(channel string, handler func(raw []byte)) (func() error, error) {
	sub, err := c.conn.Subscribe(channel, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("nats: subscribe %s: %w", channel, err)
	}
	return func() error { return sub.Unsubscribe() }, nil
}

// EnsureStream makes sure a JetStream stream named name exists covering the
// given subjects, creating it if necessary. Sinks that need at-least-once
// delivery call this before publishing.
func (c *Client) EnsureStream(ctx context.Context, name string, subjects []string) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
	})
	return err
}
