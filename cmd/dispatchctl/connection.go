package main

import (
	"context"
	"fmt"
	"time"

	grpc_api "bot-dispatch/internal/api/grpc"
	"bot-dispatch/internal/infra/etcd"

	otelgrpc "go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const defaultTimeout = 5 * time.Second

// connection lazily dials the dispatcher named by the global flags.
type connection struct {
	addr          string
	etcdEndpoints []string
	timeout       time.Duration

	conn *grpc.ClientConn
}

func (c *connection) client(ctx context.Context) (*grpc_api.ControlClient, error) {
	if c.conn != nil {
		return grpc_api.NewControlClient(c.conn), nil
	}

	addr := c.addr
	if len(c.etcdEndpoints) > 0 {
		resolved, err := c.resolve(ctx)
		if err != nil {
			return nil, err
		}
		addr = resolved
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to dispatcher at %s: %w", addr, err)
	}
	c.conn = conn
	return grpc_api.NewControlClient(conn), nil
}

func (c *connection) resolve(ctx context.Context) (string, error) {
	cli, err := etcd.NewClient(c.etcdEndpoints, c.timeout)
	if err != nil {
		return "", err
	}
	defer cli.Close()

	addr, err := etcd.Resolve(ctx, cli)
	if err != nil {
		return "", fmt.Errorf("failed to discover dispatcher: %w", err)
	}
	return addr, nil
}

func (c *connection) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
