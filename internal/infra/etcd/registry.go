// internal/infra/etcd/registry.go
package etcd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	// InstanceRegistryPrefix is the etcd prefix where dispatcher instances advertise their gRPC address.
	InstanceRegistryPrefix = "/dispatch/instances/"
)

// Registry advertises a running dispatcher in etcd under a lease, so the
// entry disappears on its own if the process dies.
type Registry struct {
	client  *clientv3.Client
	logger  *slog.Logger
	leaseID clientv3.LeaseID
	key     string
}

// NewRegistry creates a new instance registry.
func NewRegistry(client *clientv3.Client, logger *slog.Logger) *Registry {
	return &Registry{
		client: client,
		logger: logger.With("component", "instance-registry"),
	}
}

// Register puts nodeID -> grpcAddr under a lease and keeps the lease alive
// until Deregister is called.
func (r *Registry) Register(ctx context.Context, nodeID, grpcAddr string, ttl time.Duration) error {
	r.key = InstanceRegistryPrefix + nodeID

	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	leaseResp, err := r.client.Grant(ctx, seconds)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	if _, err := r.client.Put(ctx, r.key, grpcAddr, clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("failed to put instance registration key: %w", err)
	}

	keepAliveCh, err := r.client.KeepAlive(context.Background(), r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to start keep-alive: %w", err)
	}

	go func() {
		for ka := range keepAliveCh {
			r.logger.Debug("lease keep-alive refreshed", "lease_id", ka.ID, "ttl", ka.TTL)
		}
		// Closed once the lease is revoked or expires.
		r.logger.Warn("keep-alive channel closed, instance registration may have expired", "key", r.key)
	}()

	r.logger.Info("instance registered", "key", r.key, "addr", grpcAddr)
	return nil
}

// Deregister revokes the lease, which deletes the registration key.
func (r *Registry) Deregister(ctx context.Context) error {
	r.logger.Info("deregistering instance", "key", r.key)

	if _, err := r.client.Revoke(ctx, r.leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	return nil
}
