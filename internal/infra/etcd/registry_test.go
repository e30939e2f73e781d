package etcd

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolveWithoutInstances(t *testing.T) {
	cli := newTestClient(t)

	if _, err := Resolve(context.Background(), cli); !errors.Is(err, ErrNoInstance) {
		t.Errorf("Resolve error = %v, want ErrNoInstance", err)
	}
}

func TestRegistryRegisterResolveDeregister(t *testing.T) {
	cli := newTestClient(t)
	ctx := context.Background()

	first := NewRegistry(cli, discardLogger())
	if err := first.Register(ctx, "node-a", "10.0.0.1:50051", 10*time.Second); err != nil {
		t.Fatalf("Register(node-a): %v", err)
	}
	second := NewRegistry(cli, discardLogger())
	if err := second.Register(ctx, "node-b", "10.0.0.2:50051", 10*time.Second); err != nil {
		t.Fatalf("Register(node-b): %v", err)
	}

	addr, err := Resolve(ctx, cli)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != "10.0.0.2:50051" {
		t.Errorf("Resolve = %q, want the newest instance %q", addr, "10.0.0.2:50051")
	}

	if err := second.Deregister(ctx); err != nil {
		t.Fatalf("Deregister(node-b): %v", err)
	}
	resp, err := cli.Get(ctx, InstanceRegistryPrefix+"node-b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Kvs) != 0 {
		t.Errorf("registration of node-b still present after its lease was revoked")
	}

	addr, err = Resolve(ctx, cli)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != "10.0.0.1:50051" {
		t.Errorf("Resolve = %q, want %q", addr, "10.0.0.1:50051")
	}

	if err := first.Deregister(ctx); err != nil {
		t.Fatalf("Deregister(node-a): %v", err)
	}
	if _, err := Resolve(ctx, cli); !errors.Is(err, ErrNoInstance) {
		t.Errorf("Resolve after deregistering all = %v, want ErrNoInstance", err)
	}
}

func TestRegisterRoundsShortTTLUp(t *testing.T) {
	cli := newTestClient(t)
	ctx := context.Background()

	r := NewRegistry(cli, discardLogger())
	if err := r.Register(ctx, "node-c", "10.0.0.3:50051", 200*time.Millisecond); err != nil {
		t.Fatalf("Register: %v", err)
	}
	t.Cleanup(func() { r.Deregister(context.Background()) })

	ttl, err := cli.TimeToLive(ctx, r.leaseID)
	if err != nil {
		t.Fatalf("TimeToLive: %v", err)
	}
	if ttl.GrantedTTL != 1 {
		t.Errorf("GrantedTTL = %d, want 1", ttl.GrantedTTL)
	}
}
