// internal/infra/etcd/discovery.go
package etcd

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// ErrNoInstance is returned when no dispatcher instance is registered.
var ErrNoInstance = errors.New("no dispatcher instance registered")

// Resolve returns the gRPC address of the most recently registered dispatcher instance.
func Resolve(ctx context.Context, client *clientv3.Client) (string, error) {
	resp, err := client.Get(ctx, InstanceRegistryPrefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortDescend),
		clientv3.WithLimit(1),
	)
	if err != nil {
		return "", fmt.Errorf("failed to list dispatcher instances: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return "", ErrNoInstance
	}
	return string(resp.Kvs[0].Value), nil
}
