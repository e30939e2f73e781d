package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	grpc_api "bot-dispatch/internal/api/grpc"
	"bot-dispatch/internal/clock"
	"bot-dispatch/internal/domain"
	"bot-dispatch/internal/infra/memory"
	"bot-dispatch/internal/master"
	"bot-dispatch/internal/usecase"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

func startDispatcher(t *testing.T) (*usecase.DispatchService, *connection) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := master.NewDispatcher(clock.NewFake(time.Unix(0, 0)), logger)
	svc := usecase.NewDispatchService(engine, memory.NewCompletionRepository(), logger)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	srv := grpc.NewServer()
	grpc_api.RegisterControlServer(srv, grpc_api.NewServer(svc, logger))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn := &connection{addr: lis.Addr().String(), timeout: defaultTimeout}
	t.Cleanup(conn.Close)
	return svc, conn
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	if args == nil {
		args = []string{} // nil would make cobra fall back to os.Args
	}
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%s %v: %v", cmd.Use, args, err)
	}
	return out.String()
}

func TestOrderAndBotCommands(t *testing.T) {
	svc, conn := startDispatcher(t)
	ctx := context.Background()

	if got := run(t, OrderCmd(conn), "submit"); got != "Order O-1 submitted.\n" {
		t.Errorf("order submit printed %q", got)
	}
	if got := run(t, OrderCmd(conn), "submit", "--vip"); got != "Order VIP-1 submitted.\n" {
		t.Errorf("order submit --vip printed %q", got)
	}
	if got := run(t, BotCmd(conn), "add"); got != "Bot 1 added.\n" {
		t.Errorf("bot add printed %q", got)
	}

	snap := svc.Snapshot(ctx)
	if len(snap.Workers) != 1 || snap.Workers[0].CurrentJobID != "VIP-1" {
		t.Fatalf("bots = %+v, want one bot on VIP-1", snap.Workers)
	}
	if len(snap.Pending) != 1 || snap.Pending[0].ID != "O-1" {
		t.Fatalf("pending = %+v, want [O-1]", snap.Pending)
	}

	if got := run(t, BotCmd(conn), "remove"); got != "Bot 1 removed.\n" {
		t.Errorf("bot remove printed %q", got)
	}
	if got := run(t, BotCmd(conn), "remove"); got != "No bot to remove.\n" {
		t.Errorf("bot remove on empty pool printed %q", got)
	}

	snap = svc.Snapshot(ctx)
	if len(snap.Workers) != 0 {
		t.Errorf("bots = %+v, want none", snap.Workers)
	}
	if len(snap.Pending) != 2 || snap.Pending[0].ID != "VIP-1" || snap.Pending[0].Status != domain.JobStatusPending {
		t.Errorf("pending = %+v, want VIP-1 back at the head", snap.Pending)
	}

	status := run(t, StatusCmd(conn))
	var parsed map[string]any
	if err := json.Unmarshal([]byte(status), &parsed); err != nil {
		t.Fatalf("status output is not JSON: %v\n%s", err, status)
	}
	if pending, _ := parsed["pending"].([]any); len(pending) != 2 {
		t.Errorf("status pending = %v, want 2 orders", parsed["pending"])
	}
}
