// cmd/dispatcher/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	grpc_api "bot-dispatch/internal/api/grpc"
	http_api "bot-dispatch/internal/api/http"
	"bot-dispatch/internal/clock"
	"bot-dispatch/internal/config"
	"bot-dispatch/internal/domain"
	"bot-dispatch/internal/infra/etcd"
	"bot-dispatch/internal/infra/memory"
	"bot-dispatch/internal/master"
	"bot-dispatch/internal/scheduler"
	"bot-dispatch/internal/tracing"
	"bot-dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelgrpc "go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

// corsMiddleware wraps an http.Handler with CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // For local dev, allow all origins
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		// Handle pre-flight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	// 1. Initialize logger and tracer
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	nodeID := uuid.New().String()

	tracerShutdown, err := tracing.InitTracer("bot-dispatcher", nodeID, os.Stderr)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	log.Printf("Starting bot dispatcher, node ID: %s", nodeID)

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 3. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 5. Completion log and instance registry; etcd when configured
	var completions domain.CompletionRepository
	var registry *etcd.Registry
	if cfg.UseEtcd() {
		etcdClient, err := etcd.NewClient(cfg.EtcdEndpoints, cfg.EtcdTimeout)
		if err != nil {
			log.Fatalf("Failed to create etcd client: %v", err)
		}
		defer etcdClient.Close()
		log.Println("Connected to etcd.")

		completions = etcd.NewEtcdCompletionRepository(etcdClient, logger)
		registry = etcd.NewRegistry(etcdClient, logger)
	} else {
		log.Println("No etcd endpoints configured, keeping the completion log in memory.")
		completions = memory.NewCompletionRepository()
	}

	// 6. Instantiate components
	dispatcher := master.NewDispatcher(clock.NewReal(), logger, master.WithProcessingDuration(cfg.ProcessingDuration))
	log.Printf("Bots complete an order in %s", dispatcher.ProcessingDuration())
	dispatchService := usecase.NewDispatchService(dispatcher, completions, logger)

	reporter, err := scheduler.NewSnapshotReporter(dispatcher, cfg.SnapshotSchedule, logger)
	if err != nil {
		log.Fatalf("Failed to create snapshot reporter: %v", err)
	}
	go func() {
		if err := reporter.Start(rootCtx); err != nil && err != context.Canceled {
			logger.Error("snapshot reporter stopped with error", "error", err)
		}
	}()

	// 7. Start the gRPC control server
	lis, err := net.Listen("tcp", cfg.GrpcListenAddr)
	if err != nil {
		log.Fatalf("Failed to listen for gRPC: %v", err)
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	grpc_api.RegisterControlServer(grpcServer, grpc_api.NewServer(dispatchService, logger))

	log.Printf("gRPC server listening on %s", cfg.GrpcListenAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("gRPC server failed: %v", err)
		}
	}()

	if registry != nil {
		regCtx, regCancel := context.WithTimeout(rootCtx, cfg.EtcdTimeout)
		err := registry.Register(regCtx, nodeID, advertisedAddr(lis.Addr()), cfg.InstanceTTL)
		regCancel()
		if err != nil {
			log.Fatalf("Failed to register instance: %v", err)
		}
		defer func() {
			deregCtx, deregCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer deregCancel()
			if err := registry.Deregister(deregCtx); err != nil {
				logger.Error("failed to deregister instance", "error", err)
			}
		}()
	}

	// 8. Register routes and metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	http_api.NewDispatchHandler(dispatchService, logger).RegisterRoutes(mux)

	// 9. Start HTTP API server with CORS middleware
	log.Printf("Starting HTTP API server on %s", cfg.HttpListenAddr)
	server := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: corsMiddleware(mux),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 10. Block until shutdown
	<-rootCtx.Done()
	log.Println("Shutting down dispatcher gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown failed: %v", err)
	}
	grpcServer.GracefulStop()

	log.Println("Dispatcher shut down.")
}

// advertisedAddr turns a wildcard listen address into one a client on this host can dial.
func advertisedAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	host, err := os.Hostname()
	if err != nil {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(tcp.Port))
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v. Initiating graceful shutdown...", sig)
		cancel()
	}()
}
