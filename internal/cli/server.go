package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goEscrowd/internal/di"
)

const shutdownTimeout = 10 * time.Second

var (
	// Server flags, overriding the [server] section when set
	port     int
	bindAddr string
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the escrowd daemon",
	Long: `Start the escrowd server which provides:
- HTTP JSON-RPC API on /
- WebSocket commands and the transaction stream on /ws
- Prometheus metrics on /metrics
- Health check on /health

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = runServer

	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to (default from config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if port != 0 {
		cfg.Server.Port = port
	}
	if bindAddr != "" {
		cfg.Server.Bind = bindAddr
	}

	provider := di.NewProvider(di.New(), cfg, Version)
	if err := provider.RegisterAll(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Close(ctx); err != nil {
			log.WithError(err).Error("Failed to close services")
		}
	}()

	handler, err := buildMux(provider)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !quiet {
		printBanner()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildMux(provider *di.Provider) (*http.ServeMux, error) {
	rpcServer, err := provider.RPCServer()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	if cfg.Server.WebSocket {
		ws, err := provider.WebSocketServer()
		if err != nil {
			return nil, err
		}
		mux.Handle("/ws", ws)
	}
	if cfg.Server.Metrics {
		m, err := provider.Metrics()
		if err != nil {
			return nil, err
		}
		mux.Handle("/metrics", m.Handler())
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"escrowd"}`))
	})
	return mux, nil
}

func printBanner() {
	addr := cfg.ListenAddr()
	fmt.Printf("Starting escrowd %s\n", Version)
	fmt.Println("=========================================")
	fmt.Printf("  - Node DB:       %s\n", cfg.NodeDB.Type)
	if cfg.Journal.Enabled() {
		fmt.Printf("  - Journal:       %s\n", cfg.Journal.Driver)
	}
	fmt.Printf("  - HTTP JSON-RPC: http://%s/\n", addr)
	if cfg.Server.WebSocket {
		fmt.Printf("  - WebSocket:     ws://%s/ws\n", addr)
	}
	if cfg.Server.Metrics {
		fmt.Printf("  - Metrics:       http://%s/metrics\n", addr)
	}
	fmt.Printf("  - Health Check:  http://%s/health\n", addr)
	fmt.Println()
}
