package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/quic-go/quic-ldpc/fec"
	"github.com/quic-go/quic-ldpc/internal/config"
	"github.com/quic-go/quic-ldpc/internal/ldpcrpc"
)

func serveCommand() *command {
	var cfgPath, listen string
	return &command{
		name:    "serve",
		summary: "Serve the configured codes over gRPC",
		usage:   "serve --config <ldpc.yaml> [--listen addr]",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			fs.StringVarP(&cfgPath, "config", "c", "ldpc.yaml", "YAML configuration file")
			fs.StringVar(&listen, "listen", "", "override the configured gRPC listen address")
			return fs
		},
		run: func(_ *pflag.FlagSet, args []string) error {
			if err := requireArgs("serve", args); err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	codes, err := ldpcrpc.CodesFromConfig(cfg, fec.NewMetrics(reg))
	if err != nil {
		return err
	}
	srv, err := ldpcrpc.NewServer(codes, log.Named("rpc"))
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	grpcSrv := grpc.NewServer()
	ldpcrpc.RegisterCodecServer(grpcSrv, srv)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	httpSrv := &http.Server{Addr: cfg.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log.Info("ldpc codec service listening",
		zap.String("grpc", ln.Addr().String()),
		zap.String("metrics", cfg.MetricsListen),
		zap.Int("codes", len(codes)),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcSrv.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
