// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command dlpictl sends and receives raw frames on a datalink.
//
//	dlpictl [-config file] [-link name] recv|send|demo
//
// recv waits for one frame on the configured SAP and group and prints a
// hex dump of it. send transmits the configured message to the group.
// demo runs both ends on an in-memory fabric.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"code.hybscloud.com/dlpi/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errUsage = errors.New("usage: dlpictl [-config file] [-link name] recv|send|demo")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "dlpictl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dlpictl", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	link := fs.String("link", "", "link name, overriding the config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	cfg, err := Load(*configPath)
	if err != nil {
		return err
	}
	if *link != "" {
		cfg.Link = *link
	}

	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	col := metrics.New("")
	if cfg.Metrics.Address != "" {
		go func() {
			if err := serveMetrics(ctx, cfg.Metrics, col); err != nil {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	switch fs.Arg(0) {
	case "recv":
		return recvCmd(ctx, cfg, col, log, out)
	case "send":
		return sendCmd(cfg, col, log)
	case "demo":
		return demoCmd(ctx, cfg, col, log, out)
	}
	return errUsage
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func serveMetrics(ctx context.Context, cfg MetricsConfig, col *metrics.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(col); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
