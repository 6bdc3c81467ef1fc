package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/db"
	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/queue"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
	"github.com/stayloop/booking-service/webserver"
)

func initTracing(logger log.Logger) func() {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		_ = level.Error(logger).Log("msg", "failed to init trace exporter", "err", err)
		return func() {}
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
}

func main() {
	logger := log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "service", "booking")

	cfg, err := config.Load()
	if err != nil {
		_ = level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := db.InitDB(&cfg.Database); err != nil {
		_ = level.Error(logger).Log("msg", "failed to init database", "err", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	utils.InitValidator()

	shutdownTracing := initTracing(logger)
	defer shutdownTracing()

	sender := mail.NewSMTPSender(&cfg.Mail)
	renderer := mail.NewRenderer(&cfg.Mail)
	manager := queue.NewManager(db.DB, &cfg.Queue, sender, renderer,
		log.With(logger, "component", "queue"))

	svc := &services.Server{
		DB:     db.DB,
		Queue:  manager,
		Logger: log.With(logger, "component", "services"),
	}

	api := webserver.New(cfg, db.DB, svc, log.With(logger, "component", "http"))

	g := &run.Group{}

	queueCtx, queueCancel := context.WithCancel(context.Background())
	g.Add(func() error {
		manager.Start(queueCtx)
		<-queueCtx.Done()
		return nil
	}, func(error) {
		queueCancel()
		manager.Stop()
	})

	// Daily check-in reminders, swept hourly so a restart cannot skip a
	// day.
	reminderCtx, reminderCancel := context.WithCancel(context.Background())
	g.Add(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := svc.EnqueueCheckInReminders(reminderCtx); err != nil {
					_ = level.Error(logger).Log("msg", "reminder sweep failed", "err", err)
				}
			case <-reminderCtx.Done():
				return nil
			}
		}
	}, func(error) {
		reminderCancel()
	})

	g.Add(func() error {
		_ = level.Info(logger).Log("msg", "starting HTTP server", "addr", cfg.Server.Addr())
		return api.Start()
	}, func(error) {
		ctx, cancel := context.WithTimeout(
			context.Background(), time.Duration(cfg.Server.GracefulStop)*time.Second)
		defer cancel()
		if err := api.Stop(ctx); err != nil {
			_ = level.Error(logger).Log("msg", "failed to stop web server", "err", err)
		}
	})

	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddr()}
	g.Add(func() error {
		m := http.NewServeMux()
		m.Handle("/metrics", promhttp.Handler())
		metricsSrv.Handler = m
		_ = level.Info(logger).Log("msg", "starting metrics server", "addr", metricsSrv.Addr)
		return metricsSrv.ListenAndServe()
	}, func(error) {
		if err := metricsSrv.Close(); err != nil {
			_ = level.Error(logger).Log("msg", "failed to stop metrics server", "err", err)
		}
	})

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		if _, ok := err.(run.SignalError); !ok {
			_ = level.Error(logger).Log("err", err)
			os.Exit(1)
		}
		_ = level.Info(logger).Log("msg", "shutting down", "reason", err)
	}
}
