package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/freekieb7/hello/config"
	"github.com/freekieb7/hello/http"
	"github.com/freekieb7/hello/schedule"
	"github.com/freekieb7/hello/telemetry"
)

func main() {
	configFile := flag.String("config", "", "path to an INI config file")
	flag.Parse()

	if err := run(context.Background(), *configFile); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.TelemetryConf)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	logger := telemetry.NewLogger(os.Stdout, os.Stderr, cfg.SlogLevel(), otelslog.NewHandler(cfg.ServiceName))

	server := http.NewServer(cfg.ServiceName)
	server.Logger = logger
	server.Dispatcher = http.Bounded(cfg.MaxHandlers)
	server.AcceptBackoffMax = cfg.AcceptBackoffMax

	if cfg.StatsInterval > 0 {
		scheduler := schedule.NewScheduler(logger)
		job := schedule.NewJob("stats").
			WithInterval(cfg.StatsInterval).
			WithTasks(func(ctx context.Context) error {
				stats := server.Stats()
				logger.InfoContext(ctx, "server stats",
					"accepted", stats.Accepted,
					"accept_errors", stats.AcceptErrors,
					"read_errors", stats.ReadErrors,
					"write_errors", stats.WriteErrors,
					"responses", stats.Responses,
					"active", stats.Active,
				)
				return nil
			})
		if err := scheduler.AddJob(job); err != nil {
			return err
		}

		go scheduler.Run(ctx)
	}

	return server.ListenAndServe(ctx, cfg.Addr)
}
