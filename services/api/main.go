package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/geo"
	"github.com/02loveslollipop/irve-dashboard/services/api/config"
	"github.com/02loveslollipop/irve-dashboard/services/api/db"
	httpserver "github.com/02loveslollipop/irve-dashboard/services/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts []httpserver.Option

	if cfg.DatabaseURL != "" {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connection error: %v", err)
		}
		defer store.Close()
		opts = append(opts, httpserver.WithRunStore(store))
	} else {
		log.Printf("DATABASE_URL not set: run history disabled")
	}

	if cfg.GeoJSONPath != "" {
		departments, err := geo.LoadDepartments(cfg.GeoJSONPath)
		if err != nil {
			log.Fatalf("departments error: %v", err)
		}
		log.Printf("loaded %d department boundaries", len(departments.Codes()))
		opts = append(opts, httpserver.WithDepartments(departments))
	}

	if cfg.PopulationPath != "" {
		pop, err := aggregate.LoadPopulation(cfg.PopulationPath)
		if err != nil {
			log.Fatalf("population error: %v", err)
		}
		opts = append(opts, httpserver.WithPopulation(pop))
	}

	srv := httpserver.New(cfg, opts...)
	log.Printf("REST API listening on %s (dataset %s)", cfg.ListenAddr(), cfg.CleanPath)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
