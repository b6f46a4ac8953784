package main

import (
	"context"
	"flag"
	"log"
	"os"

	"restaurant-ops/internal/config"
	"restaurant-ops/internal/db"
	"restaurant-ops/internal/seed"
)

func main() {
	var opts seed.Options
	flag.StringVar(&opts.EstablishmentKey, "establishment", "demo", "establishment key to seed")
	flag.StringVar(&opts.EstablishmentName, "name", "Demo Bistro", "establishment display name")
	flag.StringVar(&opts.Password, "password", "demo1234", "password for every seeded staff member")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{AppName: "restaurant-ops-seed", MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, opts); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied establishment=%s staff=owner,cashier,kitchen@%s.local", opts.EstablishmentKey, opts.EstablishmentKey)
}
