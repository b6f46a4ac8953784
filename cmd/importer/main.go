package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"restaurant-ops/internal/config"
	"restaurant-ops/internal/db"
	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/importer"
	"restaurant-ops/internal/repository/category"
	"restaurant-ops/internal/repository/establishment"
	"restaurant-ops/internal/repository/product"
	"restaurant-ops/internal/service/menu"
)

func main() {
	var (
		filePath string
		estKey   string
		currency string
	)
	flag.StringVar(&filePath, "file", "", "Path to menu CSV")
	flag.StringVar(&estKey, "establishment", "", "Establishment key to import into")
	flag.StringVar(&currency, "currency", "BRL", "Currency for a new establishment and for rows without one")
	flag.Parse()

	if filePath == "" || estKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{AppName: "restaurant-ops-importer", MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	estRepo := establishment.NewPostgres(pool, logger)
	est, err := estRepo.GetByKey(ctx, estKey)
	if errors.Is(err, domain.ErrNotFound) {
		est, err = estRepo.Create(ctx, domain.Establishment{Key: estKey, Name: estKey, Currency: currency})
	}
	if err != nil {
		logger.Fatalf("ensure establishment %q: %v", estKey, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	menuService := menu.New(category.NewPostgres(pool, logger), product.NewPostgres(pool, logger))
	imp := importer.NewCSVImporter(f, menuService, menuService, est.ID, est.Currency)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products into %s in %s\n", count, estKey, time.Since(start).Truncate(time.Millisecond))
}
