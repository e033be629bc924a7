// Command dbtool creates or drops the promptlab tables for the current
// environment's prefix.
//
//	dbtool init   create missing tables
//	dbtool drop   drop every table for the prefix
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"promptlab/internal/app"
	"promptlab/internal/config"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 || (os.Args[1] != "init" && os.Args[1] != "drop") {
		fmt.Fprintln(os.Stderr, "usage: dbtool init|drop")
		os.Exit(2)
	}

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	// Opening the store applies the schema, which is all init needs
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	switch os.Args[1] {
	case "init":
		fmt.Printf("Schema ready (driver: %s, prefix: %q)\n", store.Driver, cfg.TablePrefix)
	case "drop":
		if err := store.DropTables(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Printf("All tables dropped successfully (driver: %s, prefix: %q)\n", store.Driver, cfg.TablePrefix)
	}
}
