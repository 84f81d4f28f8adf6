package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dice_duel/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	apply := flag.Bool("apply", false, "apply migrations instead of listing them")
	migDir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	files, err := os.ReadDir(*migDir)
	if err != nil {
		logger.Fatal("read migrations dir", "dir", *migDir, "error", err)
	}

	if !*apply {
		for _, f := range files {
			fmt.Println(f.Name())
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer db.Close()

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(*migDir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		logger.Info("applied migration", "file", name)
	}
}
