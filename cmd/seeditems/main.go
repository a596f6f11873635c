// Command seeditems replaces the item catalog from a CSV file with the
// columns: category, item_name, hsn_code, rate_of_gst. The first row
// is treated as a header when it does not parse as data.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxlens/invoice-analyzer/internal/common"
	"github.com/taxlens/invoice-analyzer/internal/entity"
	"github.com/taxlens/invoice-analyzer/internal/observability/logging"
	"github.com/taxlens/invoice-analyzer/internal/repository"
)

func main() {
	csvPath := flag.String("csv", "", "path to the item catalog CSV")
	flag.Parse()
	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seeditems -csv <items.csv>")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	log := logging.NewJSONLogger("seeditems", os.Getenv("LOG_LEVEL"))

	items, err := readCatalog(*csvPath)
	if err != nil {
		log.Error("read catalog", "path", *csvPath, "err", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		log.Error("catalog is empty", "path", *csvPath)
		os.Exit(1)
	}

	db, err := repository.Open(repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer repository.Close(db, log)
	if err := repository.AutoMigrate(db, log); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := repository.NewItemRepository(db, log).ReplaceAll(ctx, items)
	if err != nil {
		log.Error("replace catalog", "err", err)
		os.Exit(1)
	}
	log.Info("catalog seeded", "items", n, "path", *csvPath)
}

func readCatalog(path string) ([]entity.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	var items []entity.Item
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		rate, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("line %d: rate_of_gst %q: %w", line, row[3], err)
		}
		items = append(items, entity.Item{
			Category:  strings.TrimSpace(row[0]),
			ItemName:  strings.TrimSpace(row[1]),
			HSNCode:   strings.TrimSpace(row[2]),
			RateOfGST: rate,
		})
	}
	return items, nil
}
