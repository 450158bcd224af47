package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"librarydesk/internal/config"
	"librarydesk/internal/util"
	"librarydesk/pkg/domain"
	"librarydesk/pkg/store"
)

// seedFile is the YAML shape of a catalog seed file.
type seedFile struct {
	Books []struct {
		ISBN   string  `yaml:"isbn"`
		Title  string  `yaml:"title"`
		Author string  `yaml:"author"`
		Price  float64 `yaml:"price"`
		Stock  int     `yaml:"stock"`
	} `yaml:"books"`
	Customers []struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"customers"`
}

func main() {
	catalogPath := flag.String("catalog", "seed/catalog.yaml", "path to the catalog seed file")
	configPath := flag.String("config", config.ConfigPath, "path to the service config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	util.InitLogger(cfg.LogLevel)

	raw, err := os.ReadFile(*catalogPath)
	if err != nil {
		util.Fatal("failed to read catalog", "path", *catalogPath, "err", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		util.Fatal("failed to parse catalog", "path", *catalogPath, "err", err)
	}

	// Opening the store applies migrations.
	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init postgres store", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	for _, b := range seed.Books {
		if err := dataStore.SaveBook(ctx, domain.Book{
			ISBN:      b.ISBN,
			Title:     b.Title,
			Author:    b.Author,
			Price:     b.Price,
			Stock:     b.Stock,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			util.Fatal("failed to seed book", "isbn", b.ISBN, "err", err)
		}
	}
	for _, c := range seed.Customers {
		if err := dataStore.SaveCustomer(ctx, domain.Customer{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: now,
		}); err != nil {
			util.Fatal("failed to seed customer", "id", c.ID, "err", err)
		}
	}

	fmt.Printf("seeded %d books and %d customers\n", len(seed.Books), len(seed.Customers))
}
