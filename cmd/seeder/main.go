//cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/unclebandit/xeno-crm/internal/config"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

func main() {
	dir := flag.String("dir", "seed", "directory holding customers.json and orders.json")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	customers, orders, err := seed(ctx, store, *dir)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Seeded %d customers and %d orders\n", customers, orders)
	fmt.Println("Database seeding completed successfully!")
}

// seed upserts the JSON fixtures in dir directly into the store.
func seed(ctx context.Context, store *repository.Store, dir string) (int, int, error) {
	var customers []model.Customer
	if err := readJSON(filepath.Join(dir, "customers.json"), &customers); err != nil {
		return 0, 0, err
	}
	for _, c := range customers {
		if err := store.Customers.Upsert(ctx, c); err != nil {
			return 0, 0, fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}

	var orders []model.Order
	if err := readJSON(filepath.Join(dir, "orders.json"), &orders); err != nil {
		return len(customers), 0, err
	}
	for _, o := range orders {
		if err := store.Orders.Upsert(ctx, o); err != nil {
			return len(customers), 0, fmt.Errorf("seed order %s: %w", o.OrderID, err)
		}
	}
	return len(customers), len(orders), nil
}

func readJSON(path string, v interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
