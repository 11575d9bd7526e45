package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/poslabel/internal/config"
	"github.com/xelth-com/poslabel/internal/database"
	"github.com/xelth-com/poslabel/internal/models"
	"github.com/xelth-com/poslabel/internal/store"
)

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func demoProducts() []models.Product {
	return []models.Product{
		{Name: "Basmati Rice 1kg", SKU: "RICE-BSM-1", Barcode: "8901234567003", Price: money("98.00"), MRP: money("120.00"), Cost: money("81.50"),
			Weight: money("1"), WeightUnit: "kg", HSNCode: "1006", GSTCode: "GST5", Category: "Staples", Brand: "India Gate", StockQuantity: 40},
		{Name: "Toor Dal 500g", SKU: "DAL-TOOR-500", Barcode: "8901234567010", Price: money("72.00"), MRP: money("85.00"),
			Weight: money("500"), HSNCode: "0713", GSTCode: "GST0", Category: "Staples", StockQuantity: 65},
		{Name: "Amul Butter 100g", SKU: "DAIRY-BUT-100", Barcode: "8901262010016", Price: money("56.00"),
			Weight: money("100"), HSNCode: "0405", GSTCode: "GST12", Category: "Dairy", Brand: "Amul", StockQuantity: 24},
		{Name: "Surf Excel 1kg", SKU: "HOME-SURF-1", Price: money("135.00"), MRP: money("150.00"),
			Weight: money("1"), WeightUnit: "kg", HSNCode: "3402", GSTCode: "GST18", Category: "Household", Brand: "HUL", StockQuantity: 12},
		{Name: "Cotton T-Shirt", SKU: "APP-TS-M-BLU", Barcode: "8905000123458", Price: money("299.00"), MRP: money("499.00"),
			HSNCode: "6109", GSTCode: "GST5", Category: "Apparel", Brand: "M MART", Model: "Crew", Size: "M", StockQuantity: 8},
	}
}

func main() {
	fmt.Println("🌱 Label Service Demo Data Seeder")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	ctx := context.Background()
	products := store.NewGormProducts(db.DB)
	existing, err := products.List(ctx, "", 1)
	if err != nil {
		log.Fatalf("❌ Failed to read products: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("⚠️  Products already exist, leaving the catalogue alone.")
	} else {
		fmt.Println("📦 Creating products...")
		for _, p := range demoProducts() {
			if err := products.Create(ctx, &p); err != nil {
				log.Printf("⚠️  Failed to create product %s: %v", p.Name, err)
				continue
			}
			fmt.Printf("   ✓ [%s] %s\n", p.SKU, p.Name)
		}
	}

	list, err := store.EnsureDefaults(ctx, store.NewGormTemplates(db.DB))
	if err != nil {
		log.Fatalf("❌ Failed to seed templates: %v", err)
	}
	fmt.Printf("🏷️  %d label templates available\n", len(list))
	fmt.Println("✅ Done")
}
