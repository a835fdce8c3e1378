package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"go-fleet/internal/config"
	"go-fleet/internal/database"
	"go-fleet/internal/features/report"
	"go-fleet/internal/middleware"
	"go-fleet/internal/reportengine"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	makes      = []string{"Volvo", "Scania", "Ford", "Isuzu", "Mercedes"}
	categories = []string{"truck", "van", "trailer", "car"}
	statuses   = []string{"active", "active", "active", "maintenance", "inactive"}
	priorities = []string{"low", "medium", "high", "critical"}
	woStatuses = []string{"open", "in_progress", "completed", "completed"}
	fuelTypes  = []string{"diesel", "diesel", "petrol", "adblue"}
	vendors    = []string{"Shell", "BP", "Total", "Depot"}
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	orgID := middleware.DevOrganisationID
	if v := os.Getenv("SEED_ORGANISATION_ID"); v != "" {
		if orgID, err = uuid.Parse(v); err != nil {
			log.Fatalf("invalid SEED_ORGANISATION_ID: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := gorm.Open(postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.PostgresDSN}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal(err)
	}
	if err := database.MigrateFleetSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seeding fleet data for organisation %s\n", orgID)
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	assetIDs, err := seedAssets(ctx, db, rng, orgID, now)
	if err != nil {
		log.Fatalf("seed assets: %v", err)
	}
	if err := seedWorkOrders(ctx, db, rng, orgID, assetIDs, now); err != nil {
		log.Fatalf("seed work orders: %v", err)
	}
	if err := seedFuel(ctx, db, rng, orgID, assetIDs, now); err != nil {
		log.Fatalf("seed fuel transactions: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := seedReports(ctx, &database.MongodbDB{Client: client, DB: client.Database(cfg.DBName)}, orgID, now); err != nil {
		log.Fatalf("seed saved reports: %v", err)
	}
	fmt.Println("Demo data seeded")
}

func money(rng *rand.Rand, lo, hi int) decimal.Decimal {
	return decimal.NewFromInt(int64(lo + rng.Intn(hi-lo))).Add(decimal.New(int64(rng.Intn(100)), -2))
}

func seedAssets(ctx context.Context, db *gorm.DB, rng *rand.Rand, orgID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, 40)
	for i := 1; i <= 40; i++ {
		id := uuid.New()
		ids = append(ids, id)
		purchased := now.AddDate(-rng.Intn(8), -rng.Intn(12), 0)
		err := db.WithContext(ctx).Exec(
			`INSERT INTO assets (id, organisation_id, asset_number, name, make, year, category, status, odometer, purchase_cost, purchase_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, orgID, fmt.Sprintf("FL-%04d", i), fmt.Sprintf("Unit %d", i),
			makes[rng.Intn(len(makes))], purchased.Year(), categories[rng.Intn(len(categories))],
			statuses[rng.Intn(len(statuses))], rng.Intn(400000), money(rng, 15000, 180000), purchased, purchased,
		).Error
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func seedWorkOrders(ctx context.Context, db *gorm.DB, rng *rand.Rand, orgID uuid.UUID, assetIDs []uuid.UUID, now time.Time) error {
	for i := 1; i <= 120; i++ {
		labor, parts := money(rng, 50, 2000), money(rng, 0, 5000)
		created := now.AddDate(0, 0, -rng.Intn(365))
		err := db.WithContext(ctx).Exec(
			`INSERT INTO work_orders (id, organisation_id, work_order_number, asset_id, title, status, priority, labor_cost, parts_cost, total_cost, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New(), orgID, fmt.Sprintf("WO-%05d", i), assetIDs[rng.Intn(len(assetIDs))], "Scheduled service",
			woStatuses[rng.Intn(len(woStatuses))], priorities[rng.Intn(len(priorities))], labor, parts, labor.Add(parts), created,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedFuel(ctx context.Context, db *gorm.DB, rng *rand.Rand, orgID uuid.UUID, assetIDs []uuid.UUID, now time.Time) error {
	for i := 0; i < 300; i++ {
		quantity := decimal.NewFromInt(int64(20 + rng.Intn(400)))
		price := decimal.New(int64(140+rng.Intn(60)), -2)
		at := now.Add(-time.Duration(rng.Intn(24*180)) * time.Hour)
		err := db.WithContext(ctx).Exec(
			`INSERT INTO fuel_transactions (id, organisation_id, asset_id, transaction_date, fuel_type, quantity, unit_price, total_cost, vendor, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New(), orgID, assetIDs[rng.Intn(len(assetIDs))], at, fuelTypes[rng.Intn(len(fuelTypes))],
			quantity, price, quantity.Mul(price).Round(2), vendors[rng.Intn(len(vendors))], at,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedReports(ctx context.Context, mongodb *database.MongodbDB, orgID uuid.UUID, now time.Time) error {
	repo := report.NewReportRepository(mongodb)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	reports := []report.SavedReport{
		{
			Name:       "Active assets",
			DataSource: reportengine.SourceAssets,
			Definition: reportengine.Definition{
				Columns: []reportengine.Column{
					{Field: "assetNumber", Visible: true},
					{Field: "name", Visible: true, Order: 1},
					{Field: "status", Visible: true, Order: 2},
				},
				Filters: []reportengine.Filter{{Field: "status", Operator: reportengine.OpEq, Value: reportengine.StringLiteral("active")}},
				OrderBy: &reportengine.OrderBy{Field: "assetNumber"},
			},
			IsShared: true,
		},
		{
			Name:       "Work order spend by priority",
			DataSource: reportengine.SourceWorkOrders,
			Definition: reportengine.Definition{
				GroupBy: []string{"priority"},
				Aggregations: []reportengine.Aggregation{
					{Field: "id", Type: reportengine.AggCount, Alias: "orders"},
					{Field: "totalCost", Type: reportengine.AggSum, Alias: "spend"},
				},
				OrderBy: &reportengine.OrderBy{Field: "spend", Direction: "desc"},
			},
			IsShared: true,
		},
		{
			Name:       "Fuel volume",
			DataSource: reportengine.SourceFuelTransactions,
			Definition: reportengine.Definition{
				Aggregations: []reportengine.Aggregation{{Field: "quantity", Type: reportengine.AggSum, Alias: "litres"}},
			},
		},
	}

	registry := reportengine.FleetRegistry()
	for i := range reports {
		r := &reports[i]
		if _, _, err := reportengine.Validate(registry, r.DataSource, &r.Definition); err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		r.OrganisationID = orgID.String()
		r.OwnerID = "dev-admin-id"
		r.CreatedAt, r.UpdatedAt = now, now
		if err := repo.Create(ctx, r); err != nil {
			return err
		}
	}
	fmt.Printf("Created %d saved reports\n", len(reports))
	return nil
}
