package reportengine

import (
	"context"
	"fmt"
	"testing"

	"go-fleet/internal/database"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "14", []string{"POSTGRES_PASSWORD=postgres"})
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() {
		require.NoError(t, pool.Purge(resource), "purge resource %s", resource.Container.Name)
	})

	dsn := fmt.Sprintf("host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable", resource.GetPort("5432/tcp"))
	var orm *gorm.DB
	err = pool.Retry(func() error {
		orm, err = gorm.Open(postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), &gorm.Config{Logger: logger.Discard})
		if err != nil {
			return err
		}
		d, err := orm.DB()
		if err != nil {
			return err
		}
		return d.Ping()
	})
	require.NoError(t, err, "wait for postgres connection")
	return orm
}

func seedAssets(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, database.MigrateFleetSchema(context.Background(), db))

	for _, row := range fixtureExecutor().tables["assets"] {
		require.NoError(t, db.Exec(
			`INSERT INTO assets (id, organisation_id, asset_number, name, status, purchase_cost, created_at, deleted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row["id"], row["organisation_id"], row["asset_number"], row["name"], row["status"], row["purchase_cost"], row["created_at"], row["deleted_at"],
		).Error)
	}
}

func TestPostgresScenarios(t *testing.T) {
	db := startPostgres(t)
	seedAssets(t, db)

	engine := NewEngine(FleetRegistry(), NewGormExecutor(db), nil, zap.NewNop(), 0)
	ctx := context.Background()
	caller := Caller{OrganisationID: orgA}

	t.Run("Plain Page", func(t *testing.T) {
		res, err := engine.Execute(ctx, caller, Request{DataSource: SourceAssets, Definition: Definition{Columns: assetNumbers()}, Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, res.Data, 2)
		assert.Equal(t, int64(5), res.Pagination.Total)
		assert.Equal(t, int64(3), res.Pagination.TotalPages)
	})

	t.Run("Scalar Count", func(t *testing.T) {
		res, err := engine.Execute(ctx, caller, Request{DataSource: SourceAssets, Definition: Definition{
			Aggregations: []Aggregation{{Field: "id", Type: AggCount, Alias: "total"}},
		}})
		require.NoError(t, err)
		assert.Equal(t, []Row{{"total": int64(5)}}, res.Data)
	})

	t.Run("Grouped Count", func(t *testing.T) {
		res, err := engine.Execute(ctx, caller, Request{DataSource: SourceAssets, Definition: Definition{
			GroupBy:      []string{"status"},
			Aggregations: []Aggregation{{Field: "id", Type: AggCount}, {Field: "purchaseCost", Type: AggSum}},
		}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Pagination.Total)
		assert.Equal(t, []Row{
			{"status": "active", "count_id": int64(3), "sum_purchaseCost": int64(7000)},
			{"status": "inactive", "count_id": int64(2), "sum_purchaseCost": int64(8000)},
		}, res.Data)
	})

	t.Run("Like Is Case Insensitive", func(t *testing.T) {
		res, err := engine.Execute(ctx, caller, Request{DataSource: SourceAssets, Definition: Definition{
			Columns: assetNumbers(),
			Filters: []Filter{{Field: "name", Operator: OpLike, Value: StringLiteral("TRUCK 3")}},
		}})
		require.NoError(t, err)
		assert.Equal(t, []Row{{"assetNumber": "A-003"}}, res.Data)
	})

	t.Run("Date Range", func(t *testing.T) {
		res, err := engine.Execute(ctx, caller, Request{DataSource: SourceAssets, Definition: Definition{
			Columns:   assetNumbers(),
			DateRange: &DateRange{Field: "createdAt", StartDate: "2024-01-01", EndDate: "2024-01-31"},
			OrderBy:   &OrderBy{Field: "assetNumber"},
		}})
		require.NoError(t, err)
		assert.Equal(t, []Row{{"assetNumber": "A-002"}, {"assetNumber": "A-003"}, {"assetNumber": "A-004"}}, res.Data)
	})
}
