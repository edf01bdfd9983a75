package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"hardshop/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func newTestProduct(name string, category domain.Category, price string, stock int) *domain.Product {
	details, err := domain.NewDetails(category)
	if err != nil {
		panic(err)
	}
	return &domain.Product{
		ID:             uuid.New(),
		Name:           name,
		NormalizedName: name, // tests use lowercase names
		Category:       category,
		Manufacturer:   "Acme",
		Price:          decimal.RequireFromString(price),
		Stock:          stock,
		Details:        details,
	}
}

func TestProductCreateAndFindByID(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("ryzen 9 7950x", domain.CategoryCpu, "549.99", 12)
	product.Details = &domain.CpuDetails{
		Cores:              16,
		Socket:             "AM5",
		Series:             "Ryzen 9",
		IntegratedGraphics: true,
	}

	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if found.Name != product.Name || found.Category != domain.CategoryCpu {
		t.Errorf("got %+v", found)
	}
	if !found.Price.Equal(product.Price) {
		t.Errorf("price = %s, want %s", found.Price, product.Price)
	}
	if found.Stock != 12 {
		t.Errorf("stock = %d, want 12", found.Stock)
	}

	cpu, ok := found.Details.(*domain.CpuDetails)
	if !ok {
		t.Fatalf("details have type %T, want *domain.CpuDetails", found.Details)
	}
	if cpu.Cores != 16 || cpu.Socket != "AM5" || !cpu.IntegratedGraphics {
		t.Errorf("details = %+v", cpu)
	}
}

func TestProductFindByIDNotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("got %v, want ErrProductNotFound", err)
	}
}

func TestProductDeleteRemovesSubtypeRow(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("samsung 990 pro", domain.CategoryStorage, "159.99", 40)
	product.Details = &domain.StorageDetails{Capacity: 2000, Kind: "SSD", NVMe: true}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.FindByID(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("product still findable after delete: %v", err)
	}

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM storages WHERE id = $1", product.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("subtype row survived cascade: count = %d", count)
	}

	// Deleting an absent product is a no-op.
	if err := repo.Delete(ctx, uuid.New()); err != nil {
		t.Errorf("Delete of missing product returned %v, want nil", err)
	}
}

func TestProductSearch(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	seeds := []*domain.Product{
		newTestProduct("corsair vengeance ddr5", domain.CategoryMemory, "104.99", 30),
		newTestProduct("corsair rm850x", domain.CategoryPowerSupply, "139.99", 18),
		newTestProduct("kingston fury ddr5", domain.CategoryMemory, "94.99", 22),
	}
	for _, p := range seeds {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	t.Cleanup(func() {
		for _, p := range seeds {
			_, _ = testDB.Exec("DELETE FROM products WHERE id = $1", p.ID)
		}
	})

	// Keyword matching is case-insensitive against normalized names.
	results, err := repo.Search(ctx, nil, "CORSAIR")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Results arrive ordered by name.
	if results[0].Name != "corsair rm850x" || results[1].Name != "corsair vengeance ddr5" {
		t.Errorf("unexpected order: %q, %q", results[0].Name, results[1].Name)
	}

	// Category narrows the match set.
	memory := domain.CategoryMemory
	results, err = repo.Search(ctx, &memory, "corsair")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "corsair vengeance ddr5" {
		t.Errorf("category filter returned %d results", len(results))
	}

	// Details are hydrated on search results too.
	if _, ok := results[0].Details.(*domain.MemoryDetails); !ok {
		t.Errorf("details have type %T, want *domain.MemoryDetails", results[0].Details)
	}

	// No match yields an empty, non-nil slice.
	results, err = repo.Search(ctx, nil, "nonexistent-gadget")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("got %v, want empty slice", results)
	}
}

func TestProductUpdatePriceAndStock(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := newTestProduct("nzxt h5 flow", domain.CategoryCase, "94.99", 5)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdatePrice(ctx, product.ID, decimal.RequireFromString("79.99")); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}
	if err := repo.UpdateStock(ctx, product.ID, 0); err != nil {
		t.Fatalf("UpdateStock failed: %v", err)
	}

	found, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !found.Price.Equal(decimal.RequireFromString("79.99")) || found.Stock != 0 {
		t.Errorf("got price %s stock %d", found.Price, found.Stock)
	}

	if err := repo.UpdatePrice(ctx, uuid.New(), decimal.RequireFromString("1.00")); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("UpdatePrice on missing product returned %v", err)
	}
	if err := repo.UpdateStock(ctx, uuid.New(), 3); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("UpdateStock on missing product returned %v", err)
	}
}

// Every category's details survive a write/read cycle with their concrete type.
func TestProperty_DetailsRoundTripPerCategory(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("create then find preserves the category's detail type", prop.ForAll(
		func(categoryIdx int, priceCents int, stock int) bool {
			category := domain.Categories[categoryIdx]
			product := newTestProduct(
				"roundtrip "+uuid.NewString(),
				category,
				decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100)).String(),
				stock,
			)

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("Create failed: %v", err)
				return false
			}
			defer func() { _, _ = testDB.Exec("DELETE FROM products WHERE id = $1", product.ID) }()

			found, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FindByID failed: %v", err)
				return false
			}

			return found.Category == category &&
				found.Details != nil &&
				found.Details.ProductCategory() == category &&
				found.Stock == stock
		},
		gen.IntRange(0, len(domain.Categories)-1),
		gen.IntRange(1, 500_000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
