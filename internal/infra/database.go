package infra

import (
	"fmt"

	"shopkeep/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the
// constraints GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against
// throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Store{},
		&model.User{},
		&model.ProductTemplate{},
		&model.ProductListing{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Debt{},
		&model.StockMovement{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The stock CHECK is the database-level backstop for the non-negative stock
// invariant — the conditional UPDATE in the repository is the first line of
// defense, this catches anything that slips past it.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"non-negative stock check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_listing_stock_nonnegative') THEN
    ALTER TABLE product_listings
      ADD CONSTRAINT chk_listing_stock_nonnegative CHECK (stock >= 0);
  END IF;
END $$`},
		{"non-negative paid amount check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_debt_paid_nonnegative') THEN
    ALTER TABLE debts
      ADD CONSTRAINT chk_debt_paid_nonnegative CHECK (paid_amount >= 0);
  END IF;
END $$`},
		{"debt status sweep index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_debts_sweep') THEN
    CREATE INDEX idx_debts_sweep ON debts (due_date) WHERE status NOT IN ('paid', 'overdue');
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
