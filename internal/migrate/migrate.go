package migrate

import (
	"context"

	"orderflow/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions bool // pgcrypto for gen_random_uuid()
	CreateChecks     bool // CHECK constraints for money/quantity integrity
	CreateIndexes    bool // indexes and UNIQUE
	CreateFKsViaSQL  bool // FK via SQL (on top of GORM constraint tags)
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions: true,
		CreateChecks:     true,
		CreateIndexes:    true,
		CreateFKsViaSQL:  true,
	}
}

func MigrateOrderDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting order database migration")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto extension", zap.Error(err))
			return err
		}
	}

	log.Info("creating tables orders, order_items, idempotency_keys, products")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.IdempotencyKey{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateChecks {
		log.Info("creating CHECK constraints")

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('ORDER_STATUS_PENDING','ORDER_STATUS_CONFIRMED','ORDER_STATUS_CANCELLED'));
`).Error; err != nil {
			log.Error("failed to create CHECK for orders.status", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_total_amount_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_total_amount_non_negative
  CHECK (total_amount_cents >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for orders.total_amount_cents", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_items.quantity", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_prices_non_negative;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_prices_non_negative
  CHECK (unit_price_cents >= 0 AND line_total_cents >= 0);
`).Error; err != nil {
			log.Error("failed to create CHECK for order_items prices", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE idempotency_keys
  DROP CONSTRAINT IF EXISTS chk_idempotency_keys_status_allowed;
ALTER TABLE idempotency_keys
  ADD CONSTRAINT chk_idempotency_keys_status_allowed
  CHECK (status IN ('IDEMPOTENCY_STATUS_PENDING','IDEMPOTENCY_STATUS_COMPLETED'));
`).Error; err != nil {
			log.Error("failed to create CHECK for idempotency_keys.status", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("creating indexes")

		// Read-back order inside one order is pinned by position, and the
		// UNIQUE doubles as a guard against double-written lines.
		if err := db.WithContext(ctx).Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_order_items_order_position
ON order_items (order_id, position);
`).Error; err != nil {
			log.Error("failed to create unique index ux_order_items_order_position", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_email_created
ON orders (customer_email, created_at DESC);
`).Error; err != nil {
			log.Error("failed to create index ix_orders_email_created", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("creating foreign keys")

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("failed to create FK order_items.order_id -> orders.id", zap.Error(err))
			return err
		}
	}

	log.Info("order database migration finished")
	return nil
}
