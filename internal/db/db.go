package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hutplan-backend/config"
	"hutplan-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableRangeIndex {
		if cfg.Driver != "postgres" {
			log.Printf("Warning: enable_range_index is only supported on postgres, ignoring for %s", cfg.Driver)
		} else {
			log.Println("Range index is enabled, applying postgres-specific DDL...")
			if err := applyRangeDDL(db); err != nil {
				log.Printf("Warning: failed to apply some range DDL: %v. Continuing without them.", err)
			}
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Room{},
		&model.Reservation{},
		&model.RoomAssignment{},
		&model.Quota{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func applyRangeDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// 起止必须有效：离开日晚于到达日
		"ALTER TABLE room_assignments " +
			"ADD CONSTRAINT room_assignments_period_valid CHECK (arrival < departure);",
		"ALTER TABLE quotas " +
			"ADD CONSTRAINT quota_period_valid CHECK (date_from < date_to);",

		// 表达式 GIST 索引：按房间查重叠区间（下界闭、上界开，与占用计算一致）
		"CREATE INDEX IF NOT EXISTS idx_room_assignments_period ON room_assignments " +
			"USING GIST (room_id, daterange(arrival::date, departure::date, '[)'));",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
