package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KVEntryModel is the GORM model for the kv_entries table
type KVEntryModel struct {
	Key   string `gorm:"column:entry_key;primaryKey;size:191"`
	Value string `gorm:"column:entry_value;type:text"`
}

// TableName specifies the table name for GORM
func (KVEntryModel) TableName() string {
	return "kv_entries"
}

// MySQLStore implements KVStore using MySQL with GORM
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates a new MySQL store using GORM and makes sure the
// kv_entries table exists
//
// Parameters:
//   - dsn: Data Source Name (connection string)
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if err := db.AutoMigrate(&KVEntryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// Get implements the KVStore interface method
// GORM query: SELECT * FROM kv_entries WHERE entry_key = ? LIMIT 1
func (s *MySQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var record KVEntryModel

	result := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("database query failed: %w", result.Error)
	}

	return record.Value, true, nil
}

// Set implements the KVStore interface method as an upsert
// INSERT ... ON DUPLICATE KEY UPDATE entry_value = VALUES(entry_value)
func (s *MySQLStore) Set(ctx context.Context, key, value string) error {
	record := KVEntryModel{Key: key, Value: value}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record)
	if result.Error != nil {
		return fmt.Errorf("database write failed: %w", result.Error)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
