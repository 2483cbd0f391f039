package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"authbase/internal/platform/config"
)

func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.URL, "file:")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// DB wraps the sql handle for injection into handlers that only need a ping.
type DB struct {
	DB *sql.DB
}

func NewWrapper(db *sql.DB) *DB {
	return &DB{DB: db}
}
