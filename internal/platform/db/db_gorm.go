// Package db は環境設定からGORM接続を組み立てます。
package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	stocksentity "stock_collector/internal/feature/stocks/domain/entity"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB opens the configured database. DB_TYPE selects the backend:
// sqlite (default, single-process batch runs) or postgres. Connection
// failures are retried for up to 60 seconds before giving up.
func OpenDB() *gorm.DB {
	var dial gorm.Dialector

	switch os.Getenv("DB_TYPE") {
	case "", "sqlite":
		path := os.Getenv("SQLITE_DB_PATH")
		if path == "" {
			path = "./data/stock_data.db"
		}
		// SQLite 用のデータディレクトリを用意
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("failed to create data dir: %v", err)
			}
		}
		dial = gsqlite.Open(path)

	case "postgres":
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		name := os.Getenv("DB_NAME")
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, pass, name)
		dial = gpostgres.Open(dsn)

	default:
		log.Fatalf("unsupported DB_TYPE: %q", os.Getenv("DB_TYPE"))
	}

	var (
		gdb *gorm.DB
		err error
	)
	deadline := time.Now().Add(60 * time.Second)
	for {
		gdb, err = gorm.Open(dial, &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// レジストリのマイグレーション。銘柄別テーブルはストアが
		// 書き込み時に動的作成するためここでは扱わない。
		if err := gdb.AutoMigrate(&stocksentity.Stock{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return gdb
}
