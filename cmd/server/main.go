package main

import (
	"log"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_collector/internal/app/di"
	"stock_collector/internal/app/router"
	stockshandler "stock_collector/internal/feature/stocks/transport/handler"
	validationhandler "stock_collector/internal/feature/validation/transport/handler"
	"stock_collector/internal/platform/db"
	platformredis "stock_collector/internal/platform/redis"
)

func main() {
	// .env はあれば読む（本番は環境変数のみで動く）
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] .env file not found, using environment variables")
	}

	// db
	gdb := db.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without report cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Usecase
	registryUC := di.NewRegistry(gdb)
	validatorUC := di.NewValidator(gdb)
	reportGen := di.NewReportGenerator(gdb, rdb)

	// Handler
	stocksH := stockshandler.NewStockHandler(registryUC)
	validationH := validationhandler.NewValidationHandler(validatorUC, reportGen)

	// ルータ生成
	r := router.NewRouter(stocksH, validationH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
