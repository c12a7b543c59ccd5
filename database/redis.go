package database

import (
	"cinema_booking/config"
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ConnectRedis khởi tạo client Redis dùng cho giữ ghế và pub/sub sơ đồ ghế.
func ConnectRedis() {
	addr := config.ConfigDefault("REDIS_ADDR", "localhost:6379")

	dbNum := 0
	if s := config.Config("REDIS_DB"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
		DB:       dbNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed: %v", addr, err)
		return
	}
	log.Printf("Connection Opened to Redis (%s)", addr)
}
