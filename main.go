package main

import (
	"cinema_booking/config"
	"cinema_booking/database"
	"cinema_booking/handler"
	"cinema_booking/queue"
	"cinema_booking/router"
	"cinema_booking/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigDefault("CORS_ORIGIN", "http://localhost:5173"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()
	database.ConnectRedis()

	handler.StartPaymentReaper()
	defer handler.StopPaymentReaper()

	handler.StartSeatMapFanout()

	// Worker gửi vé chạy nền, reconnect tự động khi broker rớt
	go queue.StartDeliveryWorkers(4, utils.DeliverTicketEmail)

	router.SetupRoutes(app)

	log.Fatal(app.Listen(":" + config.ConfigDefault("PORT", "8002")))
}
