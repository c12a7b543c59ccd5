package router

import (
	"cinema_booking/handler"
	"cinema_booking/middleware"
	"cinema_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	lichchieu := v1.Group("/lich-chieu")
	lichchieu.Get("/:code/ghe", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetSeatsByShowtime)
	lichchieu.Post("/:code/giu-ghe", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.HoldSeat)
	lichchieu.Post("/:code/tra-ghe", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.ReleaseSeat)
	lichchieu.Get("/:code/giu-ghe/ttl", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetHoldTTL)

	lichchieu.Get("/ghe/:showtimeId", validate.GetById("showtimeId"), websocket.New(handler.SeatWebsocket))

	khuyenmai := v1.Group("/khuyen-mai")
	khuyenmai.Post("/kiem-tra", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.DiscountCheck(), handler.CheckDiscount)

	donhang := v1.Group("/don-hang")
	donhang.Get("/", middleware.Protected(), middleware.OptionalAuth(), handler.GetMyOrders)
	donhang.Get("/:orderCode", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetOrderDetail)

	staff := v1.Group("/staff", logger.New())
	staff.Post("/payments/cash", middleware.Protected(), handler.CashPayment)

	// Các endpoint gateway nằm ngoài /api/v1: URL này được đăng ký với VNPay
	app.Post("/payments/vnpay-create", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.CreatePayment)
	app.Get("/vnpay/return", handler.VNPayCallback)
	app.Post("/vnpay/ipn", handler.VNPayIPN)
}
