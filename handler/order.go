package handler

import (
	"cinema_booking/constants"
	"cinema_booking/database"
	"cinema_booking/model"
	"cinema_booking/utils"
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetOrderDetail trả chi tiết một đơn theo mã công khai, kèm QR check-in
// render lại từ mã đơn (QR trong email và QR ở đây luôn cùng payload).
func GetOrderDetail(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")

	var order model.Order
	err := database.DB.
		Preload("Showtime.Movie").
		Preload("Showtime.Room").
		Preload("Tickets.Seat").
		Preload("Combos.Combo").
		Preload("Products.Product").
		Where("public_code = ?", orderCode).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, constants.ORDER_NOT_FOUND, nil)
		}
		return utils.ErrorResponse(c, 500, "Lỗi truy vấn đơn hàng", err)
	}

	// Đơn của khách đã đăng nhập thì chỉ chủ đơn xem được; đơn guest tra
	// bằng chính mã đơn
	if order.CustomerID != nil {
		customer, ok := c.Locals("customer").(*model.Customer)
		if !ok || customer == nil || customer.ID != *order.CustomerID {
			return utils.ErrorResponse(c, 403, constants.FORBIDDEN, nil)
		}
	}

	qrImage := ""
	if qrBytes, err := utils.GenerateQRCode(order.PublicCode, 400); err == nil {
		qrImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBytes)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"order":   order,
		"qrImage": qrImage,
	})
}

// GetMyOrders liệt kê đơn của khách đang đăng nhập, mới nhất trước.
func GetMyOrders(c *fiber.Ctx) error {
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, nil)
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	var total int64
	database.DB.Model(&model.Order{}).Where("customer_id = ?", customer.ID).Count(&total)

	var orders []model.Order
	if err := database.DB.
		Preload("Showtime.Movie").
		Preload("Tickets").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi truy vấn đơn hàng", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}
