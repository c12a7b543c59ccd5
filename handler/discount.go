package handler

import (
	"cinema_booking/constants"
	"cinema_booking/database"
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckDiscount xét mã khuyến mãi cho một giá trị đơn tạm tính. Chỉ đọc,
// không trừ lượt — lượt chỉ bị trừ khi đơn được chốt.
func CheckDiscount(c *fiber.Ctx) error {
	input, ok := c.Locals("discountInput").(model.DiscountCheckInput)
	if !ok {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, nil)
	}

	db := database.DB

	var promo model.Promotion
	if err := db.First(&promo, "code = ?", input.Code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, constants.PROMO_NOT_FOUND, nil)
		}
		return utils.ErrorResponse(c, 500, "Lỗi truy vấn mã khuyến mãi", err)
	}

	dctx := helper.DiscountContext{Subtotal: input.Subtotal}
	alreadyUsed := false
	if customer, ok := c.Locals("customer").(*model.Customer); ok && customer != nil {
		dctx.CustomerId = customer.ID
		dctx.UserType = customer.UserType

		var used int64
		db.Model(&model.PromotionUsage{}).
			Where("promotion_id = ? AND customer_id = ?", promo.ID, customer.ID).
			Count(&used)
		alreadyUsed = used > 0
	}

	discount, err := helper.EvaluateDiscount(&promo, alreadyUsed, time.Now(), dctx)
	if err != nil {
		return utils.ErrorResponse(c, 400, err.Error(), nil)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"code":        promo.Code,
		"discount":    discount,
		"finalAmount": input.Subtotal - discount,
	})
}
