package validate

import (
	"cinema_booking/constants"
	"cinema_booking/model"
	"cinema_booking/utils"

	"github.com/gofiber/fiber/v2"
)

// DiscountCheck parse + validate body kiểm tra mã khuyến mãi, lưu vào Locals
// cho handler phía sau.
func DiscountCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.DiscountCheckInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.INVALID_INPUT, err)
		}

		c.Locals("discountInput", input)
		return c.Next()
	}
}
