package helper

import (
	"cinema_booking/database"
	"cinema_booking/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// GetInfoCustomerFromToken đọc claim khách hàng từ token đã parse ở middleware.
// Trả về claim rỗng nếu là guest.
func GetInfoCustomerFromToken(c *fiber.Ctx) (model.TokenClaim, model.Customer) {
	var claim model.TokenClaim
	var customer model.Customer

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return claim, customer
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return claim, customer
	}

	if v, ok := claims["customerId"].(float64); ok {
		claim.CustomerId = uint(v)
	}
	if v, ok := claims["accountId"].(float64); ok {
		claim.AccountId = uint(v)
	}
	if v, ok := claims["username"].(string); ok {
		claim.Username = v
	}

	if claim.CustomerId > 0 {
		if err := database.DB.First(&customer, "id = ? AND is_active IS true", claim.CustomerId).Error; err != nil && err != gorm.ErrRecordNotFound {
			return claim, model.Customer{}
		}
	}
	return claim, customer
}

// GetInfoAccountFromToken đọc claim nhân viên; isSeller = true khi token thuộc
// một account bán vé đang hoạt động.
func GetInfoAccountFromToken(c *fiber.Ctx) (model.TokenClaim, bool) {
	var claim model.TokenClaim

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return claim, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return claim, false
	}

	if v, ok := claims["accountId"].(float64); ok {
		claim.AccountId = uint(v)
	}
	if v, ok := claims["username"].(string); ok {
		claim.Username = v
	}
	if claim.AccountId == 0 {
		return claim, false
	}

	var account model.Account
	if err := database.DB.First(&account, "id = ? AND is_active IS true", claim.AccountId).Error; err != nil {
		return claim, false
	}
	claim.CinemaId = account.CinemaId
	return claim, true
}
