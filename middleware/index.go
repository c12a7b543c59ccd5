package middleware

import (
	"cinema_booking/config"
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/utils"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func parseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
}

// Protected chặn request không có token hợp lệ.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, errors.New("no token"))
		}

		token, err := parseToken(tokenString)
		if err != nil || !token.Valid {
			return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, err)
		}

		c.Locals("user", token)
		return c.Next()
	}
}

// OptionalJWT parse token nếu có; request không token vẫn đi tiếp như guest.
func OptionalJWT() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Next()
		}

		token, err := parseToken(tokenString)
		if err != nil || !token.Valid {
			return c.Next()
		}

		c.Locals("user", token)
		return c.Next()
	}
}

// OptionalAuth nạp customer từ token (nếu có) vào Locals để handler phía sau
// dùng trực tiếp. Luôn đặt sau OptionalJWT.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, customer := helper.GetInfoCustomerFromToken(c)

		if claim.CustomerId == 0 {
			c.Locals("customerId", uint(0))
			return c.Next()
		}

		c.Locals("customerId", claim.CustomerId)
		if customer.ID > 0 {
			c.Locals("customer", &customer)
		}
		return c.Next()
	}
}
