package handler

import (
	"cinema_booking/constants"
	"cinema_booking/database"
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/utils"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// guestToken ép session id do client gửi vào namespace GUEST_. Token USER_
// và STAFF_ chỉ sinh từ danh tính đã xác thực; client tự xưng "USER_7" sẽ
// thành "GUEST_USER_7" và không đụng được hold của người khác.
func guestToken(sessionId string) string {
	if sessionId == "" {
		return "GUEST_" + uuid.New().String()
	}
	if strings.HasPrefix(sessionId, "GUEST_") {
		return sessionId
	}
	return "GUEST_" + sessionId
}

// heldByFromRequest xác định chủ hold theo danh tính: nhân viên bán vé,
// khách đã đăng nhập, hoặc guest (session id do client giữ lại).
func heldByFromRequest(c *fiber.Ctx, guestSessionId string) string {
	if account, isSeller := helper.GetInfoAccountFromToken(c); isSeller {
		return fmt.Sprintf("STAFF_%d", account.AccountId)
	}
	if customer, ok := c.Locals("customer").(*model.Customer); ok && customer != nil {
		return fmt.Sprintf("USER_%d", customer.ID)
	}
	return guestToken(guestSessionId)
}

func HoldSeat(c *fiber.Ctx) error {
	db := database.DB
	code := c.Params("code")

	var input struct {
		SeatIds        []uint `json:"seatIds" validate:"required"`
		GuestSessionId string `json:"guestSessionId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}
	if len(input.SeatIds) == 0 {
		return utils.ErrorResponse(c, 400, "Chưa chọn ghế nào", nil)
	}

	var showtime model.Showtime
	if err := db.Where("public_code = ?", code).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}
	if showtime.StartTime.Before(time.Now()) {
		return utils.ErrorResponse(c, 400, "Suất chiếu đã bắt đầu", nil)
	}

	// Ghế SOLD nằm trong bảng bền, không giữ được nữa
	var available int64
	if err := db.Model(&model.ShowtimeSeat{}).
		Where("showtime_id = ? AND seat_id IN ? AND status = ?", showtime.ID, input.SeatIds, model.SeatAvailable).
		Count(&available).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi kiểm tra ghế", err)
	}
	if available != int64(len(input.SeatIds)) {
		return utils.ErrorResponse(c, 400, constants.SEAT_ALREADY_SOLD, nil)
	}

	heldBy := heldByFromRequest(c, input.GuestSessionId)

	conflicts, err := helper.HoldSeats(c.Context(), holdStore(), showtime.ID, input.SeatIds, heldBy, helper.DefaultHoldTTL)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Không thể giữ ghế", err)
	}
	if len(conflicts) > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":       constants.SEAT_ALREADY_HELD,
			"conflictSeats": conflicts,
		})
	}

	BroadcastSeatMap(showtime.ID)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"heldSeatIds": input.SeatIds,
		"heldBy":      heldBy,
		"expiresAt":   time.Now().Add(helper.DefaultHoldTTL),
	})
}

func ReleaseSeat(c *fiber.Ctx) error {
	db := database.DB
	code := c.Params("code")

	var input struct {
		SeatIds []uint `json:"seatIds" validate:"required"`
		HeldBy  string `json:"heldBy"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}

	var showtime model.Showtime
	if err := db.Where("public_code = ?", code).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}

	heldBy := heldByFromRequest(c, input.HeldBy)

	if err := helper.ReleaseSeats(c.Context(), holdStore(), showtime.ID, input.SeatIds, heldBy); err != nil {
		return utils.ErrorResponse(c, 500, "Không thể trả ghế", err)
	}

	BroadcastSeatMap(showtime.ID)

	return utils.SuccessResponse(c, 200, "Trả ghế thành công")
}

// GetHoldTTL trả thời gian giữ còn lại (giây) của một ghế, 404 nếu không có
// hold đang hoạt động.
func GetHoldTTL(c *fiber.Ctx) error {
	code := c.Params("code")

	seatId, err := strconv.ParseUint(c.Query("seatId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, 400, constants.DATA_INPUT_IS_NOT_NUMBER, err)
	}

	var showtime model.Showtime
	if err := database.DB.Where("public_code = ?", code).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}

	ttl, err := holdStore().RemainingTTL(c.Context(), showtime.ID, uint(seatId))
	if err != nil {
		if err == helper.ErrHoldNotFound {
			return utils.ErrorResponse(c, 404, "Ghế không có hold đang hoạt động", nil)
		}
		return utils.ErrorResponse(c, 500, "Lỗi truy vấn hold", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"seatId": seatId,
		"ttl":    int(ttl.Seconds()),
	})
}

// GetSeatsByShowtime trả sơ đồ ghế nhóm theo hàng, trạng thái HELD lấy trực
// tiếp từ redis tại thời điểm gọi.
func GetSeatsByShowtime(c *fiber.Ctx) error {
	code := c.Params("code")

	var showtime model.Showtime
	if err := database.DB.Where("public_code = ?", code).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}

	seatMap, err := helper.ProjectSeatMap(c.Context(), database.DB, holdStore(), showtime.ID)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi dựng sơ đồ ghế", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"showtimeCode": showtime.PublicCode,
		"seats":        seatMap,
	})
}
