package handler

import (
	"cinema_booking/config"
	"cinema_booking/constants"
	"cinema_booking/database"
	"cinema_booking/helper"
	"cinema_booking/model"
	"cinema_booking/queue"
	"cinema_booking/utils"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newCoordinator() *helper.BookingCoordinator {
	return &helper.BookingCoordinator{
		DB:       database.DB,
		Holds:    holdStore(),
		Delivery: queue.NewPublisher(),
	}
}

// CreatePayment nhận OrderDraft, chốt số tiền và trả URL thanh toán VNPay.
// Chưa có Order nào được tạo ở bước này: draft nằm trong bản ghi Payment và
// chỉ thành đơn khi gateway gọi về thành công.
func CreatePayment(c *fiber.Ctx) error {
	var draft model.OrderDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}

	// Khách đã đăng nhập: gắn danh tính từ token, không tin client
	if customer, ok := c.Locals("customer").(*model.Customer); ok && customer != nil {
		draft.CustomerID = &customer.ID
		if draft.CustomerName == "" {
			draft.CustomerName = customer.FullName
		}
		if draft.Email == "" {
			draft.Email = customer.Email
		}
		if draft.Phone == "" {
			draft.Phone = customer.Phone
		}
	}

	validate := validator.New()
	if err := validate.Struct(&draft); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}

	db := database.DB

	var showtime model.Showtime
	if err := db.Where("public_code = ?", draft.ShowtimeCode).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}

	// Mọi ghế trong draft phải đang được giữ bởi đúng người yêu cầu
	owners, err := holdStore().Owners(c.Context(), showtime.ID, draft.SeatIds)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi kiểm tra hold", err)
	}
	for _, seatId := range draft.SeatIds {
		if owners[seatId] != draft.HeldBy {
			return utils.ErrorResponse(c, 409, fmt.Sprintf("Ghế %d không còn được giữ, vui lòng giữ lại", seatId), nil)
		}
	}

	total, err := helper.QuoteDraft(c.Context(), db, draft)
	if err != nil {
		return utils.ErrorResponse(c, 400, err.Error(), nil)
	}

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Không thể lưu thông tin đơn", err)
	}

	paymentCode := fmt.Sprintf("PAY%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])

	payment := model.Payment{
		Amount:      total,
		PaymentCode: paymentCode,
		Status:      model.PaymentPending,
		Method:      "VNPAY",
		Draft:       string(draftJSON),
	}
	if err := db.Create(&payment).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Không thể tạo thanh toán", err)
	}

	vnpay := NewVNPay()
	paymentUrl, err := vnpay.BuildPaymentUrl(model.PaymentRequest{
		Amount:    int64(total),
		OrderInfo: fmt.Sprintf("Thanh toan ve xem phim - suat %s", showtime.PublicCode),
		TxnRef:    paymentCode,
		IPAddr:    c.IP(),
	})
	if err != nil {
		return utils.ErrorResponse(c, 500, "Lỗi tạo payment URL", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"paymentUrl":  paymentUrl,
		"paymentCode": paymentCode,
		"amount":      total,
	})
}

// commitFromPayment chốt draft đã lưu trong bản ghi payment thành Order.
func commitFromPayment(c *fiber.Ctx, payment *model.Payment, paidAmount float64) (*model.Order, error) {
	var draft model.OrderDraft
	if err := json.Unmarshal([]byte(payment.Draft), &draft); err != nil {
		return nil, err
	}

	return newCoordinator().Commit(c.Context(), helper.CommitRequest{
		IdempotencyKey: payment.PaymentCode,
		Method:         "VNPAY",
		SalesChannel:   model.ChannelOnline,
		Draft:          draft,
		PaidAmount:     paidAmount,
	})
}

func markPaymentFailed(paymentCode string) {
	database.DB.Model(&model.Payment{}).
		Where("payment_code = ? AND status = ?", paymentCode, model.PaymentPending).
		Update("status", model.PaymentFailed)
}

// VNPayCallback xử lý redirect từ trình duyệt sau khi khách thanh toán.
func VNPayCallback(c *fiber.Ctx) error {
	appURL := config.Config("APP_URL")
	failedRedirect := func(reason string) error {
		return c.Redirect(appURL + "/payment-failed?reason=" + url.QueryEscape(reason))
	}

	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return failedRedirect("Dữ liệu callback không hợp lệ")
	}

	result := NewVNPay().VerifyReturnUrl(query)
	if !result.IsSuccess {
		if result.TxnRef != "" {
			markPaymentFailed(result.TxnRef)
		}
		return failedRedirect(result.Message)
	}

	var payment model.Payment
	if err := database.DB.Where("payment_code = ?", result.TxnRef).First(&payment).Error; err != nil {
		return failedRedirect("Không tìm thấy giao dịch")
	}

	// Số tiền gateway xác nhận phải khớp số đã chốt lúc tạo giao dịch
	if float64(result.Amount) != payment.Amount {
		markPaymentFailed(payment.PaymentCode)
		return failedRedirect(helper.ErrPaymentMismatch.Error())
	}

	database.DB.Model(&payment).Update("raw_callback", string(c.Request().URI().QueryString()))

	order, err := commitFromPayment(c, &payment, float64(result.Amount))
	if err != nil {
		markPaymentFailed(payment.PaymentCode)
		return failedRedirect(callbackFailureReason(err))
	}

	BroadcastSeatMap(order.ShowtimeID)

	return c.Redirect(fmt.Sprintf("%s/success?orderCode=%s", appURL, order.PublicCode))
}

func callbackFailureReason(err error) string {
	switch {
	case errors.Is(err, helper.ErrSeatConflict),
		errors.Is(err, helper.ErrDiscountRaceLost),
		errors.Is(err, helper.ErrPaymentMismatch):
		return err.Error()
	default:
		log.Printf("payment: commit failed: %v", err)
		return "Không thể hoàn tất đơn hàng, liên hệ hỗ trợ nếu đã bị trừ tiền"
	}
}

// VNPayIPN là kênh server-to-server của gateway; phải idempotent vì VNPay
// gọi lại nhiều lần đến khi nhận RspCode 00.
func VNPayIPN(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Body()))
	if err != nil {
		return c.JSON(fiber.Map{"RspCode": "99", "Message": "Invalid request"})
	}

	result := NewVNPay().VerifyIPN(query)
	if !result.IsSuccess {
		if result.TxnRef != "" {
			markPaymentFailed(result.TxnRef)
		}
		return c.JSON(fiber.Map{"RspCode": "97", "Message": result.Message})
	}

	var payment model.Payment
	if err := database.DB.Where("payment_code = ?", result.TxnRef).First(&payment).Error; err != nil {
		return c.JSON(fiber.Map{"RspCode": "01", "Message": "Order not found"})
	}

	if payment.Status == model.PaymentPaid {
		return c.JSON(fiber.Map{"RspCode": "02", "Message": "Order already confirmed"})
	}

	if float64(result.Amount) != payment.Amount {
		markPaymentFailed(payment.PaymentCode)
		return c.JSON(fiber.Map{"RspCode": "04", "Message": "Invalid amount"})
	}

	order, err := commitFromPayment(c, &payment, float64(result.Amount))
	if err != nil {
		markPaymentFailed(payment.PaymentCode)
		log.Printf("payment: IPN commit for %s failed: %v", payment.PaymentCode, err)
		return c.JSON(fiber.Map{"RspCode": "99", "Message": "Commit failed"})
	}

	BroadcastSeatMap(order.ShowtimeID)

	return c.JSON(fiber.Map{"RspCode": "00", "Message": "Success"})
}

// CashPayment là luồng bán tại quầy: nhân viên chọn ghế, thu tiền mặt và
// chốt đơn ngay trong một request. requestId do client sinh, dùng làm
// idempotency key để bấm lặp không tạo đơn trùng.
func CashPayment(c *fiber.Ctx) error {
	account, isSeller := helper.GetInfoAccountFromToken(c)
	if !isSeller {
		return utils.ErrorResponse(c, 403, constants.FORBIDDEN, nil)
	}

	var input struct {
		RequestId string           `json:"requestId" validate:"required"`
		Draft     model.OrderDraft `json:"draft"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}

	heldBy := fmt.Sprintf("STAFF_%d", account.AccountId)
	input.Draft.HeldBy = heldBy

	validate := validator.New()
	if err := validate.Struct(&input); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}
	if err := validate.Struct(&input.Draft); err != nil {
		return utils.ErrorResponse(c, 400, constants.INVALID_INPUT, err)
	}

	var showtime model.Showtime
	if err := database.DB.Where("public_code = ?", input.Draft.ShowtimeCode).First(&showtime).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.SHOWTIME_NOT_FOUND, err)
	}

	// Hold ngắn chỉ để sống qua commit; quầy không cần giữ ghế lâu
	conflicts, err := helper.HoldSeats(c.Context(), holdStore(), showtime.ID, input.Draft.SeatIds, heldBy, helper.CashHoldTTL)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Không thể giữ ghế", err)
	}
	if len(conflicts) > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":       constants.SEAT_ALREADY_HELD,
			"conflictSeats": conflicts,
		})
	}

	order, err := newCoordinator().Commit(c.Context(), helper.CommitRequest{
		IdempotencyKey: "CASH-" + input.RequestId,
		Method:         "CASH",
		SalesChannel:   model.ChannelOffline,
		Draft:          input.Draft,
		CreatedBy:      account.AccountId,
	})
	if err != nil {
		switch {
		case errors.Is(err, helper.ErrSeatConflict):
			return utils.ErrorResponse(c, 409, err.Error(), nil)
		case errors.Is(err, helper.ErrDiscountRaceLost):
			return utils.ErrorResponse(c, 400, err.Error(), nil)
		default:
			return utils.ErrorResponse(c, 500, "Không thể chốt đơn", err)
		}
	}

	BroadcastSeatMap(showtime.ID)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"order":   order,
		"message": "Thanh toán và tạo vé thành công",
	})
}

// ExpirePendingPayments đánh dấu các giao dịch PENDING đã quá cửa sổ 15 phút
// của gateway là EXPIRED. Hold ghế tự hết hạn theo TTL, không cần dọn.
func ExpirePendingPayments() {
	cutoff := time.Now().Add(-15 * time.Minute)
	res := database.DB.Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Update("status", model.PaymentExpired)
	if res.Error != nil {
		log.Printf("payment: expire pending failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("payment: expired %d stale pending payments", res.RowsAffected)
	}
}
