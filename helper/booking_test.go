package helper

import (
	"cinema_booking/model"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tổng đơn phải là đồng nguyên: hệ số loại ghế như 1.2 sinh phần lẻ
// (99999 * 1.2 = 119998.8), nếu không làm tròn thì số lưu trong payment
// không bao giờ khớp số VNPay báo về (vnp_Amount là số nguyên).
func TestCommitTotalIsWholeVND(t *testing.T) {
	total := RoundVND(TicketPrice(99999, 1.2))

	assert.Equal(t, 119999.0, total)
	// Số gửi đi và số lưu lại phải là cùng một giá trị
	assert.Equal(t, total, float64(int64(total)))
}

func TestCommitTotalMatchesGatewayAmount(t *testing.T) {
	total := RoundVND(TicketPrice(99999, 1.2) + TicketPrice(85000, 1))

	// Gateway nhận vnp_Amount = VND * 100 và báo về đúng số đó
	sent := int64(total) * 100
	returned := float64(sent / 100)

	assert.Equal(t, total, returned)
}

func TestQuoteArithmeticWithPercentageDiscount(t *testing.T) {
	subtotal := TicketPrice(90000, 1.2)*2 + 55000 // 2 ghế VIP + 1 combo
	promo := &model.Promotion{
		Status:        "active",
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		DiscountType:  "percentage",
		DiscountValue: 15,
	}
	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: subtotal})
	require.NoError(t, err)

	total := RoundVND(subtotal - discount)
	assert.Equal(t, 230350.0, total)
	assert.Equal(t, total, float64(int64(total)))
}

// Các lỗi sentinel của Commit phân biệt được bằng errors.Is: handler dựa vào
// đó để chọn thông điệp trả khách.
func TestCommitSentinelErrorsDistinct(t *testing.T) {
	sentinels := []error{ErrSeatConflict, ErrDiscountRaceLost, ErrPaymentMismatch}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				assert.ErrorIs(t, a, b)
			} else {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestOrderDraftValidation(t *testing.T) {
	v := validator.New()

	valid := model.OrderDraft{
		ShowtimeCode: "ST-001",
		SeatIds:      []uint{10, 11},
		HeldBy:       "USER_1",
		Email:        "khach@example.com",
	}
	assert.NoError(t, v.Struct(valid))

	noSeats := valid
	noSeats.SeatIds = nil
	assert.Error(t, v.Struct(noSeats))

	noOwner := valid
	noOwner.HeldBy = ""
	assert.Error(t, v.Struct(noOwner))

	badEmail := valid
	badEmail.Email = "không phải email"
	assert.Error(t, v.Struct(badEmail))

	badCombo := valid
	badCombo.Combos = []model.ComboSelect{{ComboId: 1, Quantity: 0}}
	assert.Error(t, v.Struct(badCombo))
}
