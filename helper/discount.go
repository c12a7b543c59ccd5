package helper

import (
	"cinema_booking/model"
	"errors"
	"time"
)

var (
	ErrPromoInactive      = errors.New("Mã khuyến mãi không còn hiệu lực")
	ErrPromoExhausted     = errors.New("Mã khuyến mãi đã hết lượt sử dụng")
	ErrPromoWrongUserType = errors.New("Mã khuyến mãi không áp dụng cho loại tài khoản này")
	ErrPromoAlreadyUsed   = errors.New("Bạn đã sử dụng mã khuyến mãi này rồi")
	ErrPromoMinOrder      = errors.New("Đơn hàng chưa đạt giá trị tối thiểu của mã khuyến mãi")
)

// DiscountContext là thông tin đơn hàng dùng để xét mã khuyến mãi.
type DiscountContext struct {
	Subtotal   float64
	CustomerId uint
	UserType   string
}

// EvaluateDiscount xét mã theo đúng thứ tự, dừng ở lỗi đầu tiên, và không
// thay đổi trạng thái gì — việc trừ lượt chỉ diễn ra trong commit.
// alreadyUsed cho biết khách đã từng dùng mã này (tra từ PromotionUsage).
func EvaluateDiscount(promo *model.Promotion, alreadyUsed bool, now time.Time, dctx DiscountContext) (float64, error) {
	if promo == nil || promo.Status != "active" || now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return 0, ErrPromoInactive
	}
	if promo.MaxUsage > 0 && promo.UsedCount >= promo.MaxUsage {
		return 0, ErrPromoExhausted
	}
	if promo.UserType != "" && promo.UserType != dctx.UserType {
		return 0, ErrPromoWrongUserType
	}
	if alreadyUsed {
		return 0, ErrPromoAlreadyUsed
	}
	if promo.MinOrderAmount > 0 && dctx.Subtotal < promo.MinOrderAmount {
		return 0, ErrPromoMinOrder
	}

	var discount float64
	switch promo.DiscountType {
	case "percentage":
		discount = dctx.Subtotal * promo.DiscountValue / 100
		if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
			discount = promo.MaxDiscount
		}
	default: // fixed
		discount = promo.DiscountValue
	}
	if discount > dctx.Subtotal {
		discount = dctx.Subtotal
	}
	return discount, nil
}
