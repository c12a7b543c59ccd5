package model

import "time"

type Promotion struct {
	DTO
	Code           string    `gorm:"unique;not null" json:"code"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	DiscountType   string    `gorm:"not null" json:"discountType"` // percentage, fixed
	DiscountValue  float64   `gorm:"type:decimal(10,2);not null" json:"discountValue"`
	MaxDiscount    float64   `gorm:"type:decimal(10,2)" json:"maxDiscount"`    // trần giảm cho loại percentage, 0 = không trần
	MinOrderAmount float64   `gorm:"type:decimal(10,2)" json:"minOrderAmount"` // 0 = không yêu cầu
	StartDate      time.Time `gorm:"not null" json:"startDate"`
	EndDate        time.Time `gorm:"not null" json:"endDate"`
	MaxUsage       int       `gorm:"default:0" json:"maxUsage"` // 0 = không giới hạn
	UsedCount      int       `gorm:"default:0" json:"usedCount"`
	UserType       string    `json:"userType"` // rỗng = mọi loại khách
	Status         string    `gorm:"default:'active';not null" json:"status"`
}

// PromotionUsage ghi nhận một lần dùng mã của một khách hàng. Unique index
// (promotion_id, customer_id) chặn khách dùng lại mã kể cả khi hai commit
// chạy song song.
type PromotionUsage struct {
	DTO
	PromotionId     uint      `gorm:"not null;uniqueIndex:idx_promo_customer" json:"promotionId"`
	CustomerId      uint      `gorm:"not null;uniqueIndex:idx_promo_customer" json:"customerId"`
	OrderId         uint      `gorm:"index" json:"orderId"`
	AppliedAt       time.Time `gorm:"not null" json:"appliedAt"`
	DiscountApplied float64   `gorm:"type:decimal(10,2);not null" json:"discountApplied"`
}

type DiscountCheckInput struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
}
