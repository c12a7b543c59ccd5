package model

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
	PaymentExpired = "EXPIRED"
)

// Payment là một lượt đi/về với cổng thanh toán. PaymentCode (vnp_TxnRef hoặc
// requestId của staff) là duy nhất toàn cục và là idempotency key của commit.
type Payment struct {
	DTO
	OrderId     *uint   `json:"orderId"` // gán sau khi commit thành công
	Amount      float64 `gorm:"not null" json:"amount"`
	PaymentCode string  `gorm:"unique" json:"paymentCode"`
	Status      string  `gorm:"default:PENDING" json:"status"`
	Method      string  `json:"method"` // VNPAY, CASH
	Draft       string  `gorm:"type:text" json:"-"` // OrderDraft dạng JSON
	RawCallback string  `gorm:"type:text" json:"-"` // query string callback gần nhất

	Order *Order `gorm:"foreignKey:OrderId" json:"-"`
}
