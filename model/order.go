package model

import "time"

const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderCancelled = "CANCELLED"
)

const (
	ChannelOnline  = "ONLINE"
	ChannelOffline = "OFFLINE"
)

type Order struct {
	DTO
	PublicCode     string     `gorm:"unique;size:20" json:"publicCode"` // ORD-XXXXXXXX
	CustomerID     *uint      `json:"customerId,omitempty"`             // null nếu bán tại quầy cho khách vãng lai
	Customer       *Customer  `json:"customer,omitempty"`
	ShowtimeID     uint       `json:"showtimeId"`
	Showtime       Showtime   `json:"showtime"`
	TotalAmount    float64    `json:"totalAmount"`
	Status         string     `json:"status"` // PENDING, PAID, CANCELLED
	PaymentMethod  string     `json:"paymentMethod"`
	SalesChannel   string     `gorm:"size:10;default:'ONLINE'" json:"salesChannel"` // ONLINE, OFFLINE
	PromotionID    *uint      `json:"promotionId,omitempty"`
	DiscountAmount float64    `json:"discountAmount"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	Tickets        []Ticket   `gorm:"foreignKey:OrderId" json:"tickets"`
	Combos         []OrderCombo   `gorm:"foreignKey:OrderId" json:"combos"`
	Products       []OrderProduct `gorm:"foreignKey:OrderId" json:"products"`
	CustomerName   string     `json:"customerName"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	CreatedBy      uint       `json:"createdBy"` // staff account khi bán tại quầy
}

// OrderDraft là nội dung đơn chưa chốt, được serialize vào Payment.Draft khi
// tạo yêu cầu thanh toán online, hoặc gửi trực tiếp ở luồng bán tại quầy.
type OrderDraft struct {
	ShowtimeCode  string          `json:"showtimeCode" validate:"required"`
	SeatIds       []uint          `json:"seatIds" validate:"required,min=1"`
	HeldBy        string          `json:"heldBy" validate:"required"`
	Combos        []ComboSelect   `json:"combos" validate:"omitempty,dive"`
	Products      []ProductSelect `json:"products" validate:"omitempty,dive"`
	PromotionCode string          `json:"promotionCode"`
	CustomerID    *uint           `json:"customerId,omitempty"`
	CustomerName  string          `json:"customerName"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email" validate:"omitempty,email"`
}
