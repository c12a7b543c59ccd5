package model

import "time"

const (
	TicketPending   = "PENDING"
	TicketPaid      = "PAID"
	TicketCheckedIn = "CHECKED_IN"
	TicketCancelled = "CANCELLED"
)

type Ticket struct {
	DTO
	TicketCode  string     `gorm:"size:20;uniqueIndex" json:"ticketCode"`
	Status      string     `gorm:"not null;default:'PAID'" json:"status"`
	Price       float64    `gorm:"not null" json:"price"`
	IssuedAt    time.Time  `json:"issuedAt"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
	CheckedInBy *uint      `json:"checkedInBy,omitempty"`

	ShowtimeSeatId uint  `json:"showtimeSeatId"`
	ShowtimeId     uint  `json:"showtimeId"`
	SeatId         uint  `json:"seatId"`
	OrderId        uint  `json:"orderId"`
	CustomerId     *uint `gorm:"default:null" json:"customerId"`

	// Relationship – không expose vào JSON mặc định
	Showtime     Showtime     `gorm:"foreignKey:ShowtimeId" json:"-"`
	Seat         Seat         `gorm:"foreignKey:SeatId" json:"-"`
	Order        Order        `gorm:"foreignKey:OrderId" json:"-"`
	ShowtimeSeat ShowtimeSeat `gorm:"foreignKey:ShowtimeSeatId" json:"-"`
}
