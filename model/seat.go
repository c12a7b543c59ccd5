package model

type Seat struct {
	DTO
	Row        string   `gorm:"not null" validate:"required" json:"row"`          // e.g., "A", "B"
	Column     int      `gorm:"not null" validate:"required,min=1" json:"column"` // e.g., 1, 2
	RoomId     uint     `json:"roomId"`
	Room       Room     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	SeatTypeId uint     `json:"seatTypeId"`
	SeatType   SeatType `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"SeatType"`
}

type SeatType struct {
	DTO
	Type          string  `gorm:"not null" validate:"required" json:"type"` // NORMAL VIP COUPLE
	PriceModifier float64 `json:"priceModifier"`
}
