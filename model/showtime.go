package model

import "time"

type Movie struct {
	DTO
	Title    string `gorm:"not null" json:"title"`
	Duration int    `json:"duration"` // phút
	Status   string `json:"status"`
}

type Room struct {
	DTO
	Name     string `gorm:"not null" json:"name"`
	CinemaId uint   `json:"cinemaId"`
}

type Showtime struct {
	DTO
	PublicCode string    `gorm:"size:16;uniqueIndex" json:"publicCode"`
	StartTime  time.Time `validate:"required" json:"start"`
	EndTime    time.Time `validate:"required" json:"end"`
	Price      float64   `json:"price"` // giá cơ bản, nhân với PriceModifier của loại ghế
	Status     string    `json:"status"`
	Format     string    `gorm:"size:10" json:"format"` // 2D, 3D, IMAX, 4DX
	MovieId    uint      `json:"movieId"`
	RoomId     uint      `json:"roomId"`
	Movie      Movie     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:MovieId" json:"Movie"`
	Room       Room      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:RoomId" json:"Room"`

	Tickets []Ticket `gorm:"foreignKey:ShowtimeId" json:"tickets"`
}

const (
	SeatAvailable = "AVAILABLE"
	SeatSold      = "SOLD"
)

// ShowtimeSeat là trạng thái bền của từng ghế trong một suất chiếu.
// Ghế đang được giữ tạm thời không nằm ở đây mà nằm trong Redis (helper.SeatHoldStore);
// SOLD trong bảng này luôn thắng mọi hold.
type ShowtimeSeat struct {
	DTO
	ShowtimeId uint     `gorm:"uniqueIndex:idx_showtime_seat" json:"showtimeId"`
	SeatId     uint     `gorm:"uniqueIndex:idx_showtime_seat" json:"seatId"`
	SeatRow    string   `json:"seatRow"`
	SeatNumber int      `json:"seatNumber"`
	SeatTypeId uint     `json:"seatTypeId"`
	Status     string   `gorm:"default:'AVAILABLE'" json:"status"` // AVAILABLE, SOLD
	Showtime   Showtime `json:"Showtime"`
	SeatType   SeatType `json:"SeatType"`
	Seat       Seat     `json:"Seat"`
}
