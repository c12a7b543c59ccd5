package helper

import (
	"cinema_booking/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

const (
	SeatViewAvailable = "AVAILABLE"
	SeatViewHeld      = "HELD"
	SeatViewSold      = "SOLD"
)

type SeatView struct {
	Id     uint    `json:"id"`
	Label  string  `json:"label"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Price  float64 `json:"price"`
}

// ProjectSeatMap dựng sơ đồ ghế của một suất chiếu, nhóm theo hàng.
// SOLD lấy từ bảng showtime_seats; HELD tra trực tiếp Redis tại thời điểm gọi
// nên hold hết hạn tự biến mất khỏi sơ đồ, không cần worker quét.
func ProjectSeatMap(ctx context.Context, db *gorm.DB, holder SeatHolder, showtimeId uint) (map[string][]SeatView, error) {
	var showtime model.Showtime
	if err := db.First(&showtime, "id = ?", showtimeId).Error; err != nil {
		return nil, err
	}

	var seats []model.ShowtimeSeat
	if err := db.
		Preload("Seat").
		Preload("SeatType").
		Where("showtime_id = ?", showtimeId).
		Order("seat_row, seat_number").
		Find(&seats).Error; err != nil {
		return nil, err
	}

	// Một round trip cho toàn bộ hold của suất chiếu; sơ đồ này dựng lại
	// trên mỗi broadcast nên không tra từng ghế một
	seatIds := make([]uint, len(seats))
	for i, s := range seats {
		seatIds[i] = s.SeatId
	}
	heldBy, err := holder.Owners(ctx, showtimeId, seatIds)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]SeatView)
	for _, s := range seats {
		status := SeatViewAvailable
		if s.Status == model.SeatSold {
			status = SeatViewSold
		} else if _, held := heldBy[s.SeatId]; held {
			status = SeatViewHeld
		}

		row := s.SeatRow
		result[row] = append(result[row], SeatView{
			Id:     s.SeatId,
			Label:  fmt.Sprintf("%s%d", s.SeatRow, s.SeatNumber),
			Type:   s.SeatType.Type,
			Status: status,
			Price:  TicketPrice(showtime.Price, s.SeatType.PriceModifier),
		})
	}
	return result, nil
}
