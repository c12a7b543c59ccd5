package helper

import "math"

// TicketPrice tính giá vé: giá cơ bản của suất chiếu nhân hệ số loại ghế.
func TicketPrice(basePrice, modifier float64) float64 {
	if modifier <= 0 {
		modifier = 1
	}
	return basePrice * modifier
}

// RoundVND làm tròn về đồng nguyên. VNPay chỉ nhận số tiền nguyên (vnp_Amount
// = VND * 100, kiểu int); tổng đơn phải được làm tròn MỘT lần trước khi lưu
// và gửi đi, nếu không số gateway báo về không bao giờ khớp số đã lưu.
func RoundVND(amount float64) float64 {
	return math.Round(amount)
}
