package constants

const (
	DATA_INPUT_IS_NOT_NUMBER = "Dữ liệu truyền vào không phải là số"
	INVALID_INPUT            = "Dữ liệu không hợp lệ"
	UNAUTHORIZED             = "Vui lòng đăng nhập"
	FORBIDDEN                = "FORBIDDEN"

	SHOWTIME_NOT_FOUND = "Suất chiếu không tồn tại"
	ORDER_NOT_FOUND    = "Không tìm thấy đơn hàng"

	SEAT_ALREADY_HELD = "Ghế đã có người giữ"
	SEAT_ALREADY_SOLD = "Ghế đã được bán"

	PROMO_NOT_FOUND = "Mã khuyến mãi không tồn tại"
)
