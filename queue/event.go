// Package queue chứa hàng đợi gửi vé: publisher đẩy task sau khi chốt đơn,
// worker pool tiêu thụ task để render QR và gửi email, tách hẳn khỏi vòng
// request/response.
package queue

// DeliveryQueueName là queue durable trên broker.
const DeliveryQueueName = "ticket.delivery"

// TicketDeliveryTask là snapshot đủ để gửi vé mà không cần truy vấn lại DB.
type TicketDeliveryTask struct {
	OrderId     uint     `json:"orderId"`
	OrderCode   string   `json:"orderCode"`
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	MovieTitle  string   `json:"movieTitle"`
	ShowtimeAt  string   `json:"showtimeAt"`
	RoomName    string   `json:"roomName"`
	Seats       []string `json:"seats"`
	TotalAmount float64  `json:"totalAmount"`
	QRPayload   string   `json:"qrPayload"`
}
