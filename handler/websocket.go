package handler

import (
	"cinema_booking/database"
	"cinema_booking/helper"
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const seatMapChannel = "seatmap"

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// seatClient bọc một connection với mutex ghi: snapshot lúc mới connect và
// fanout từ pub/sub có thể chạy đồng thời, mà websocket không cho phép hai
// WriteJSON cùng lúc trên một connection.
type seatClient struct {
	mu   sync.Mutex
	conn jsonWriter
}

func (sc *seatClient) writeJSON(v interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteJSON(v)
}

var (
	seatConnections = make(map[uint]map[*websocket.Conn]*seatClient)
	seatMutex       sync.Mutex
)

func holdStore() helper.SeatHolder {
	return helper.NewSeatHoldStore(database.RDB)
}

type seatMapEvent struct {
	ShowtimeId uint                         `json:"showtimeId"`
	Seats      map[string][]helper.SeatView `json:"seats"`
}

// SeatWebsocket giữ kết nối realtime cho sơ đồ ghế của một suất chiếu.
// Client mới connect nhận ngay trạng thái hiện tại, sau đó nhận các bản
// cập nhật qua fanout từ redis pub/sub.
func SeatWebsocket(c *websocket.Conn) {
	showtimeIdStr := c.Params("showtimeId")
	showtimeId, err := strconv.ParseUint(showtimeIdStr, 10, 64)
	if err != nil {
		log.Printf("ws: invalid showtimeId %q", showtimeIdStr)
		c.Close()
		return
	}
	id := uint(showtimeId)

	client := &seatClient{conn: c}

	seatMutex.Lock()
	if seatConnections[id] == nil {
		seatConnections[id] = make(map[*websocket.Conn]*seatClient)
	}
	seatConnections[id][c] = client
	total := len(seatConnections[id])
	seatMutex.Unlock()

	log.Printf("ws: new connection for showtime %d, total %d", id, total)

	defer func() {
		seatMutex.Lock()
		delete(seatConnections[id], c)
		if len(seatConnections[id]) == 0 {
			delete(seatConnections, id)
		}
		seatMutex.Unlock()
		c.Close()
	}()

	// Gửi ngay trạng thái hiện tại cho client mới
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	seatMap, err := helper.ProjectSeatMap(ctx, database.DB, holdStore(), id)
	cancel()
	if err == nil {
		_ = client.writeJSON(seatMap)
	}

	// Giữ connection; không có message nào từ client cần xử lý
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// BroadcastSeatMap dựng lại sơ đồ ghế và publish lên redis; mọi instance
// (kể cả instance này) nhận qua subscription và đẩy xuống client của mình.
func BroadcastSeatMap(showtimeId uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	seatMap, err := helper.ProjectSeatMap(ctx, database.DB, holdStore(), showtimeId)
	if err != nil {
		log.Printf("ws: project seat map for broadcast failed: %v", err)
		return
	}

	payload, err := json.Marshal(seatMapEvent{ShowtimeId: showtimeId, Seats: seatMap})
	if err != nil {
		return
	}
	if err := database.RDB.Publish(ctx, seatMapChannel, payload).Err(); err != nil {
		log.Printf("ws: publish seat map failed: %v", err)
	}
}

// StartSeatMapFanout subscribe kênh sơ đồ ghế và đẩy các bản cập nhật xuống
// những websocket connection đang mở trên instance này. Chạy trong goroutine
// riêng từ main.
func StartSeatMapFanout() {
	ctx := context.Background()
	sub := database.RDB.Subscribe(ctx, seatMapChannel)

	go func() {
		for msg := range sub.Channel() {
			var event seatMapEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			seatMutex.Lock()
			clients := make([]*seatClient, 0, len(seatConnections[event.ShowtimeId]))
			for _, client := range seatConnections[event.ShowtimeId] {
				clients = append(clients, client)
			}
			seatMutex.Unlock()

			for _, client := range clients {
				if err := client.writeJSON(event.Seats); err != nil {
					log.Printf("ws: write seat map failed: %v", err)
				}
			}
		}
	}()
}
