package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	deliveryMaxAttempts = 3
	deliveryBaseBackoff = 5 * time.Second
)

// DeliverFunc thực hiện một lần gửi vé (render QR + email). Tách thành func
// để worker test được với sender giả.
type DeliverFunc func(task TicketDeliveryTask) error

// StartDeliveryWorkers mở một consumer trên queue ticket.delivery và chia
// message cho `workers` goroutine. Tự reconnect khi mất broker, backoff tối đa
// 30s. Chạy trong goroutine riêng từ main.
func StartDeliveryWorkers(workers int, deliver DeliverFunc) {
	if workers <= 0 {
		workers = 4
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("delivery-worker: dial failed: %v; retry in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeDeliveries(conn, workers, deliver); err != nil {
			log.Printf("delivery-worker: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeDeliveries(conn *amqp.Connection, workers int, deliver DeliverFunc) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(workers*2, 0, false); err != nil {
		log.Printf("delivery-worker: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(DeliveryQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(DeliveryQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for d := range msgs {
				handleDelivery(d, deliver)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	return fmt.Errorf("deliveries channel closed")
}

func handleDelivery(d amqp.Delivery, deliver DeliverFunc) {
	var task TicketDeliveryTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Printf("delivery-worker: bỏ message hỏng: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := DeliverWithRetry(task, deliver, time.Sleep); err != nil {
		// Đơn/vé vẫn hợp lệ; chỉ báo cáo để vận hành xử lý tay
		log.Printf("delivery-worker: GỬI VÉ THẤT BẠI sau %d lần, đơn %s -> %s: %v",
			deliveryMaxAttempts, task.OrderCode, task.To, err)
		_ = d.Nack(false, false)
		return
	}
	log.Printf("delivery-worker: đã gửi vé đơn %s đến %s", task.OrderCode, task.To)
	_ = d.Ack(false)
}

// DeliverWithRetry thử tối đa 3 lần, backoff nhân đôi bắt đầu từ 5s.
func DeliverWithRetry(task TicketDeliveryTask, deliver DeliverFunc, sleep func(time.Duration)) error {
	var err error
	backoff := deliveryBaseBackoff
	for attempt := 1; attempt <= deliveryMaxAttempts; attempt++ {
		if err = deliver(task); err == nil {
			return nil
		}
		if attempt < deliveryMaxAttempts {
			log.Printf("delivery-worker: lần %d gửi đơn %s lỗi: %v; thử lại sau %s",
				attempt, task.OrderCode, err, backoff)
			sleep(backoff)
			backoff *= 2
		}
	}
	return err
}
