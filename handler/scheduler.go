package handler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var paymentScheduler gocron.Scheduler

// StartPaymentReaper chạy ExpirePendingPayments mỗi 5 phút. Giao dịch quá
// cửa sổ 15 phút của gateway không bao giờ chốt được nữa, giữ PENDING chỉ
// gây nhiễu số liệu.
func StartPaymentReaper() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ICT", 7*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	paymentScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(ExpirePendingPayments),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("✅ Payment reaper started (every 5m)")
}

func StopPaymentReaper() {
	if paymentScheduler != nil {
		_ = paymentScheduler.Shutdown()
	}
}
