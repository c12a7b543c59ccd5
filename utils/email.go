package utils

import (
	"bytes"
	"cinema_booking/config"
	"cinema_booking/queue"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// OrderEmailData dữ liệu cho template email vé
type OrderEmailData struct {
	OrderCode   string
	MovieName   string
	Showtime    string
	Room        string
	Seats       string
	TotalAmount float64
}

// DeliverTicketEmail render template vé, tạo QR nhúng inline và gửi qua SMTP.
// Đây là DeliverFunc mặc định của worker gửi vé.
func DeliverTicketEmail(task queue.TicketDeliveryTask) error {
	tmpl, err := template.ParseFiles("templates/order_confirmation.html")
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	var htmlBody bytes.Buffer
	if err := tmpl.Execute(&htmlBody, OrderEmailData{
		OrderCode:   task.OrderCode,
		MovieName:   task.MovieTitle,
		Showtime:    task.ShowtimeAt,
		Room:        task.RoomName,
		Seats:       strings.Join(task.Seats, ", "),
		TotalAmount: task.TotalAmount,
	}); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.ConfigDefault("SMTP_FROM", "CinemaPro <cinema_hub@gmail.com>"))
	m.SetHeader("To", task.To)
	m.SetHeader("Subject", task.Subject)
	m.SetBody("text/html", htmlBody.String())

	// QR nhúng inline với CID trùng cid: trong HTML
	qrBytes, err := GenerateQRCode(task.QRPayload, 400)
	if err != nil {
		return fmt.Errorf("tạo QR: %w", err)
	}
	m.Embed("qr_checkin.png",
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(qrBytes)
			return err
		}),
		gomail.SetHeader(map[string][]string{
			"Content-Type":        {"image/png"},
			"Content-ID":          {"<qr_checkin_code>"},
			"Content-Disposition": {"inline"},
		}),
	)

	port, _ := strconv.Atoi(config.ConfigDefault("SMTP_PORT", "587"))
	d := gomail.NewDialer(config.Config("SMTP_HOST"), port, config.Config("SMTP_USERNAME"), config.Config("SMTP_PASSWORD"))
	return d.DialAndSend(m)
}
