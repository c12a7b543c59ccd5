package helper

import (
	"cinema_booking/model"
	"cinema_booking/queue"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSeatConflict: một ghế không còn khả dụng giữa lúc giữ và lúc chốt.
	ErrSeatConflict = errors.New("Ghế đã được giữ hoặc đã bán, vui lòng chọn lại")
	// ErrDiscountRaceLost: lượt cuối của mã bị đơn khác dùng trước.
	ErrDiscountRaceLost = errors.New("Mã khuyến mãi vừa hết lượt, vui lòng đặt lại không dùng mã")
	// ErrPaymentMismatch: số tiền gateway xác nhận không khớp tổng đơn.
	ErrPaymentMismatch = errors.New("Số tiền thanh toán không khớp với đơn hàng")
)

// DeliveryEnqueuer đẩy task gửi vé sau commit; nil thì bỏ qua (ví dụ trong test).
type DeliveryEnqueuer interface {
	EnqueueTicketDelivery(ctx context.Context, task queue.TicketDeliveryTask) error
}

// CommitRequest là đầu vào duy nhất của Commit, đến từ callback gateway hoặc
// từ luồng bán tại quầy.
type CommitRequest struct {
	IdempotencyKey string // Payment.PaymentCode: vnp_TxnRef hoặc requestId của staff
	Method         string // VNPAY, CASH
	SalesChannel   string // ONLINE, OFFLINE
	Draft          model.OrderDraft
	PaidAmount     float64 // tiền gateway báo về; với CASH truyền 0 để lấy tổng tính lại
	CreatedBy      uint    // account nhân viên với luồng OFFLINE
}

// BookingCoordinator chốt đơn: biến một bộ ghế đang giữ + bắp nước + mã giảm
// giá + kết quả thanh toán thành đúng một Order kèm vé và line items, hoặc
// không để lại gì khi thất bại.
type BookingCoordinator struct {
	DB       *gorm.DB
	Holds    SeatHolder
	Delivery DeliveryEnqueuer
}

// Commit chạy toàn bộ trong một transaction. Gọi lại với cùng
// IdempotencyKey sau khi đã thành công sẽ trả về Order cũ, không tạo trùng.
func (bc *BookingCoordinator) Commit(ctx context.Context, req CommitRequest) (*model.Order, error) {
	var order *model.Order
	var task *queue.TicketDeliveryTask

	err := bc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotency: khoá bản ghi payment theo key trước tiên
		var payment model.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_code = ?", req.IdempotencyKey).
			First(&payment).Error
		switch {
		case err == nil:
			if payment.Status == model.PaymentPaid && payment.OrderId != nil {
				var existing model.Order
				if err := tx.Preload("Tickets").Preload("Combos").Preload("Products").
					First(&existing, "id = ?", *payment.OrderId).Error; err != nil {
					return err
				}
				order = &existing
				return nil // đã chốt trước đó, trả đơn cũ
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Luồng CASH không tạo payment trước; tạo tại đây
			payment = model.Payment{
				PaymentCode: req.IdempotencyKey,
				Status:      model.PaymentPending,
				Method:      req.Method,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var showtime model.Showtime
		if err := tx.Preload("Movie").Preload("Room").
			First(&showtime, "public_code = ?", req.Draft.ShowtimeCode).Error; err != nil {
			return err
		}

		// Hold của từng ghế phải còn sống và thuộc đúng người yêu cầu
		owners, err := bc.Holds.Owners(ctx, showtime.ID, req.Draft.SeatIds)
		if err != nil {
			return err
		}
		for _, seatId := range req.Draft.SeatIds {
			if owners[seatId] != req.Draft.HeldBy {
				return ErrSeatConflict
			}
		}

		var seats []model.ShowtimeSeat
		if err := tx.Preload("Seat").Preload("SeatType").
			Where("showtime_id = ? AND seat_id IN ?", showtime.ID, req.Draft.SeatIds).
			Find(&seats).Error; err != nil {
			return err
		}
		if len(seats) != len(req.Draft.SeatIds) {
			return ErrSeatConflict
		}

		ticketTotal := 0.0
		for _, s := range seats {
			ticketTotal += TicketPrice(showtime.Price, s.SeatType.PriceModifier)
		}

		comboLines, comboTotal, err := buildComboLines(tx, req.Draft.Combos)
		if err != nil {
			return err
		}
		productLines, productTotal, err := buildProductLines(tx, req.Draft.Products)
		if err != nil {
			return err
		}
		subtotal := ticketTotal + comboTotal + productTotal

		// Mã giảm giá được xét lại ngay trong transaction: UsedCount đọc lúc
		// trước có thể đã đổi
		var promo model.Promotion
		var promoID *uint
		discount := 0.0
		if req.Draft.PromotionCode != "" {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&promo, "code = ?", req.Draft.PromotionCode).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDiscountRaceLost
				}
				return err
			}

			userType := ""
			alreadyUsed := false
			if req.Draft.CustomerID != nil {
				var customer model.Customer
				if err := tx.First(&customer, "id = ?", *req.Draft.CustomerID).Error; err == nil {
					userType = customer.UserType
				}
				var used int64
				tx.Model(&model.PromotionUsage{}).
					Where("promotion_id = ? AND customer_id = ?", promo.ID, *req.Draft.CustomerID).
					Count(&used)
				alreadyUsed = used > 0
			}

			cid := uint(0)
			if req.Draft.CustomerID != nil {
				cid = *req.Draft.CustomerID
			}
			discount, err = EvaluateDiscount(&promo, alreadyUsed, time.Now(), DiscountContext{
				Subtotal:   subtotal,
				CustomerId: cid,
				UserType:   userType,
			})
			if err != nil {
				return ErrDiscountRaceLost
			}

			// Trừ lượt có điều kiện: thua race là RowsAffected = 0
			res := tx.Model(&model.Promotion{}).
				Where("id = ? AND (max_usage = 0 OR used_count < max_usage)", promo.ID).
				Update("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrDiscountRaceLost
			}
			promoID = &promo.ID
		}

		total := RoundVND(subtotal - discount)

		// Gateway đã thu tiền trước khi gọi về; tổng tính lại phải khớp
		if req.Method != "CASH" && req.PaidAmount != total {
			return ErrPaymentMismatch
		}

		// Chuyển ghế sang SOLD có điều kiện — đây là chốt chặn cuối cùng
		// chống bán trùng ở tầng dữ liệu bền
		res := tx.Model(&model.ShowtimeSeat{}).
			Where("showtime_id = ? AND seat_id IN ? AND status = ?",
				showtime.ID, req.Draft.SeatIds, model.SeatAvailable).
			Update("status", model.SeatSold)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(req.Draft.SeatIds)) {
			return ErrSeatConflict
		}

		now := time.Now()
		newOrder := model.Order{
			PublicCode:     "ORD-" + uuid.New().String()[:8],
			CustomerID:     req.Draft.CustomerID,
			ShowtimeID:     showtime.ID,
			TotalAmount:    total,
			DiscountAmount: discount,
			PromotionID:    promoID,
			Status:         model.OrderPaid,
			PaymentMethod:  req.Method,
			SalesChannel:   req.SalesChannel,
			PaidAt:         &now,
			CustomerName:   req.Draft.CustomerName,
			Phone:          req.Draft.Phone,
			Email:          req.Draft.Email,
			CreatedBy:      req.CreatedBy,
		}
		if err := tx.Create(&newOrder).Error; err != nil {
			return err
		}

		var tickets []model.Ticket
		var seatLabels []string
		for _, s := range seats {
			tickets = append(tickets, model.Ticket{
				OrderId:        newOrder.ID,
				ShowtimeId:     showtime.ID,
				ShowtimeSeatId: s.ID,
				SeatId:         s.SeatId,
				TicketCode:     "TKT-" + uuid.New().String()[:10],
				Price:          TicketPrice(showtime.Price, s.SeatType.PriceModifier),
				Status:         model.TicketPaid,
				IssuedAt:       now,
				CustomerId:     req.Draft.CustomerID,
			})
			seatLabels = append(seatLabels, fmt.Sprintf("%s%d", s.SeatRow, s.SeatNumber))
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}

		for i := range comboLines {
			comboLines[i].OrderId = newOrder.ID
		}
		if len(comboLines) > 0 {
			if err := tx.Create(&comboLines).Error; err != nil {
				return err
			}
		}
		for i := range productLines {
			productLines[i].OrderId = newOrder.ID
		}
		if len(productLines) > 0 {
			if err := tx.Create(&productLines).Error; err != nil {
				return err
			}
		}

		if promoID != nil && req.Draft.CustomerID != nil {
			usage := model.PromotionUsage{
				PromotionId:     *promoID,
				CustomerId:      *req.Draft.CustomerID,
				OrderId:         newOrder.ID,
				AppliedAt:       now,
				DiscountApplied: discount,
			}
			// unique (promotion_id, customer_id) chặn hai tab cùng lúc
			if err := tx.Create(&usage).Error; err != nil {
				return ErrDiscountRaceLost
			}
		}

		if err := tx.Model(&payment).Updates(map[string]any{
			"status":   model.PaymentPaid,
			"order_id": newOrder.ID,
			"amount":   total,
		}).Error; err != nil {
			return err
		}

		newOrder.Tickets = tickets
		newOrder.Combos = comboLines
		newOrder.Products = productLines
		order = &newOrder

		if newOrder.Email != "" {
			task = &queue.TicketDeliveryTask{
				OrderId:     newOrder.ID,
				OrderCode:   newOrder.PublicCode,
				To:          newOrder.Email,
				Subject:     "Vé xem phim - Mã đơn: " + newOrder.PublicCode,
				MovieTitle:  showtime.Movie.Title,
				ShowtimeAt:  showtime.StartTime.Format("02/01/2006 15:04"),
				RoomName:    showtime.Room.Name,
				Seats:       seatLabels,
				TotalAmount: total,
				QRPayload:   newOrder.PublicCode,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ghế đã SOLD trong bảng bền nên hold chỉ còn là rác — trả sớm cho gọn,
	// quên trả cũng không sao vì TTL sẽ dọn
	for _, seatId := range req.Draft.SeatIds {
		_ = bc.Holds.Release(ctx, order.ShowtimeID, seatId, req.Draft.HeldBy)
	}

	if task != nil && bc.Delivery != nil {
		if err := bc.Delivery.EnqueueTicketDelivery(ctx, *task); err != nil {
			// Vé vẫn hợp lệ dù không đẩy được task gửi mail
			log.Printf("booking: enqueue delivery for %s failed: %v", order.PublicCode, err)
		}
	}
	return order, nil
}

// QuoteDraft tính tổng tiền của draft đúng như Commit sẽ tính, nhưng không
// khoá dòng nào và không trừ lượt mã — dùng để chốt số tiền gửi sang gateway
// trước khi redirect.
func QuoteDraft(ctx context.Context, db *gorm.DB, draft model.OrderDraft) (float64, error) {
	tx := db.WithContext(ctx)

	var showtime model.Showtime
	if err := tx.First(&showtime, "public_code = ?", draft.ShowtimeCode).Error; err != nil {
		return 0, err
	}

	var seats []model.ShowtimeSeat
	if err := tx.Preload("SeatType").
		Where("showtime_id = ? AND seat_id IN ?", showtime.ID, draft.SeatIds).
		Find(&seats).Error; err != nil {
		return 0, err
	}
	if len(seats) != len(draft.SeatIds) {
		return 0, ErrSeatConflict
	}

	subtotal := 0.0
	for _, s := range seats {
		subtotal += TicketPrice(showtime.Price, s.SeatType.PriceModifier)
	}

	_, comboTotal, err := buildComboLines(tx, draft.Combos)
	if err != nil {
		return 0, err
	}
	_, productTotal, err := buildProductLines(tx, draft.Products)
	if err != nil {
		return 0, err
	}
	subtotal += comboTotal + productTotal

	discount := 0.0
	if draft.PromotionCode != "" {
		var promo model.Promotion
		if err := tx.First(&promo, "code = ?", draft.PromotionCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrPromoInactive
			}
			return 0, err
		}

		userType := ""
		alreadyUsed := false
		if draft.CustomerID != nil {
			var customer model.Customer
			if err := tx.First(&customer, "id = ?", *draft.CustomerID).Error; err == nil {
				userType = customer.UserType
			}
			var used int64
			tx.Model(&model.PromotionUsage{}).
				Where("promotion_id = ? AND customer_id = ?", promo.ID, *draft.CustomerID).
				Count(&used)
			alreadyUsed = used > 0
		}

		cid := uint(0)
		if draft.CustomerID != nil {
			cid = *draft.CustomerID
		}
		discount, err = EvaluateDiscount(&promo, alreadyUsed, time.Now(), DiscountContext{
			Subtotal:   subtotal,
			CustomerId: cid,
			UserType:   userType,
		})
		if err != nil {
			return 0, err
		}
	}

	return RoundVND(subtotal - discount), nil
}

func buildComboLines(tx *gorm.DB, selects []model.ComboSelect) ([]model.OrderCombo, float64, error) {
	var lines []model.OrderCombo
	total := 0.0
	for _, sel := range selects {
		var combo model.Combo
		if err := tx.First(&combo, "id = ? AND is_active IS true", sel.ComboId).Error; err != nil {
			return nil, 0, err
		}
		lineTotal := combo.Price * float64(sel.Quantity)
		lines = append(lines, model.OrderCombo{
			ComboId:   combo.ID,
			Quantity:  sel.Quantity,
			UnitPrice: combo.Price,
			LineTotal: lineTotal,
		})
		total += lineTotal
	}
	return lines, total, nil
}

func buildProductLines(tx *gorm.DB, selects []model.ProductSelect) ([]model.OrderProduct, float64, error) {
	var lines []model.OrderProduct
	total := 0.0
	for _, sel := range selects {
		var product model.Product
		if err := tx.First(&product, "id = ? AND is_active IS true", sel.ProductId).Error; err != nil {
			return nil, 0, err
		}
		lineTotal := product.Price * float64(sel.Quantity)
		lines = append(lines, model.OrderProduct{
			ProductId: product.ID,
			Quantity:  sel.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		total += lineTotal
	}
	return lines, total, nil
}
