package database

import (
	"cinema_booking/model"
	"log"
	"time"

	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	seatTypes := []model.SeatType{
		{Type: "NORMAL", PriceModifier: 1},
		{Type: "VIP", PriceModifier: 1.2},
		{Type: "COUPLE", PriceModifier: 2},
	}
	for _, st := range seatTypes {
		if err := db.Where(model.SeatType{Type: st.Type}).FirstOrCreate(&st).Error; err != nil {
			log.Println("failed to seed seat type:", st.Type, "error:", err)
		}
	}

	combos := []model.Combo{
		{Name: "Combo Bắp Nước", Price: 79000},
		{Name: "Combo Gia Đình", Price: 149000},
	}
	for _, cb := range combos {
		if err := db.Where(model.Combo{Name: cb.Name}).FirstOrCreate(&cb).Error; err != nil {
			log.Println("failed to seed combo:", cb.Name, "error:", err)
		}
	}

	products := []model.Product{
		{Name: "Bắp rang bơ", Price: 45000},
		{Name: "Nước ngọt", Price: 25000},
	}
	for _, p := range products {
		if err := db.Where(model.Product{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
			log.Println("failed to seed product:", p.Name, "error:", err)
		}
	}

	promotions := []model.Promotion{
		{
			Code:          "SALE10",
			Name:          "Giảm 10%",
			DiscountType:  "percentage",
			DiscountValue: 10,
			MaxDiscount:   50000,
			StartDate:     time.Now().AddDate(0, -1, 0),
			EndDate:       time.Now().AddDate(0, 2, 0),
			MaxUsage:      100,
			Status:        "active",
		},
	}
	for _, promo := range promotions {
		if err := db.Where(model.Promotion{Code: promo.Code}).FirstOrCreate(&promo).Error; err != nil {
			log.Println("failed to seed promotion:", promo.Code, "error:", err)
		}
	}
}
