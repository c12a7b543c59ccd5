package helper

import (
	"cinema_booking/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activePromo() *model.Promotion {
	return &model.Promotion{
		Code:          "SALE10",
		DiscountType:  "percentage",
		DiscountValue: 10,
		StartDate:     time.Now().Add(-24 * time.Hour),
		EndDate:       time.Now().Add(24 * time.Hour),
		Status:        "active",
	}
}

func TestEvaluateDiscountPercentage(t *testing.T) {
	promo := activePromo()

	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 200000})
	require.NoError(t, err)
	assert.Equal(t, 20000.0, discount)
}

func TestEvaluateDiscountPercentageCapped(t *testing.T) {
	promo := activePromo()
	promo.MaxDiscount = 15000

	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 200000})
	require.NoError(t, err)
	assert.Equal(t, 15000.0, discount)
}

func TestEvaluateDiscountFixed(t *testing.T) {
	promo := activePromo()
	promo.DiscountType = "fixed"
	promo.DiscountValue = 30000

	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 200000})
	require.NoError(t, err)
	assert.Equal(t, 30000.0, discount)
}

func TestEvaluateDiscountNeverExceedsSubtotal(t *testing.T) {
	promo := activePromo()
	promo.DiscountType = "fixed"
	promo.DiscountValue = 500000

	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 80000})
	require.NoError(t, err)
	assert.Equal(t, 80000.0, discount)
}

func TestEvaluateDiscountRejections(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		mutate      func(p *model.Promotion)
		alreadyUsed bool
		dctx        DiscountContext
		wantErr     error
	}{
		{
			name:    "inactive status",
			mutate:  func(p *model.Promotion) { p.Status = "disabled" },
			dctx:    DiscountContext{Subtotal: 100000},
			wantErr: ErrPromoInactive,
		},
		{
			name:    "not started yet",
			mutate:  func(p *model.Promotion) { p.StartDate = now.Add(time.Hour) },
			dctx:    DiscountContext{Subtotal: 100000},
			wantErr: ErrPromoInactive,
		},
		{
			name:    "already ended",
			mutate:  func(p *model.Promotion) { p.EndDate = now.Add(-time.Hour) },
			dctx:    DiscountContext{Subtotal: 100000},
			wantErr: ErrPromoInactive,
		},
		{
			name: "usage exhausted",
			mutate: func(p *model.Promotion) {
				p.MaxUsage = 5
				p.UsedCount = 5
			},
			dctx:    DiscountContext{Subtotal: 100000},
			wantErr: ErrPromoExhausted,
		},
		{
			name:    "wrong user type",
			mutate:  func(p *model.Promotion) { p.UserType = "STUDENT" },
			dctx:    DiscountContext{Subtotal: 100000, UserType: "REGULAR"},
			wantErr: ErrPromoWrongUserType,
		},
		{
			name:        "already used by customer",
			mutate:      func(p *model.Promotion) {},
			alreadyUsed: true,
			dctx:        DiscountContext{Subtotal: 100000, CustomerId: 7},
			wantErr:     ErrPromoAlreadyUsed,
		},
		{
			name:    "below minimum order",
			mutate:  func(p *model.Promotion) { p.MinOrderAmount = 150000 },
			dctx:    DiscountContext{Subtotal: 100000},
			wantErr: ErrPromoMinOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := activePromo()
			tt.mutate(promo)

			discount, err := EvaluateDiscount(promo, tt.alreadyUsed, now, tt.dctx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, discount)
		})
	}
}

func TestEvaluateDiscountUnlimitedUsage(t *testing.T) {
	promo := activePromo()
	promo.MaxUsage = 0 // không giới hạn
	promo.UsedCount = 99999

	_, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 100000})
	require.NoError(t, err)
}

func TestEvaluateDiscountMatchingUserType(t *testing.T) {
	promo := activePromo()
	promo.UserType = "STUDENT"

	discount, err := EvaluateDiscount(promo, false, time.Now(), DiscountContext{Subtotal: 100000, UserType: "STUDENT"})
	require.NoError(t, err)
	assert.Equal(t, 10000.0, discount)
}

func TestTicketPrice(t *testing.T) {
	assert.Equal(t, 90000.0, TicketPrice(90000, 0)) // modifier chưa set → hệ số 1
	assert.Equal(t, 90000.0, TicketPrice(90000, 1))
	assert.Equal(t, 135000.0, TicketPrice(90000, 1.5))
}
