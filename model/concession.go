package model

type Combo struct {
	DTO
	Name     string  `gorm:"not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	IsActive bool    `gorm:"default:true" json:"isActive"`
}

type Product struct {
	DTO
	Name     string  `gorm:"not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	IsActive bool    `gorm:"default:true" json:"isActive"`
}

type OrderCombo struct {
	DTO
	OrderId   uint    `gorm:"index" json:"orderId"`
	ComboId   uint    `json:"comboId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	Fulfilled bool    `gorm:"default:false" json:"fulfilled"`

	Combo Combo `gorm:"foreignKey:ComboId" json:"-"`
}

type OrderProduct struct {
	DTO
	OrderId   uint    `gorm:"index" json:"orderId"`
	ProductId uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	Fulfilled bool    `gorm:"default:false" json:"fulfilled"`

	Product Product `gorm:"foreignKey:ProductId" json:"-"`
}

type ComboSelect struct {
	ComboId  uint `json:"comboId" validate:"required,gt=0"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type ProductSelect struct {
	ProductId uint `json:"productId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}
