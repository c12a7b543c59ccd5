package model

type Customer struct {
	DTO
	FullName string `json:"fullName"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Phone    string `json:"phone"`
	UserType string `gorm:"default:'REGULAR'" json:"userType"` // REGULAR, STUDENT, MEMBER
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

type Account struct {
	DTO
	Username string `gorm:"uniqueIndex" json:"username"`
	RoleName string `json:"roleName"`
	CinemaId *uint  `json:"cinemaId"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
