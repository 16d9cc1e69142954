package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBusiness Role = "business"
	RoleResident Role = "resident"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBusiness, RoleResident:
		return true
	}
	return false
}

type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Phone        string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'resident'" json:"role"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	//メール確認済みか（未確認は認証不可）
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
