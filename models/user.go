package models

import "time"

const DefaultUserRole = "user"

type User struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	FullName  string    `gorm:"column:full_name;size:200;not null" json:"fullName"`
	Role      string    `gorm:"column:role;size:50;not null" json:"role"`
	Active    bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (User) TableName() string { return "users" }
