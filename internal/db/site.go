package db

import "time"

// AboutBlurb is the "acerca de" text; the newest record is the one shown.
type AboutBlurb struct {
	ID          uint      `gorm:"primaryKey"`
	Description string    `gorm:"size:450;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// SocialLink 用于保存前台展示的社交链接
// Icon 字段用于匹配前端内置的图标
type SocialLink struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null"`
	URL       string `gorm:"size:300"`
	Icon      string `gorm:"size:150"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
