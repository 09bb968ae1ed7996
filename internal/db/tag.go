package db

import "time"

// Tag 定义了标签模型
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;uniqueIndex;not null"`
	Active    bool
	Articles  []Article `gorm:"many2many:article_tags;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
