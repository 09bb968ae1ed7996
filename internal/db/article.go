package db

import (
	"time"

	"gorm.io/gorm"
)

// Article 定义了文章模型
type Article struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:250;uniqueIndex;not null"`
	Slug       string    `gorm:"size:255;uniqueIndex;not null"`
	Summary    string    `gorm:"size:150;not null"`
	Body       string    `gorm:"type:text;not null"`
	ImagePath  string    `gorm:"size:255"`
	Published  bool      `gorm:"index"`
	CategoryID *uint     `gorm:"index"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL;"`
	AuthorID   *uint     `gorm:"index"`
	Author     *Account  `gorm:"constraint:OnDelete:SET NULL;"`
	Tags       []Tag     `gorm:"many2many:article_tags;"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

// BeforeSave keeps Slug derived from Title.
func (a *Article) BeforeSave(*gorm.DB) error {
	a.Slug = Slugify(a.Title)
	return nil
}

// IsAuthoredBy reports whether account wrote the article.
func (a *Article) IsAuthoredBy(account *Account) bool {
	if a == nil || account == nil || a.AuthorID == nil {
		return false
	}
	return *a.AuthorID == account.ID
}

// Category groups articles; only active categories appear in navigation.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;uniqueIndex;not null"`
	Slug      string `gorm:"size:255;uniqueIndex;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeSave keeps Slug derived from Name.
func (c *Category) BeforeSave(*gorm.DB) error {
	c.Slug = Slugify(c.Name)
	return nil
}
