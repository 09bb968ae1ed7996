package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/bitacora/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func seedAccount(t *testing.T, gdb *gorm.DB, username string, active bool, roles ...db.Role) *db.Account {
	t.Helper()

	account := db.Account{Username: username, Email: username + "@example.cl", IsActive: active}
	if err := account.SetPassword("clave-segura"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	for _, role := range roles {
		group, err := ensureGroup(gdb, role)
		if err != nil {
			t.Fatalf("ensure group: %v", err)
		}
		if err := gdb.Model(&account).Association("Groups").Append(group); err != nil {
			t.Fatalf("append group: %v", err)
		}
	}
	return &account
}

func seedArticle(t *testing.T, gdb *gorm.DB, title string, published bool, createdAt time.Time, mutate ...func(*db.Article)) *db.Article {
	t.Helper()

	article := db.Article{
		Title:     title,
		Summary:   "bajada de " + title,
		Body:      "contenido de " + title,
		Published: published,
		CreatedAt: createdAt.UTC(),
	}
	for _, fn := range mutate {
		fn(&article)
	}
	if err := gdb.Create(&article).Error; err != nil {
		t.Fatalf("seed article %q: %v", title, err)
	}
	return &article
}

func uintPtr(v uint) *uint { return &v }
