package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the persisted name of an account group.
type Role string

const (
	// RoleMember is assigned to every account at signup.
	RoleMember Role = "miembro"
	// RoleCollaborator may author articles.
	RoleCollaborator Role = "colaborador"
)

// Group stores one Role; accounts join groups through account_groups.
type Group struct {
	ID        uint `gorm:"primaryKey"`
	Name      Role `gorm:"size:150;uniqueIndex;not null"`
	CreatedAt time.Time
}

// Account is a login identity. It stays inactive until its email is confirmed.
type Account struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"size:150;uniqueIndex;not null"`
	Email       string `gorm:"size:254;index"`
	Password    string `gorm:"not null" json:"-"`
	IsActive    bool   `gorm:"index"`
	IsSuperuser bool
	LastLogin   *time.Time
	Groups      []Group      `gorm:"many2many:account_groups;"`
	Profile     *UserProfile `gorm:"foreignKey:AccountID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasRole reports whether the account belongs to the group of role r.
// Groups must be preloaded.
func (a *Account) HasRole(r Role) bool {
	if a == nil {
		return false
	}
	for _, g := range a.Groups {
		if g.Name == r {
			return true
		}
	}
	return false
}

// SetPassword stores a bcrypt hash of raw.
func (a *Account) SetPassword(raw string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashed)
	return nil
}

// CheckPassword compares raw with the stored hash.
func (a *Account) CheckPassword(raw string) bool {
	if a == nil || a.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(raw)) == nil
}

// UserProfile 保存账户的扩展信息，仅在邮箱确认后创建。
type UserProfile struct {
	ID         uint   `gorm:"primaryKey"`
	AccountID  uint   `gorm:"uniqueIndex;not null"`
	AvatarPath string `gorm:"size:255;default:usuarios/avatar/default_user.png"`
	Phone      string `gorm:"size:30"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EnsureSuperuser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个激活的超级用户。
func EnsureSuperuser(gdb *gorm.DB, username, password, email string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing Account
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account := Account{
			Username:    trimmedUser,
			Email:       strings.TrimSpace(email),
			IsActive:    true,
			IsSuperuser: true,
		}
		if err := account.SetPassword(trimmedPassword); err != nil {
			return err
		}

		return gdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			return tx.Create(&UserProfile{AccountID: account.ID}).Error
		})
	}

	return nil
}
