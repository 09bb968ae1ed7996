package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bitacora/internal/db"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidConfirmation = errors.New("invalid confirmation link")
	ErrMailDelivery        = errors.New("confirmation email could not be delivered")
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// SignupInput carries the registration form.
type SignupInput struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}

// AccountService handles registration, confirmation and login.
type AccountService struct {
	db       *gorm.DB
	tokens   *TokenIssuer
	mailer   Mailer
	baseURL  string
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewAccountService creates an AccountService. Confirmation links are built on baseURL.
func NewAccountService(gdb *gorm.DB, tokens *TokenIssuer, mailer Mailer, baseURL string, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	if mailer == nil {
		mailer = NewLogMailer(log)
	}
	return &AccountService{
		db:       gdb,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// Signup registers an inactive member account and emails its confirmation
// link. Inactive accounts previously registered with the same email are
// removed in the same transaction.
//
// When the email cannot be sent the account is kept and ErrMailDelivery is
// returned; registering again replaces it.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*db.Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validateSignup(input); err != nil {
		return nil, err
	}

	account := db.Account{Username: input.Username, Email: input.Email}
	if err := account.SetPassword(input.Password1); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []uint
		if err := tx.Model(&db.Account{}).
			Where("email = ? AND is_active = ?", input.Email, false).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if err := deleteAccounts(tx, stale); err != nil {
			return err
		}

		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		member, err := ensureGroup(tx, db.RoleMember)
		if err != nil {
			return err
		}
		if _, err := ensureGroup(tx, db.RoleCollaborator); err != nil {
			return err
		}
		return tx.Model(&account).Association("Groups").Append(member)
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info("account registered", zap.Uint("account_id", account.ID), zap.String("username", account.Username))

	if err := s.sendConfirmation(ctx, &account); err != nil {
		s.log.Error("send confirmation failed", zap.Uint("account_id", account.ID), zap.Error(err))
		return &account, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return &account, nil
}

// ConfirmationLink returns the absolute activation URL for account.
func (s *AccountService) ConfirmationLink(account *db.Account) (string, error) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/confirmacion/%s/%s/", s.baseURL, token, EncodeAccountID(account.ID)), nil
}

func (s *AccountService) sendConfirmation(ctx context.Context, account *db.Account) error {
	link, err := s.ConfirmationLink(account)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Hola %s,\n\nGracias por registrarte. Para activar tu cuenta visita el siguiente enlace:\n\n%s\n\nSi no creaste esta cuenta puedes ignorar este mensaje.\n",
		account.Username, link)
	return s.mailer.Send(ctx, Message{
		To:      account.Email,
		Subject: "Confirmación de registro",
		Body:    body,
	})
}

// Confirm activates the account identified by uid when code is a valid token
// for it, creating its profile if missing. Every failure maps to
// ErrInvalidConfirmation.
func (s *AccountService) Confirm(ctx context.Context, code, uid string) (*db.Account, error) {
	id, err := DecodeAccountID(uid)
	if err != nil {
		return nil, ErrInvalidConfirmation
	}

	var account db.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidConfirmation
		}
		return nil, err
	}

	if err := s.tokens.Check(&account, code); err != nil {
		s.log.Debug("confirmation rejected", zap.Uint("account_id", account.ID), zap.Error(err))
		return nil, ErrInvalidConfirmation
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&account).Update("is_active", true).Error; err != nil {
			return err
		}

		var profiles int64
		if err := tx.Model(&db.UserProfile{}).Where("account_id = ?", account.ID).Count(&profiles).Error; err != nil {
			return err
		}
		if profiles > 0 {
			return nil
		}
		return tx.Create(&db.UserProfile{AccountID: account.ID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("confirm account: %w", err)
	}

	account.IsActive = true
	s.log.Info("account confirmed", zap.Uint("account_id", account.ID))
	return &account, nil
}

// Authenticate checks the credentials of an active account and records the login.
func (s *AccountService) Authenticate(username, password string) (*db.Account, error) {
	var account db.Account
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.IsActive || !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.Model(&account).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	account.LastLogin = &now
	return &account, nil
}

// GetByID loads an account with its groups.
func (s *AccountService) GetByID(id uint) (*db.Account, error) {
	var account db.Account
	if err := s.db.Preload("Groups").First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByUsername loads an account with its groups.
func (s *AccountService) GetByUsername(username string) (*db.Account, error) {
	var account db.Account
	if err := s.db.Preload("Groups").Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// List returns every account with its groups, ordered by username.
func (s *AccountService) List() ([]db.Account, error) {
	var accounts []db.Account
	if err := s.db.Preload("Groups").Order("username asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// SetRole adds the account to the group of role, or removes it when granted is false.
func (s *AccountService) SetRole(id uint, role db.Role, granted bool) (*db.Account, error) {
	if role != db.RoleMember && role != db.RoleCollaborator {
		return nil, ValidationErrors{"rol": "Escoja una opción válida."}
	}

	account, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		group, err := ensureGroup(tx, role)
		if err != nil {
			return err
		}
		assoc := tx.Model(account).Association("Groups")
		if granted {
			if account.HasRole(role) {
				return nil
			}
			return assoc.Append(group)
		}
		return assoc.Delete(group)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// SweepPending deletes never-confirmed accounts created before cutoff.
// It returns how many were removed.
func (s *AccountService) SweepPending(ctx context.Context, cutoff time.Time) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Account{}).
			Where("is_active = ? AND created_at < ?", false, cutoff.UTC()).
			Where("id NOT IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&db.UserProfile{}).Select("account_id")).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		return deleteAccounts(tx, ids)
	})
	if err != nil {
		return 0, fmt.Errorf("sweep pending accounts: %w", err)
	}
	if len(ids) > 0 {
		s.log.Info("pending accounts removed", zap.Int("count", len(ids)), zap.Time("cutoff", cutoff))
	}
	return len(ids), nil
}

func (s *AccountService) validateSignup(input SignupInput) error {
	errs := ValidationErrors{}

	requireText(errs, "username", input.Username, 150)
	if _, ok := errs["username"]; !ok && !usernamePattern.MatchString(input.Username) {
		errs.Add("username", "Introduzca un nombre de usuario válido. Este valor puede contener solo letras, números y los caracteres @/./+/-/_.")
	}

	requireText(errs, "email", input.Email, 254)
	if _, ok := errs["email"]; !ok {
		if err := s.validate.Var(input.Email, "email"); err != nil {
			errs.Add("email", "Introduzca una dirección de correo electrónico válida.")
		}
	}

	if input.Password1 == "" {
		errs.Add("password1", RequiredMessage)
	} else if len([]rune(input.Password1)) < minPasswordLength {
		errs.Add("password1", fmt.Sprintf("Esta contraseña es demasiado corta. Debe contener al menos %d caracteres.", minPasswordLength))
	}
	if input.Password2 == "" {
		errs.Add("password2", RequiredMessage)
	} else if input.Password1 != input.Password2 {
		errs.Add("password2", "Los dos campos de contraseña no coinciden.")
	}

	if _, ok := errs["username"]; !ok {
		// las cuentas inactivas con el mismo correo se reemplazan
		var taken int64
		if err := s.db.Model(&db.Account{}).
			Where("username = ?", input.Username).
			Where("NOT (is_active = ? AND email = ?)", false, input.Email).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			errs.Add("username", "Ya existe un usuario con este nombre.")
		}
	}

	if _, ok := errs["email"]; !ok {
		var active int64
		if err := s.db.Model(&db.Account{}).
			Where("email = ? AND is_active = ?", input.Email, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			errs.Add("email", "Ya existe una cuenta con este correo electrónico.")
		}
	}

	return errs.Err()
}

func ensureGroup(tx *gorm.DB, role db.Role) (*db.Group, error) {
	var group db.Group
	if err := tx.Where(db.Group{Name: role}).FirstOrCreate(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// deleteAccounts hard-deletes accounts together with their group links and
// profiles; authored articles lose their author.
func deleteAccounts(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM account_groups WHERE account_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := tx.Where("account_id IN ?", ids).Delete(&db.UserProfile{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&db.Article{}).Where("author_id IN ?", ids).Update("author_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&db.Account{}).Error
}
