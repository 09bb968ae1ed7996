package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bitacora/internal/db"
	"gorm.io/gorm"
)

// ErrSocialLinkNotFound 在指定的社交链接不存在时返回
var ErrSocialLinkNotFound = errors.New("social link not found")

// SocialLinkService 负责维护页脚的社交链接
type SocialLinkService struct {
	db *gorm.DB
}

// SocialLinkInput describes the editable fields of a social link.
type SocialLinkInput struct {
	Name string
	URL  string
	Icon string
}

// NewSocialLinkService 构造 SocialLinkService
func NewSocialLinkService(gdb *gorm.DB) *SocialLinkService {
	return &SocialLinkService{db: gdb}
}

// List returns every social link ordered by name.
func (s *SocialLinkService) List() ([]db.SocialLink, error) {
	var items []db.SocialLink
	if err := s.db.Order("name asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	return items, nil
}

// Get 根据主键获取社交链接
func (s *SocialLinkService) Get(id uint) (*db.SocialLink, error) {
	var item db.SocialLink
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, fmt.Errorf("get social link: %w", err)
	}
	return &item, nil
}

// Create validates and stores a new social link.
func (s *SocialLinkService) Create(input SocialLinkInput) (*db.SocialLink, error) {
	input = input.normalized()
	if err := input.validate(); err != nil {
		return nil, err
	}

	item := db.SocialLink{Name: input.Name, URL: input.URL, Icon: input.Icon}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create social link: %w", err)
	}
	return &item, nil
}

// Update replaces every field of the social link.
func (s *SocialLinkService) Update(id uint, input SocialLinkInput) (*db.SocialLink, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input = input.normalized()
	if err := input.validate(); err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.URL = input.URL
	item.Icon = input.Icon
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update social link: %w", err)
	}
	return item, nil
}

// Delete removes the social link.
func (s *SocialLinkService) Delete(id uint) error {
	result := s.db.Delete(&db.SocialLink{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete social link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSocialLinkNotFound
	}
	return nil
}

func (in SocialLinkInput) normalized() SocialLinkInput {
	return SocialLinkInput{
		Name: strings.TrimSpace(in.Name),
		URL:  strings.TrimSpace(in.URL),
		Icon: strings.TrimSpace(in.Icon),
	}
}

func (in SocialLinkInput) validate() error {
	errs := ValidationErrors{}
	requireText(errs, "nombre", in.Name, 150)
	checkLength(errs, "url", in.URL, 300)
	checkLength(errs, "icono", in.Icon, 150)

	if in.URL != "" {
		parsed, err := url.ParseRequestURI(in.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs.Add("url", "Introduzca una URL válida.")
		}
	}
	return errs.Err()
}
