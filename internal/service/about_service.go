package service

import (
	"errors"
	"strings"

	"github.com/bitacora/internal/db"
	"gorm.io/gorm"
)

var ErrAboutNotFound = errors.New("about blurb not found")

// AboutService manages the "acerca de" blurbs.
type AboutService struct {
	db *gorm.DB
}

// NewAboutService creates an AboutService.
func NewAboutService(gdb *gorm.DB) *AboutService {
	return &AboutService{db: gdb}
}

// Latest returns the newest blurb, or an empty one when none exists.
func (s *AboutService) Latest() (db.AboutBlurb, error) {
	var about db.AboutBlurb
	if err := s.db.Order("created_at desc").Order("id desc").First(&about).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.AboutBlurb{}, nil
		}
		return db.AboutBlurb{}, err
	}
	return about, nil
}

// List returns every blurb, newest first.
func (s *AboutService) List() ([]db.AboutBlurb, error) {
	var items []db.AboutBlurb
	if err := s.db.Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create stores a new blurb; it becomes the one displayed.
func (s *AboutService) Create(description string) (*db.AboutBlurb, error) {
	description = strings.TrimSpace(description)
	if err := validateAbout(description); err != nil {
		return nil, err
	}

	about := db.AboutBlurb{Description: description}
	if err := s.db.Create(&about).Error; err != nil {
		return nil, err
	}
	return &about, nil
}

// Update rewrites the description of an existing blurb.
func (s *AboutService) Update(id uint, description string) (*db.AboutBlurb, error) {
	var about db.AboutBlurb
	if err := s.db.First(&about, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAboutNotFound
		}
		return nil, err
	}

	description = strings.TrimSpace(description)
	if err := validateAbout(description); err != nil {
		return nil, err
	}

	about.Description = description
	if err := s.db.Save(&about).Error; err != nil {
		return nil, err
	}
	return &about, nil
}

// Delete removes a blurb.
func (s *AboutService) Delete(id uint) error {
	result := s.db.Delete(&db.AboutBlurb{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAboutNotFound
	}
	return nil
}

func validateAbout(description string) error {
	errs := ValidationErrors{}
	requireText(errs, "descripcion", description, 450)
	return errs.Err()
}
