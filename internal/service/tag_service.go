package service

import (
	"errors"
	"strings"

	"github.com/bitacora/internal/db"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagInput represents fields accepted when creating or updating a tag.
type TagInput struct {
	Name   string
	Active *bool
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns tags ordered by name.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Order("id asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListActive returns the tags offered in the article form.
func (s *TagService) ListActive() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Where("active = ?", true).Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Create inserts a new tag with unique name.
func (s *TagService) Create(input TagInput) (*db.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.validate(name, 0); err != nil {
		return nil, err
	}

	tag := db.Tag{Name: name, Active: true}
	if input.Active != nil {
		tag.Active = *input.Active
	}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Update changes the tag name while keeping uniqueness.
func (s *TagService) Update(id uint, input TagInput) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := s.validate(name, id); err != nil {
		return nil, err
	}

	tag.Name = name
	if input.Active != nil {
		tag.Active = *input.Active
	}
	if err := s.db.Save(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes a tag and detaches it from every article.
func (s *TagService) Delete(id uint) error {
	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Association("Articles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

func (s *TagService) validate(name string, excludeID uint) error {
	errs := ValidationErrors{}
	requireText(errs, "nombre", name, 200)
	if len(errs) > 0 {
		return errs
	}

	var count int64
	if err := s.db.Model(&db.Tag{}).Where("name = ? AND id <> ?", name, excludeID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.Add("nombre", "Ya existe Etiqueta con este Nombre.")
	}
	return errs.Err()
}
