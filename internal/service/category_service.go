package service

import (
	"errors"
	"strings"

	"github.com/bitacora/internal/db"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput represents fields accepted when creating or updating a category.
// A nil Active keeps the current value (true for new categories).
type CategoryInput struct {
	Name   string
	Active *bool
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns every category ordered by name.
func (s *CategoryService) List() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListActive returns categories flagged active, ordered by name.
func (s *CategoryService) ListActive() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Where("active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Get fetches a category by id.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug fetches a category by its slug.
func (s *CategoryService) GetBySlug(slug string) (*db.Category, error) {
	var category db.Category
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category with a unique name and slug.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.validate(name, 0); err != nil {
		return nil, err
	}

	category := db.Category{Name: name, Active: true}
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update renames or (de)activates a category; the slug follows the name.
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := s.validate(name, id); err != nil {
		return nil, err
	}

	category.Name = name
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category; its articles keep existing without one.
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Article{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Category{}, id).Error
	})
}

func (s *CategoryService) validate(name string, excludeID uint) error {
	errs := ValidationErrors{}
	requireText(errs, "nombre", name, 200)
	if len(errs) > 0 {
		return errs
	}

	slug := db.Slugify(name)
	if slug == "" {
		errs.Add("nombre", "El nombre debe contener letras o números.")
		return errs
	}

	var count int64
	if err := s.db.Model(&db.Category{}).
		Where("(name = ? OR slug = ?) AND id <> ?", name, slug, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.Add("nombre", "Ya existe Categoría con este Nombre.")
	}
	return errs.Err()
}
