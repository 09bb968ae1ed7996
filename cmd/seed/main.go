package main

import (
	"errors"
	"time"

	"github.com/bitacora/internal/config"
	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb, err := db.Open(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	if err := seed(gdb, log, time.Now().UTC()); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed",
		zap.String("collaborator", seedAuthorName),
		zap.String("password", seedAuthorPassword),
	)
}

const (
	seedAuthorName     = "editora"
	seedAuthorPassword = "editora123"
)

var (
	seedCategories = []string{"Tecnología", "Cultura", "Opinión"}
	seedTags       = []string{"go", "web", "bases de datos", "reflexiones", "tutorial"}
)

type seedArticle struct {
	title     string
	summary   string
	body      string
	category  string
	tags      []string
	published bool
	monthsAgo int
}

var seedArticles = []seedArticle{
	{
		title:     "Construyendo servicios web con Go",
		summary:   "Un recorrido por las decisiones detrás de un servicio web pequeño y rápido.",
		body:      "Go ofrece concurrencia sencilla y binarios autocontenidos.\n\n## Primeros pasos\n\n- Un servidor HTTP\n- Plantillas\n- Una base de datos",
		category:  "Tecnología",
		tags:      []string{"go", "web"},
		published: true,
	},
	{
		title:     "Índices en SQLite sin misterios",
		summary:   "Qué índices crear y cómo comprobar que se usan.",
		body:      "Usa `EXPLAIN QUERY PLAN` antes de crear un índice nuevo.",
		category:  "Tecnología",
		tags:      []string{"bases de datos", "tutorial"},
		published: true,
		monthsAgo: 1,
	},
	{
		title:     "Lecturas del verano",
		summary:   "Libros que acompañaron las vacaciones.",
		body:      "Una lista breve y muy personal.",
		category:  "Cultura",
		tags:      []string{"reflexiones"},
		published: true,
		monthsAgo: 2,
	},
	{
		title:     "Escribir para aprender",
		summary:   "Por qué mantener un blog ayuda a ordenar las ideas.",
		body:      "Escribir obliga a explicar, y explicar obliga a entender.",
		category:  "Opinión",
		tags:      []string{"reflexiones"},
		published: true,
		monthsAgo: 13,
	},
	{
		title:     "Borrador: plantillas con herencia",
		summary:   "Notas sin terminar sobre plantillas.",
		body:      "Pendiente de revisión.",
		category:  "Tecnología",
		tags:      []string{"web", "tutorial"},
		published: false,
	},
}

// seed populates an empty blog with demo content. Existing articles are
// replaced; accounts and taxonomy are created only when missing.
func seed(gdb *gorm.DB, log *zap.Logger, now time.Time) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		author, err := seedAuthor(tx)
		if err != nil {
			return err
		}

		categories := make(map[string]db.Category, len(seedCategories))
		for _, name := range seedCategories {
			category := db.Category{Name: name}
			if err := tx.Where(db.Category{Name: name}).Attrs(db.Category{Active: true}).FirstOrCreate(&category).Error; err != nil {
				return err
			}
			categories[name] = category
		}

		tags := make(map[string]db.Tag, len(seedTags))
		for _, name := range seedTags {
			tag := db.Tag{Name: name}
			if err := tx.Where(db.Tag{Name: name}).Attrs(db.Tag{Active: true}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			tags[name] = tag
		}

		if err := seedSiteContent(tx); err != nil {
			return err
		}

		// 清理旧文章及关联
		if err := tx.Exec("DELETE FROM article_tags").Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&db.Article{}).Error; err != nil {
			return err
		}

		for _, item := range seedArticles {
			category := categories[item.category]
			article := db.Article{
				Title:      item.title,
				Summary:    item.summary,
				Body:       item.body,
				Published:  item.published,
				CategoryID: &category.ID,
				AuthorID:   &author.ID,
				CreatedAt:  now.AddDate(0, -item.monthsAgo, 0),
			}
			for _, name := range item.tags {
				article.Tags = append(article.Tags, tags[name])
			}
			if err := tx.Create(&article).Error; err != nil {
				return err
			}
		}

		log.Info("demo data created",
			zap.Int("articles", len(seedArticles)),
			zap.Int("categories", len(seedCategories)),
			zap.Int("tags", len(seedTags)),
		)
		return nil
	})
}

func seedAuthor(tx *gorm.DB) (*db.Account, error) {
	var author db.Account
	err := tx.Where("username = ?", seedAuthorName).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	author = db.Account{Username: seedAuthorName, Email: seedAuthorName + "@example.cl", IsActive: true}
	if err := author.SetPassword(seedAuthorPassword); err != nil {
		return nil, err
	}
	for _, role := range []db.Role{db.RoleMember, db.RoleCollaborator} {
		group := db.Group{Name: role}
		if err := tx.Where(db.Group{Name: role}).FirstOrCreate(&group).Error; err != nil {
			return nil, err
		}
		author.Groups = append(author.Groups, group)
	}
	if err := tx.Create(&author).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(&db.UserProfile{AccountID: author.ID}).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func seedSiteContent(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&db.AboutBlurb{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		about := db.AboutBlurb{Description: "Bitácora personal sobre programación, libros y lo que vaya saliendo."}
		if err := tx.Create(&about).Error; err != nil {
			return err
		}
	}

	if err := tx.Model(&db.SocialLink{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	links := []db.SocialLink{
		{Name: "GitHub", URL: "https://github.com/", Icon: "fab fa-github"},
		{Name: "Twitter", URL: "https://x.com/", Icon: "fab fa-twitter"},
		{Name: "Correo", URL: "https://example.cl/contacto", Icon: "fas fa-envelope"},
	}
	return tx.Create(&links).Error
}
