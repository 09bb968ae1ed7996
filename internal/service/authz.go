package service

import "github.com/bitacora/internal/db"

// CanCreateArticle allows active collaborators to write new articles.
func CanCreateArticle(account *db.Account) bool {
	return account != nil && account.IsActive && account.HasRole(db.RoleCollaborator)
}

// CanManageArticle allows the article's author or a superuser to edit or delete it.
func CanManageArticle(account *db.Account, article *db.Article) bool {
	if account == nil || !account.IsActive || article == nil {
		return false
	}
	return account.IsSuperuser || article.IsAuthoredBy(account)
}

// CanAdminister gates the admin console.
func CanAdminister(account *db.Account) bool {
	return account != nil && account.IsActive && account.IsSuperuser
}
