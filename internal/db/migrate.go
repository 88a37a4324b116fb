package db

import (
	"document-archive/internal/domain"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models returns every persisted model, in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Document{},
		&domain.CompiledDocument{},
		&domain.CompiledDocumentItem{},
		&domain.Author{},
		&domain.DocumentAuthor{},
		&domain.Topic{},
		&domain.DocumentTopic{},
		&domain.DocumentRequest{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// SeedAdmin creates the development administrator if no user with that email exists.
func SeedAdmin(db *gorm.DB, logger *zap.Logger, email string) (*domain.User, error) {
	var admin domain.User
	err := db.Where("email = ?", email).First(&admin).Error
	if err == nil {
		logger.Info("Admin user already exists", zap.String("email", email))
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	admin = domain.User{
		Name:     "Archive Admin",
		Email:    email,
		Role:     domain.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	logger.Info("Created admin user", zap.String("email", email), zap.Uint64("id", admin.ID))
	return &admin, nil
}
