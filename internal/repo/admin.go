package repo

import (
	"PortfolioCMS/internal/model"
	"context"

	"gorm.io/gorm"
)

// AdminRepository доступ к учётным записям администраторов.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, a *model.Admin) (*model.Admin, error)
	// GetAdminByLogin возвращает gorm.ErrRecordNotFound, если логин не найден.
	GetAdminByLogin(ctx context.Context, login string) (*model.Admin, error)
}

type adminRepo struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) CreateAdmin(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

func (r *adminRepo) GetAdminByLogin(ctx context.Context, login string) (*model.Admin, error) {
	var a model.Admin
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
