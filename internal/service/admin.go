package service

import (
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

type AdminService struct {
	repo repo.AdminRepository
}

func NewAdminService(r repo.AdminRepository) *AdminService {
	return &AdminService{repo: r}
}

func (s *AdminService) find(ctx context.Context, login string) (*model.Admin, error) {
	a, err := s.repo.GetAdminByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return a, err
}

// Register создаёт администратора с bcrypt-хешем пароля.
func (s *AdminService) Register(ctx context.Context, login, password string) (*model.Admin, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.find(ctx, login)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.CreateAdmin(ctx, &model.Admin{Login: login, Password: string(hash)})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrLoginTaken
	}
	return a, err
}

// Seed создаёт администратора, если логин ещё свободен. created=false — уже существовал.
func (s *AdminService) Seed(ctx context.Context, login, password string) (a *model.Admin, created bool, err error) {
	a, err = s.Register(ctx, login, password)
	if errors.Is(err, ErrLoginTaken) {
		existing, ferr := s.find(ctx, strings.TrimSpace(login))
		return existing, false, ferr
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// Login проверяет логин и пароль.
func (s *AdminService) Login(ctx context.Context, login, password string) (*model.Admin, error) {
	a, err := s.find(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
