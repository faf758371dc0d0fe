// internal/services/stores.go
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore is the slice of user persistence the services depend on. Tests
// substitute an in-memory implementation.
type UserStore interface {
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Save(user *models.User) error
	// MarkPaid flips the paid flag and resets the usage counter in one
	// write. Only the payment callback path calls it.
	MarkPaid(id string, paidAt time.Time) error
	IncrementAnalysisCount(id string) error
	List(params utils.PaginationParams) ([]models.User, int64, error)
}

// OrderStore persists payment orders.
type OrderStore interface {
	Create(order *models.PaymentOrder) error
	GetByTradeNo(tradeNo string) (*models.PaymentOrder, error)
	Save(order *models.PaymentOrder) error
}

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *gormUserStore) Save(user *models.User) error {
	return s.db.Save(user).Error
}

func (s *gormUserStore) MarkPaid(id string, paidAt time.Time) error {
	result := s.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_paid":        true,
		"paid_at":        paidAt,
		"analysis_count": 0,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *gormUserStore) IncrementAnalysisCount(id string) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("analysis_count", gorm.Expr("analysis_count + 1")).Error
}

func (s *gormUserStore) List(params utils.PaginationParams) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := utils.ApplyPagination(s.db.Order("created_at desc"), params)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

type gormOrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) OrderStore {
	return &gormOrderStore{db: db}
}

func (s *gormOrderStore) Create(order *models.PaymentOrder) error {
	return s.db.Create(order).Error
}

func (s *gormOrderStore) GetByTradeNo(tradeNo string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := s.db.First(&order, "merchant_trade_no = ?", tradeNo).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *gormOrderStore) Save(order *models.PaymentOrder) error {
	return s.db.Save(order).Error
}
