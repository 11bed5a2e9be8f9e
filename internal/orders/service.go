package orders

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/domain"
	"github.com/okoshkin/storefront/internal/models"
)

// Service backs the order management screens: the staff/employee order
// list with its filter form, order detail, status overrides, and the
// per-user order history.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Filter holds the optional order search criteria. All provided fields
// combine with AND. Query matches the order id exactly when it is all
// digits, otherwise the owner's username case-insensitively.
type Filter struct {
	Query    string
	Status   string
	TotalMin *decimal.Decimal
	TotalMax *decimal.Decimal
	DateFrom *time.Time
	DateTo   *time.Time
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// List returns all orders matching the filter, newest first, with owner
// and line items preloaded. Totals are computed at query time from
// current product prices; the total bounds are inclusive.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Preload("User").
		Preload("Items.Product").
		Order("orders.created_at DESC")

	if f.Query != "" {
		if isDigits(f.Query) {
			id, err := strconv.ParseUint(f.Query, 10, 64)
			if err != nil {
				return nil, domain.ErrInvalidInput
			}
			q = q.Where("orders.id = ?", id)
		} else {
			q = q.Joins("JOIN users ON users.id = orders.user_id").
				Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
		}
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	// Date bounds are inclusive on the calendar date, not the timestamp.
	if f.DateFrom != nil {
		q = q.Where("orders.created_at >= ?", startOfDay(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("orders.created_at < ?", startOfDay(*f.DateTo).AddDate(0, 0, 1))
	}

	var result []models.Order
	if err := q.Find(&result).Error; err != nil {
		return nil, err
	}

	if f.TotalMin == nil && f.TotalMax == nil {
		return result, nil
	}
	filtered := result[:0]
	for _, o := range result {
		total := o.Total()
		if f.TotalMin != nil && total.LessThan(*f.TotalMin) {
			continue
		}
		if f.TotalMax != nil && total.GreaterThan(*f.TotalMax) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

// Get returns any order by id, for the staff/employee detail screen.
func (s *Service) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Items.Product").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus is the admin override on an order's status. It accepts
// only the known statuses; it performs no stock bookkeeping.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// ListForUser returns the user's own orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var result []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetForUser returns one of the user's own orders. An order owned by
// someone else reads as not-found.
func (s *Service) GetForUser(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
