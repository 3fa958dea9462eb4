package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DishInput holds the fields of a new or fully replaced dish
type DishInput struct {
	Name  string
	Price decimal.Decimal
}

// DishPatch holds the fields of a partial dish update; nil fields are left alone
type DishPatch struct {
	Name  *string
	Price *decimal.Decimal
}

// DishService reads and writes dishes
type DishService struct {
	db *gorm.DB
}

// NewDishService creates a dish service on top of db
func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

// List returns all dishes, newest first
func (s *DishService) List(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

// ListPage returns one page of dishes, newest first
func (s *DishService) ListPage(ctx context.Context, number, size int) (Page[models.Dish], error) {
	query := s.db.WithContext(ctx).Model(&models.Dish{})
	page, err := paginate[models.Dish](query, "id DESC", number, size)
	if err != nil {
		return page, fmt.Errorf("failed to list dishes: %w", err)
	}
	return page, nil
}

// Get loads a dish by id
func (s *DishService) Get(ctx context.Context, id uint) (*models.Dish, error) {
	return findDish(s.db.WithContext(ctx), id)
}

// Create validates and stores a new dish
func (s *DishService) Create(ctx context.Context, in DishInput) (*models.Dish, error) {
	dish := &models.Dish{Name: in.Name, Price: in.Price}
	if err := models.ValidateDish(dish); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(dish).Error; err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return dish, nil
}

// Update applies patch to the dish and stores it
func (s *DishService) Update(ctx context.Context, id uint, patch DishPatch) (*models.Dish, error) {
	var dish *models.Dish
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if dish, err = findDish(tx, id); err != nil {
			return err
		}
		if patch.Name != nil {
			dish.Name = *patch.Name
		}
		if patch.Price != nil {
			dish.Price = *patch.Price
		}
		if err := models.ValidateDish(dish); err != nil {
			return err
		}
		if err := tx.Save(dish).Error; err != nil {
			return fmt.Errorf("failed to update dish: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dish, nil
}

// SetImageKey records the storage key of the dish photo; nil clears it
func (s *DishService) SetImageKey(ctx context.Context, id uint, key *string) (*models.Dish, error) {
	dish, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(dish).Update("image_s3_key", key).Error; err != nil {
		return nil, fmt.Errorf("failed to update dish image: %w", err)
	}
	dish.ImageS3Key = key
	return dish, nil
}

// Delete removes the dish and every order item referencing it.
// The deleted dish is returned so callers can clean up its photo.
func (s *DishService) Delete(ctx context.Context, id uint) (*models.Dish, error) {
	var dish *models.Dish
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if dish, err = findDish(tx, id); err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items of dish %d: %w", id, err)
		}
		if err := tx.Delete(&models.Dish{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete dish %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dish, nil
}

func findDish(db *gorm.DB, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := db.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "dish", ID: id}
		}
		return nil, fmt.Errorf("failed to load dish %d: %w", id, err)
	}
	return &dish, nil
}
