package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderItemInput is one requested line item
type OrderItemInput struct {
	DishID   uint
	Quantity int
}

// OrderInput holds a new order together with its line items
type OrderInput struct {
	TableNumber uint
	Status      models.OrderStatus // empty means waiting
	Items       []OrderItemInput
}

// OrderPatch holds a partial order update. When ReplaceItems is set the order's
// line items are replaced by Items in full.
type OrderPatch struct {
	TableNumber  *uint
	Status       *models.OrderStatus
	ReplaceItems bool
	Items        []OrderItemInput
}

// OrderFilter narrows order lists. Empty fields do not filter.
type OrderFilter struct {
	// Query matches a table number substring or a status, given as token or localized label
	Query string
	// Search splits on whitespace; each term matches a table number or status substring
	Search string
	Status models.OrderStatus
}

// OrderService reads and writes orders with their line items and computes the
// revenue aggregates. Every write runs in a single transaction.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an order service on top of db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns the orders matching filter, newest first, with items and dishes loaded
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := preloadItems(applyOrderFilter(s.db.WithContext(ctx).Model(&models.Order{}), filter)).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListPage returns one page of the orders matching filter, newest first
func (s *OrderService) ListPage(ctx context.Context, filter OrderFilter, number, size int) (Page[models.Order], error) {
	query := applyOrderFilter(s.db.WithContext(ctx).Model(&models.Order{}), filter)
	page, err := paginate[models.Order](query, "id DESC", number, size, "OrderItems.Dish")
	if err != nil {
		return page, fmt.Errorf("failed to list orders: %w", err)
	}
	return page, nil
}

// ListByStatus returns the orders in the given status. The status is matched
// case-insensitively; unknown statuses yield an empty list.
func (s *OrderService) ListByStatus(ctx context.Context, raw string) ([]models.Order, error) {
	status, ok := models.ParseOrderStatus(raw)
	if !ok {
		return []models.Order{}, nil
	}
	return s.List(ctx, OrderFilter{Status: status})
}

// Get loads an order with its items and their dishes
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	return findOrder(preloadItems(s.db.WithContext(ctx)), id)
}

// Create validates the order and all its items, then stores them together.
// Nothing is stored when any of them is invalid.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	order := &models.Order{TableNumber: in.TableNumber, Status: in.Status}
	if order.Status == "" {
		order.Status = models.StatusWaiting
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ve := &models.ValidationError{}
		if err := s.validateOrder(tx, order, ve); err != nil {
			return err
		}
		if err := validateItems(tx, in.Items, ve); err != nil {
			return err
		}
		if err := ve.Err(); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translateOrderError(err)
		}
		return createItems(tx, order.ID, in.Items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, order.ID)
}

// Update applies patch to an order. When patch.ReplaceItems is set the existing
// items are deleted and the new ones created in the same transaction.
func (s *OrderService) Update(ctx context.Context, id uint, patch OrderPatch) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, id)
		if err != nil {
			return err
		}
		if patch.TableNumber != nil {
			order.TableNumber = *patch.TableNumber
		}
		if patch.Status != nil {
			order.Status = *patch.Status
		}

		ve := &models.ValidationError{}
		if err := s.validateOrder(tx, order, ve); err != nil {
			return err
		}
		if patch.ReplaceItems {
			if err := validateItems(tx, patch.Items, ve); err != nil {
				return err
			}
		}
		if err := ve.Err(); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return translateOrderError(err)
		}
		if !patch.ReplaceItems {
			return nil
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear items of order %d: %w", id, err)
		}
		return createItems(tx, id, patch.Items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an order and its items. Deleting a missing order is a NotFoundError.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOrder(tx, id); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %d: %w", id, err)
		}
		if err := tx.Delete(&models.Order{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, err)
		}
		return nil
	})
}

// AddItem adds one line item to an existing order. A dish already present in
// the order is rejected; its quantity has to be updated instead.
func (s *OrderService) AddItem(ctx context.Context, orderID uint, in OrderItemInput) (*models.OrderItem, error) {
	item := &models.OrderItem{OrderID: orderID, DishID: in.DishID, Quantity: in.Quantity}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOrder(tx, orderID); err != nil {
			return err
		}
		if err := validateItem(tx, item); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return translateItemError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity changes the quantity of one line item of an order
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID uint, quantity int) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "order item", ID: itemID}
			}
			return fmt.Errorf("failed to load order item %d: %w", itemID, err)
		}
		item.Quantity = quantity
		if err := validateItem(tx, &item); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
			return translateItemError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// TotalPrice sums price x quantity over the order's items as currently stored
func (s *OrderService) TotalPrice(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return order.TotalPrice(), nil
}

// TotalRevenue sums price x quantity over every item of every paid order in a
// single aggregate query. It is zero when no paid order has items.
func (s *OrderService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("SUM(order_items.quantity * dishes.price)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN dishes ON dishes.id = order_items.dish_id").
		Where("orders.status = ?", string(models.StatusPaid)).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute total revenue: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(models.PriceDecimalPlaces), nil
}

// validateOrder checks the order fields and that no other order uses its table number
func (s *OrderService) validateOrder(tx *gorm.DB, order *models.Order, ve *models.ValidationError) error {
	var fieldErr *models.ValidationError
	if err := models.ValidateOrder(order); errors.As(err, &fieldErr) {
		ve.Merge(fieldErr)
	}
	if order.TableNumber == 0 {
		return nil
	}

	var count int64
	query := tx.Model(&models.Order{}).Where("table_number = ?", order.TableNumber)
	if order.ID != 0 {
		query = query.Where("id <> ?", order.ID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check table number: %w", err)
	}
	if count > 0 {
		ve.Add("table_number", "This table number is already taken.")
	}
	return nil
}

// validateItems checks a batch of items destined for one order: field rules,
// dish existence and no dish twice in the batch
func validateItems(tx *gorm.DB, items []OrderItemInput, ve *models.ValidationError) error {
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for i, in := range items {
		var fieldErr *models.ValidationError
		if err := models.ValidateOrderItem(&models.OrderItem{DishID: in.DishID, Quantity: in.Quantity}); errors.As(err, &fieldErr) {
			for _, fe := range fieldErr.Errors {
				ve.Add(models.ItemField(i, fe.Field), fe.Message)
			}
		}
		if in.DishID == 0 {
			continue
		}
		if seen[in.DishID] {
			ve.Add(models.ItemField(i, "dish"), "This dish is already in the order, change its quantity instead.")
		}
		seen[in.DishID] = true
		ids = append(ids, in.DishID)
	}
	if len(ids) == 0 {
		return nil
	}

	var existing []uint
	if err := tx.Model(&models.Dish{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("failed to check dishes: %w", err)
	}
	found := make(map[uint]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	for i, in := range items {
		if in.DishID != 0 && !found[in.DishID] {
			ve.Add(models.ItemField(i, "dish"), fmt.Sprintf("Dish %d does not exist.", in.DishID))
		}
	}
	return nil
}

// validateItem checks a single stored or new item against the rows already in its order
func validateItem(tx *gorm.DB, item *models.OrderItem) error {
	ve := &models.ValidationError{}
	var fieldErr *models.ValidationError
	if err := models.ValidateOrderItem(item); errors.As(err, &fieldErr) {
		ve.Merge(fieldErr)
	}
	if item.DishID != 0 {
		if _, err := findDish(tx, item.DishID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			ve.Add("dish", fmt.Sprintf("Dish %d does not exist.", item.DishID))
		}

		var count int64
		query := tx.Model(&models.OrderItem{}).Where("order_id = ? AND dish_id = ?", item.OrderID, item.DishID)
		if item.ID != 0 {
			query = query.Where("id <> ?", item.ID)
		}
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order items: %w", err)
		}
		if count > 0 {
			ve.Add("dish", "This dish is already in the order, change its quantity instead.")
		}
	}
	return ve.Err()
}

func createItems(tx *gorm.DB, orderID uint, items []OrderItemInput) error {
	for _, in := range items {
		item := models.OrderItem{OrderID: orderID, DishID: in.DishID, Quantity: in.Quantity}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return translateItemError(err)
		}
	}
	return nil
}

func translateOrderError(err error) error {
	if isUniqueViolation(err) {
		return &ConflictError{Field: "table_number", Message: "This table number is already taken.", Err: err}
	}
	return fmt.Errorf("failed to save order: %w", err)
}

func translateItemError(err error) error {
	if isUniqueViolation(err) {
		return &ConflictError{Field: "dish", Message: "This dish is already in the order.", Err: err}
	}
	return fmt.Errorf("failed to save order item: %w", err)
}

func findOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: id}
		}
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}

// preloadItems loads the order items in insertion order together with their dishes
func preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("OrderItems.Dish")
}

func applyOrderFilter(query *gorm.DB, filter OrderFilter) *gorm.DB {
	if q := strings.TrimSpace(filter.Query); q != "" {
		status, ok := models.StatusFromLabel(q)
		if !ok {
			if status, ok = models.ParseOrderStatus(q); !ok {
				status = models.OrderStatus(q)
			}
		}
		query = query.Where("CAST(table_number AS TEXT) LIKE ? OR status = ?", "%"+q+"%", string(status))
	}
	// every search term has to match the table number or the status
	for _, term := range strings.Fields(filter.Search) {
		query = query.Where("(CAST(table_number AS TEXT) LIKE ? OR LOWER(status) LIKE ?)",
			"%"+term+"%", "%"+strings.ToLower(term)+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	return query
}
