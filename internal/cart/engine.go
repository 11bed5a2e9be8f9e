package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okoshkin/storefront/internal/domain"
	"github.com/okoshkin/storefront/internal/models"
)

// Engine drives the cart and checkout workflow. The cart is the user's
// order in status "new"; there is at most one per user. Stock is never
// decremented when items are added, only when the order is confirmed.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

func stockWarning(stock int) string {
	return fmt.Sprintf("%d items in stock", stock)
}

// AddItem puts requested units of a product into the user's cart,
// creating the cart and the line item as needed. The stored quantity is
// clamped to the product's stock; when clamping happens the returned
// warning tells the caller how many units were actually available.
func (e *Engine) AddItem(ctx context.Context, userID, productID uint, requested int) (*models.Order, *models.OrderItem, string, error) {
	var (
		order   models.Order
		item    models.OrderItem
		warning string
	)

	txErr := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		quantity := requested
		if quantity > product.StockQuantity {
			quantity = product.StockQuantity
			warning = stockWarning(product.StockQuantity)
		}
		if quantity <= 0 {
			return domain.ErrInvalidQuantity
		}

		if err := tx.Where(models.Order{UserID: userID, Status: models.StatusNew}).
			FirstOrCreate(&order).Error; err != nil {
			return err
		}

		err := tx.Where("order_id = ? AND product_id = ?", order.ID, product.ID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: quantity}
			return tx.Create(&item).Error
		case err != nil:
			return err
		}

		newQuantity := item.Quantity + requested
		if newQuantity > product.StockQuantity {
			newQuantity = product.StockQuantity
			warning = stockWarning(product.StockQuantity)
		}
		item.Quantity = newQuantity
		return tx.Save(&item).Error
	})
	if txErr != nil {
		return nil, nil, warning, txErr
	}
	return &order, &item, warning, nil
}

// ViewCart returns the user's active cart with items and products
// preloaded, or nil when the user has no cart.
func (e *Engine) ViewCart(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	err := e.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ? AND status = ?", userID, models.StatusNew).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// Stale-read guard: never hand out a cart that is no longer "new".
	if order.Status != models.StatusNew {
		return nil, nil
	}
	return &order, nil
}

// cartItem loads an order item only if it belongs to the user's active
// cart. Any mismatch reads as not-found so that probing another user's
// item ids reveals nothing.
func (e *Engine) cartItem(tx *gorm.DB, userID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.user_id = ? AND orders.status = ?", itemID, userID, models.StatusNew).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets a cart line to the given quantity, clamped to
// stock. A quantity of zero or less removes the line; removed reports
// that outcome.
func (e *Engine) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (item *models.OrderItem, removed bool, warning string, err error) {
	txErr := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = e.cartItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			removed = true
			return tx.Delete(&models.OrderItem{}, item.ID).Error
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if quantity > product.StockQuantity {
			quantity = product.StockQuantity
			warning = stockWarning(product.StockQuantity)
		}
		item.Quantity = quantity
		return tx.Save(item).Error
	})
	if txErr != nil {
		return nil, false, "", txErr
	}
	if removed {
		return nil, true, "", nil
	}
	return item, false, warning, nil
}

// RemoveItem deletes a line from the user's active cart.
func (e *Engine) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := e.cartItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.OrderItem{}, item.ID).Error
	})
}

// ConfirmOrder places the user's cart: every line is validated against
// current stock first, and only if all lines pass is stock decremented
// and the order flipped to "processing". The whole commit is one
// transaction; a failure anywhere rolls back every decrement.
func (e *Engine) ConfirmOrder(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order

	txErr := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").
			Where("user_id = ? AND status = ?", userID, models.StatusNew).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNoActiveOrder
		}
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return domain.ErrEmptyOrder
		}

		productIDs := make([]uint, 0, len(order.Items))
		for _, it := range order.Items {
			productIDs = append(productIDs, it.ProductID)
		}

		// Row locks close the double-confirm race on the last unit.
		// SQLite has no FOR UPDATE; its single writer serializes the
		// transaction anyway.
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var products []models.Product
		if err := q.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return err
		}
		productByID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			productByID[p.ID] = p
		}

		// Validation pass. Must fully precede the mutation pass so a
		// late shortfall cannot leave earlier decrements behind.
		for _, it := range order.Items {
			p, ok := productByID[it.ProductID]
			if !ok {
				return domain.ErrNotFound
			}
			if it.Quantity > p.StockQuantity {
				return domain.NewDomainError(
					domain.ErrInsufficientStock.Code,
					fmt.Sprintf("%d items in stock for %s", p.StockQuantity, p.Name),
				)
			}
		}

		// Mutation pass.
		for _, it := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		order.Status = models.StatusProcessing
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", models.StatusProcessing).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}
