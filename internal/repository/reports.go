package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brisinger/Sqlalchemy/internal/models"
)

// OrderUserRow is one order joined with its owning user.
type OrderUserRow struct {
	OrderID    int       `gorm:"column:order_id"    json:"order_id"`
	CreatedAt  time.Time `gorm:"column:created_at"  json:"created_at"`
	TelegramID int64     `gorm:"column:telegram_id" json:"telegram_id"`
	FullName   string    `gorm:"column:full_name"   json:"full_name"`
	UserName   *string   `gorm:"column:user_name"   json:"user_name"`
}

// OrderUserNameRow is one order joined with just the username column.
type OrderUserNameRow struct {
	OrderID  int     `gorm:"column:order_id"  json:"order_id"`
	UserName *string `gorm:"column:user_name" json:"user_name"`
}

// OrderLineRow is one line item joined across products, orders and users.
type OrderLineRow struct {
	ProductID int             `gorm:"column:product_id" json:"product_id"`
	Title     string          `gorm:"column:title"      json:"title"`
	Price     decimal.Decimal `gorm:"column:price"      json:"price"`
	OrderID   int             `gorm:"column:order_id"   json:"order_id"`
	UserName  *string         `gorm:"column:user_name"  json:"user_name"`
	Quantity  int             `gorm:"column:quantity"   json:"quantity"`
}

// GetAllUserOrdersUserFull lists the user's orders with the full user row
// projected alongside each one.
func (r *Repo) GetAllUserOrdersUserFull(ctx context.Context, telegramID int64) ([]OrderUserRow, error) {
	var rows []OrderUserRow
	err := r.DB.WithContext(ctx).
		Table("orders").
		Select("orders.order_id, orders.created_at, users.telegram_id, users.full_name, users.user_name").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Where("users.telegram_id = ?", telegramID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAllUserOrdersUserName lists the user's orders with only the username
// column projected.
func (r *Repo) GetAllUserOrdersUserName(ctx context.Context, telegramID int64) ([]OrderUserNameRow, error) {
	var rows []OrderUserNameRow
	err := r.DB.WithContext(ctx).
		Table("orders").
		Select("orders.order_id, users.user_name").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Where("users.telegram_id = ?", telegramID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAllUserOrdersRelationships walks users -> orders -> orderproducts ->
// products, the direction the entity relationships point.
func (r *Repo) GetAllUserOrdersRelationships(ctx context.Context, telegramID int64) ([]OrderLineRow, error) {
	var rows []OrderLineRow
	err := r.DB.WithContext(ctx).
		Table("users").
		Select("products.product_id, products.title, products.price, orders.order_id, users.user_name, orderproducts.quantity").
		Joins("JOIN orders ON orders.user_id = users.telegram_id").
		Joins("JOIN orderproducts ON orderproducts.order_id = orders.order_id").
		Joins("JOIN products ON products.product_id = orderproducts.product_id").
		Where("users.telegram_id = ?", telegramID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAllUserOrdersNoRelationships answers the same question as
// GetAllUserOrdersRelationships but joins from the products side with
// explicit conditions. Equivalent inputs must yield equivalent row sets.
func (r *Repo) GetAllUserOrdersNoRelationships(ctx context.Context, telegramID int64) ([]OrderLineRow, error) {
	var rows []OrderLineRow
	err := r.DB.WithContext(ctx).
		Table("products").
		Select("products.product_id, products.title, products.price, orders.order_id, users.user_name, orderproducts.quantity").
		Joins("JOIN orderproducts ON orderproducts.product_id = products.product_id").
		Joins("JOIN orders ON orders.order_id = orderproducts.order_id").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Where("users.telegram_id = ?", telegramID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetUserTotalNumberOfOrders counts one user's orders.
func (r *Repo) GetUserTotalNumberOfOrders(ctx context.Context, telegramID int64) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", telegramID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// OrdersByUserRow is a per-user order count keyed by telegram id.
type OrdersByUserRow struct {
	Count      int64 `gorm:"column:count"       json:"count"`
	TelegramID int64 `gorm:"column:telegram_id" json:"telegram_id"`
}

// LabeledCountRow carries an aggregate under descriptive labels.
type LabeledCountRow struct {
	Quantity int64  `gorm:"column:quantity" json:"quantity"`
	Name     string `gorm:"column:name"     json:"name"`
}

// GetTotalNumberOfOrdersByUser groups order counts per user.
func (r *Repo) GetTotalNumberOfOrdersByUser(ctx context.Context) ([]OrdersByUserRow, error) {
	var rows []OrdersByUserRow
	err := r.DB.WithContext(ctx).
		Table("orders").
		Select("COUNT(orders.order_id) AS count, users.telegram_id").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Group("users.telegram_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTotalNumberOfOrdersByUserWithLabels returns the same counts as
// GetTotalNumberOfOrdersByUser, labeled quantity/name.
func (r *Repo) GetTotalNumberOfOrdersByUserWithLabels(ctx context.Context) ([]LabeledCountRow, error) {
	var rows []LabeledCountRow
	err := r.DB.WithContext(ctx).
		Table("orders").
		Select("COUNT(orders.order_id) AS quantity, users.full_name AS name").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Group("users.telegram_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCountOfProductsByUser sums line-item quantities per user across all of
// their orders.
func (r *Repo) GetCountOfProductsByUser(ctx context.Context) ([]LabeledCountRow, error) {
	var rows []LabeledCountRow
	err := r.DB.WithContext(ctx).
		Table("orderproducts").
		Select("SUM(orderproducts.quantity) AS quantity, users.full_name AS name").
		Joins("JOIN orders ON orders.order_id = orderproducts.order_id").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Group("users.telegram_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetCountOfProductsGreaterThanXByUser keeps only users whose summed
// quantity is strictly greater than the threshold. The filter runs after
// aggregation.
func (r *Repo) GetCountOfProductsGreaterThanXByUser(ctx context.Context, greaterThan int) ([]LabeledCountRow, error) {
	var rows []LabeledCountRow
	err := r.DB.WithContext(ctx).
		Table("orderproducts").
		Select("SUM(orderproducts.quantity) AS quantity, users.full_name AS name").
		Joins("JOIN orders ON orders.order_id = orderproducts.order_id").
		Joins("JOIN users ON users.telegram_id = orders.user_id").
		Group("users.telegram_id").
		Having("SUM(orderproducts.quantity) > ?", greaterThan).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
