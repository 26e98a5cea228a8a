package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/Brisinger/Sqlalchemy/internal/models"
)

// AddOrder inserts an order for the given user and returns it with the
// generated id. Orders never conflict with each other, so no upsert clause.
func (r *Repo) AddOrder(ctx context.Context, userID int64) (*models.Order, error) {
	order := models.Order{UserID: userID}
	if err := r.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// AddProduct upserts a product keyed by its unique title. On conflict only
// the price moves; title and description stay as stored. Returns the
// resulting row from the same statement.
func (r *Repo) AddProduct(ctx context.Context, title string, description *string, price decimal.Decimal) (*models.Product, error) {
	product := models.Product{
		Title:       title,
		Description: description,
		Price:       price,
	}
	err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		},
		clause.Returning{},
	).Create(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AddOrderProduct upserts a line item keyed by the (order_id, product_id)
// pair. Re-adding the same pair replaces the quantity instead of creating a
// second row.
func (r *Repo) AddOrderProduct(ctx context.Context, orderID, productID, quantity int) (*models.OrderProduct, error) {
	line := models.OrderProduct{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		},
		clause.Returning{},
	).Create(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}
