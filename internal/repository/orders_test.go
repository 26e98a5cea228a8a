package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Brisinger/Sqlalchemy/internal/models"
)

func TestAddOrder(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "John Doe", "en", nil, nil)

	first, err := r.AddOrder(ctx, 1)
	require.NoError(t, err)
	require.Positive(t, first.OrderID)
	require.Equal(t, int64(1), first.UserID)

	// Orders never conflict: a second order for the same user is a new row.
	second, err := r.AddOrder(ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, first.OrderID, second.OrderID)
}

func TestAddOrder_UnknownUserFails(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)

	_, err := r.AddOrder(context.Background(), 404)
	require.Error(t, err)
}

func TestAddProduct_ConflictUpdatesPrice(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.AddProduct(ctx, "Widget", strptr("a widget"), decimal.NewFromFloat(9.99))
	require.NoError(t, err)
	require.Positive(t, first.ProductID)

	second, err := r.AddProduct(ctx, "Widget", strptr("ignored on conflict"), decimal.NewFromFloat(12.50))
	require.NoError(t, err)
	require.Equal(t, first.ProductID, second.ProductID)
	require.True(t, second.Price.Equal(decimal.NewFromFloat(12.50)), "price = %s", second.Price)
	require.Equal(t, "a widget", *second.Description)

	var count int64
	require.NoError(t, r.DB.Model(&models.Product{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAddOrderProduct_ConflictUpdatesQuantity(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "John Doe", "en", nil, nil)
	order, err := r.AddOrder(ctx, 1)
	require.NoError(t, err)
	product, err := r.AddProduct(ctx, "Widget", nil, decimal.NewFromInt(5))
	require.NoError(t, err)

	line, err := r.AddOrderProduct(ctx, order.OrderID, product.ProductID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, line.Quantity)

	line, err = r.AddOrderProduct(ctx, order.OrderID, product.ProductID, 8)
	require.NoError(t, err)
	require.Equal(t, 8, line.Quantity)

	var count int64
	require.NoError(t, r.DB.Model(&models.OrderProduct{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestDeleteRules(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "Referrer", "en", nil, nil)
	mustAddUser(t, r, 2, "Referee", "en", nil, int64ptr(1))

	order, err := r.AddOrder(ctx, 2)
	require.NoError(t, err)
	product, err := r.AddProduct(ctx, "Widget", nil, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = r.AddOrderProduct(ctx, order.OrderID, product.ProductID, 3)
	require.NoError(t, err)

	// Restrict: a referenced product cannot be deleted.
	err = r.DB.Delete(&models.Product{}, product.ProductID).Error
	require.Error(t, err)

	// Cascade: deleting the order takes its line items with it.
	require.NoError(t, r.DB.Delete(&models.Order{}, order.OrderID).Error)
	var lines int64
	require.NoError(t, r.DB.Model(&models.OrderProduct{}).Count(&lines).Error)
	require.EqualValues(t, 0, lines)

	// With no line items left the product can go.
	require.NoError(t, r.DB.Delete(&models.Product{}, product.ProductID).Error)

	// Set-null: deleting the referrer detaches the referee, it does not
	// delete them.
	require.NoError(t, r.DB.Delete(&models.User{}, 1).Error)
	referee, err := r.GetUserByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, referee)
	require.Nil(t, referee.ReferrerID)
}

// tableDDL returns the CREATE TABLE statement sqlite recorded for name.
func tableDDL(t *testing.T, r *Repo, name string) string {
	t.Helper()
	var ddl string
	require.NoError(t, r.DB.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&ddl).Error)
	require.NotEmpty(t, ddl)
	return ddl
}

func TestJunctionForeignKeysLiveOnJunctionTable(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)

	ddl := tableDDL(t, r, "orderproducts")
	require.Contains(t, ddl, "ON DELETE CASCADE")
	require.Contains(t, ddl, "ON DELETE RESTRICT")

	// The parent tables must not point back at the junction table.
	require.NotContains(t, tableDDL(t, r, "orders"), "orderproducts")
	require.NotContains(t, tableDDL(t, r, "products"), "orderproducts")
}

func TestDeleteUserCascadesOrders(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "John Doe", "en", nil, nil)
	_, err := r.AddOrder(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, r.DB.Delete(&models.User{}, 1).Error)

	var orders int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orders).Error)
	require.EqualValues(t, 0, orders)
}
