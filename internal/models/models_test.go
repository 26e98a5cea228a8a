package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	t.Parallel()

	// Table identity is the lower-cased plural of the entity name; the
	// junction table keeps the fused form with no underscore.
	require.Equal(t, "users", User{}.TableName())
	require.Equal(t, "products", Product{}.TableName())
	require.Equal(t, "orders", Order{}.TableName())
	require.Equal(t, "orderproducts", OrderProduct{}.TableName())
}

func TestAllCoversEveryModel(t *testing.T) {
	t.Parallel()
	require.Len(t, All(), 4)
}
