package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a telegram user. TelegramID comes from the caller and is never
// generated by the store.
type User struct {
	TelegramID   int64     `gorm:"primaryKey;autoIncrement:false"       json:"telegram_id"`
	FullName     string    `gorm:"size:255;not null"                    json:"full_name"`
	UserName     *string   `gorm:"size:255"                             json:"user_name"`
	PhoneNumber  *string   `gorm:"size:50"                              json:"phone_number"`
	LanguageCode string    `gorm:"size:10;not null"                     json:"language_code"`
	ReferrerID   *int64    `gorm:"index"                                json:"referrer_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Referral is a weak reference: deleting the referrer nulls out
	// ReferrerID on the referee, it never cascades.
	Referrer *User `gorm:"foreignKey:ReferrerID;references:TelegramID;constraint:OnDelete:SET NULL" json:"-"`
}

func (User) TableName() string { return "users" }

type Product struct {
	ProductID   int             `gorm:"primaryKey;autoIncrement"                         json:"product_id"`
	Title       string          `gorm:"size:255;not null;uniqueIndex:products_title_key" json:"title"`
	Description *string         `gorm:"size:3000"                                        json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(16,4);not null"                      json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Line items keep pointing at the product, so its deletion is refused
	// while any order still references it.
	Lines []OrderProduct `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	OrderID   int       `gorm:"primaryKey;autoIncrement" json:"order_id"`
	UserID    int64     `gorm:"not null;index"           json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User     *User          `gorm:"foreignKey:UserID;references:TelegramID;constraint:OnDelete:CASCADE"  json:"-"`
	Products []OrderProduct `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"    json:"-"`
}

func (Order) TableName() string { return "orders" }

// OrderProduct is the order/product junction row. The quantity lives here,
// one row per (order, product) pair. Its foreign keys are declared from the
// owning side (Order.Products, Product.Lines) so the constraints land on
// this table.
type OrderProduct struct {
	OrderID   int `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	ProductID int `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int `gorm:"not null"                       json:"quantity"`
}

func (OrderProduct) TableName() string { return "orderproducts" }

// All lists every model in dependency order, ready for AutoMigrate.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderProduct{}}
}
