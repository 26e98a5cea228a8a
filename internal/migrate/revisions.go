package migrate

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Schema snapshots for the migration chain. They deliberately lag the live
// models in internal/models: each revision moves the schema exactly one
// step, so the base snapshot has no phone_number column and no unique title
// index.

type baseUser struct {
	TelegramID   int64   `gorm:"primaryKey;autoIncrement:false"`
	FullName     string  `gorm:"size:255;not null"`
	UserName     *string `gorm:"size:255"`
	LanguageCode string  `gorm:"size:10;not null"`
	ReferrerID   *int64  `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Referrer *baseUser `gorm:"foreignKey:ReferrerID;references:TelegramID;constraint:OnDelete:SET NULL"`
}

func (baseUser) TableName() string { return "users" }

type baseProduct struct {
	ProductID   int             `gorm:"primaryKey;autoIncrement"`
	Title       string          `gorm:"size:255;not null"`
	Description *string         `gorm:"size:3000"`
	Price       decimal.Decimal `gorm:"type:decimal(16,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Lines []baseOrderProduct `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:RESTRICT"`
}

func (baseProduct) TableName() string { return "products" }

type baseOrder struct {
	OrderID   int   `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User     *baseUser          `gorm:"foreignKey:UserID;references:TelegramID;constraint:OnDelete:CASCADE"`
	Products []baseOrderProduct `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
}

func (baseOrder) TableName() string { return "orders" }

// Junction foreign keys are declared from the owning side, same as the live
// models, so the constraints land on orderproducts.
type baseOrderProduct struct {
	OrderID   int `gorm:"primaryKey;autoIncrement:false"`
	ProductID int `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int `gorm:"not null"`
}

func (baseOrderProduct) TableName() string { return "orderproducts" }

// phoneUser carries only the column revision 436f06e6408d adds.
type phoneUser struct {
	PhoneNumber *string `gorm:"size:50"`
}

func (phoneUser) TableName() string { return "users" }

// titledProduct carries only the index revision fc2f1e36c98c adds. A unique
// index rather than a table constraint, so the delta applies the same way on
// postgres and sqlite; postgres accepts it as an ON CONFLICT arbiter either
// way.
type titledProduct struct {
	Title string `gorm:"size:255;not null;uniqueIndex:products_title_key"`
}

func (titledProduct) TableName() string { return "products" }

// History is the registered revision chain, oldest first.
func History() []Revision {
	return []Revision{
		{
			ID:   "dd272afd1e32",
			Name: "create core tables",
			Up: func(tx *gorm.DB) error {
				return tx.Migrator().CreateTable(&baseUser{}, &baseProduct{}, &baseOrder{}, &baseOrderProduct{})
			},
			Down: func(tx *gorm.DB) error {
				// One table per call, referencing tables first. A single
				// multi-value DropTable walks its arguments back to front.
				for _, table := range []any{&baseOrderProduct{}, &baseOrder{}, &baseProduct{}, &baseUser{}} {
					if err := tx.Migrator().DropTable(table); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID:     "436f06e6408d",
			Parent: "dd272afd1e32",
			Name:   "added user phone number",
			Up: func(tx *gorm.DB) error {
				return tx.Migrator().AddColumn(&phoneUser{}, "PhoneNumber")
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&phoneUser{}, "PhoneNumber")
			},
		},
		{
			ID:     "fc2f1e36c98c",
			Parent: "436f06e6408d",
			Name:   "added unique title constraint for products",
			Up: func(tx *gorm.DB) error {
				return tx.Migrator().CreateIndex(&titledProduct{}, "products_title_key")
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&titledProduct{}, "products_title_key")
			},
		},
	}
}
