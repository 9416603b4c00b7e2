package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is read-only to the cart; prices are in minor currency units.
type Product struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        int64           `gorm:"not null" json:"price"`
	CategoryID   string          `gorm:"type:varchar(64);index" json:"-"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"-"`
	CategorySlug string          `gorm:"-" json:"category"`
	ImageURL     string          `gorm:"type:text;column:image_url" json:"image"`
	Featured     bool            `gorm:"not null;default:false" json:"featured"`
	Customizable bool            `gorm:"not null;default:false" json:"customizable"`
	Available    bool            `gorm:"not null;default:true;index" json:"-"`
	Options      []ProductOption `gorm:"foreignKey:ProductID" json:"options,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"-"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ProductOption is one customization axis (e.g. "Size"). Name is unique per product.
type ProductOption struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID string         `gorm:"type:varchar(64);not null;index" json:"-"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Position  int            `gorm:"not null;default:0" json:"-"`
	Choices   []OptionChoice `gorm:"foreignKey:OptionID" json:"choices"`
}

// ID is the choice key stored in SelectedOptions; unique within its option only.
type OptionChoice struct {
	RowID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ID              string `gorm:"column:choice_id;type:varchar(64);not null" json:"id"`
	OptionID        int64  `gorm:"not null;index" json:"-"`
	Name            string `gorm:"type:varchar(255);not null" json:"name"`
	PriceAdjustment int64  `gorm:"not null;default:0" json:"priceAdjustment"`
	Position        int    `gorm:"not null;default:0" json:"-"`
}

// Option returns the option with the given name.
func (p Product) Option(name string) (ProductOption, bool) {
	for _, o := range p.Options {
		if o.Name == name {
			return o, true
		}
	}
	return ProductOption{}, false
}

// Choice returns the choice with the given id.
func (o ProductOption) Choice(id string) (OptionChoice, bool) {
	for _, c := range o.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return OptionChoice{}, false
}

func (OptionChoice) TableName() string { return "product_option_choices" }
