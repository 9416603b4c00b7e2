package model

type Category struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	ImageURL string `gorm:"type:text;column:image_url" json:"image,omitempty"`
}
