package models

type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Slug        string  `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`

	ThumbnailID *string `json:"thumbnailId,omitempty" gorm:"type:varchar(50)"`
	Thumbnail   *File   `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID;constraint:OnDelete:SET NULL"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CategoryID  *uint   `json:"categoryId,omitempty" gorm:"index"`
	Name        string  `json:"name" gorm:"type:varchar(255);not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`

	ThumbnailID *string `json:"thumbnailId,omitempty" gorm:"type:varchar(50)"`
	Thumbnail   *File   `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID;constraint:OnDelete:SET NULL"`

	Media    []ProductMedia   `json:"media,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ProductMedia struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"productId" gorm:"not null;index"`
	FileID    string `json:"fileId" gorm:"type:varchar(50);not null"`
	MediaType string `json:"mediaType" gorm:"type:varchar(20);default:image"` // image, video
	Position  int    `json:"position" gorm:"default:0"`

	File *File `json:"file,omitempty" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

type ProductVariant struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	ProductID uint    `json:"productId" gorm:"not null;index"`
	Price     float64 `json:"price" gorm:"type:numeric(12,2);not null"`
	Stock     int     `json:"stock" gorm:"default:0"`

	ImageID *string `json:"imageId,omitempty" gorm:"type:varchar(50)"`
	Image   *File   `json:"image,omitempty" gorm:"foreignKey:ImageID;constraint:OnDelete:SET NULL"`

	Attributes []VariantAttribute `json:"attributes,omitempty" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

// VariantAttribute is one measurable property of a variant, e.g.
// width/height/capacity with a unit.
type VariantAttribute struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	VariantID uint    `json:"variantId" gorm:"not null;index"`
	Name      string  `json:"name" gorm:"type:varchar(50);not null"`
	Value     float64 `json:"value" gorm:"type:numeric(12,4);not null"`
	Unit      string  `json:"unit" gorm:"type:varchar(20);not null"`
}
