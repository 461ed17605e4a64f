package models

import "time"

// Book is a catalog entry. Year and Pages are nil when unknown, never zero.
type Book struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Author      string    `json:"author" gorm:"type:varchar(255);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CoverImage  string    `json:"coverImage,omitempty" gorm:"type:varchar(1024)"`
	FileURL     string    `json:"fileUrl" gorm:"type:varchar(1024);not null"`
	ISBN        string    `json:"isbn,omitempty" gorm:"column:isbn;type:varchar(32)"`
	Publisher   string    `json:"publisher,omitempty" gorm:"type:varchar(255)"`
	Year        *int      `json:"year"`
	Pages       *int      `json:"pages"`
	CategoryID  string    `json:"categoryId" gorm:"type:varchar(36);not null;index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
