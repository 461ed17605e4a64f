package models

import "time"

// Borrow records a student holding a book. A nil ReturnDate marks it active.
type Borrow struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"userId" gorm:"type:varchar(36);not null;index"`
	User       *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BookID     string     `json:"bookId" gorm:"type:varchar(36);not null;index"`
	Book       *Book      `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BorrowDate time.Time  `json:"borrowDate" gorm:"not null"`
	ReturnDate *time.Time `json:"returnDate"`
}

// Active reports whether the book has not been returned yet.
func (b *Borrow) Active() bool {
	return b.ReturnDate == nil
}

// Read records a user opening a book.
type Read struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID   string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BookID   string    `json:"bookId" gorm:"type:varchar(36);not null;index"`
	Book     *Book     `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReadDate time.Time `json:"readDate" gorm:"not null;index"`
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Category{}, &Book{}, &Borrow{}, &Read{}}
}
