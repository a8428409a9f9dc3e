package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CheckoutRecord is one row of the checkout history ledger. A record is
// created open (ReturnDate nil) by Checkout and closed exactly once by the
// matching Return; it is never reopened or deleted. At most one open
// record may exist per SKU, enforced by a partial unique index.
type CheckoutRecord struct {
	BaseModel
	SKU           string     `gorm:"column:sku;size:20;not null;index" json:"sku"`
	EquipmentName string     `gorm:"type:text;not null"                json:"equipmentName"`
	User          string     `gorm:"type:text;not null;index"          json:"user"`
	CheckoutDate  time.Time  `gorm:"type:timestamp;not null;index"     json:"checkoutDate"`
	DueDate       time.Time  `gorm:"type:timestamp;not null"           json:"dueDate"`
	ReturnDate    *time.Time `gorm:"type:timestamp;index"              json:"returnDate,omitempty"`
	Notes         string     `gorm:"type:text"                         json:"notes"`
}

func (CheckoutRecord) TableName() string { return "checkout_records" }

func (r *CheckoutRecord) BeforeCreate(tx *gorm.DB) error {
	if r.SKU == "" || r.User == "" {
		return gorm.ErrInvalidValue
	}
	if r.CheckoutDate.IsZero() || r.DueDate.IsZero() {
		return gorm.ErrInvalidValue
	}
	return nil
}

// IsOpen reports whether the record still awaits a return.
func (r *CheckoutRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

// AppendReturnNotes concatenates the return outcome after the original
// checkout notes, preserving them verbatim.
func (r *CheckoutRecord) AppendReturnNotes(condition ReturnCondition, returnNotes string) string {
	return strings.TrimSpace(
		r.Notes + "\nReturn Condition: " + string(condition) + "\nReturn Notes: " + returnNotes,
	)
}
