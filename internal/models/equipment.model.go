package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EquipmentStatus string

const (
	StatusInStock     EquipmentStatus = "In Stock"
	StatusCheckedOut  EquipmentStatus = "Checked Out"
	StatusMaintenance EquipmentStatus = "Under Maintenance"
	StatusLost        EquipmentStatus = "Lost/Missing"
)

// ValidStatuses lists every status the lifecycle engine accepts on intake
// and edit. Checked Out is only ever entered through Checkout.
var ValidStatuses = []EquipmentStatus{
	StatusInStock,
	StatusCheckedOut,
	StatusMaintenance,
	StatusLost,
}

func (s EquipmentStatus) IsValid() bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

type ReturnCondition string

const (
	ConditionGood             ReturnCondition = "Good"
	ConditionNeedsMaintenance ReturnCondition = "Needs Maintenance"
	ConditionDamaged          ReturnCondition = "Damaged"
)

func (c ReturnCondition) IsValid() bool {
	switch c {
	case ConditionGood, ConditionNeedsMaintenance, ConditionDamaged:
		return true
	}
	return false
}

// ResolveStatus maps a return condition to the post-return equipment
// status. Damaged items go back In Stock with the damage recorded in the
// ledger notes, not a distinct status.
func (c ReturnCondition) ResolveStatus() EquipmentStatus {
	if c == ConditionNeedsMaintenance {
		return StatusMaintenance
	}
	return StatusInStock
}

// Equipment is one physical lab item, keyed by its immutable SKU.
// The checkout field group (CheckedOutBy/CheckoutDate/DueDate) is
// all-or-nothing: populated iff Status is Checked Out.
type Equipment struct {
	SKU           string           `gorm:"primaryKey;size:20"                    json:"sku"`
	Name          string           `gorm:"type:text;not null"                    json:"name"`
	Description   string           `gorm:"type:text"                             json:"description"`
	Category      string           `gorm:"type:text;index"                       json:"category"`
	Manufacturer  string           `gorm:"type:text"                             json:"manufacturer"`
	Model         string           `gorm:"type:text"                             json:"model"`
	SerialNumber  string           `gorm:"type:text"                             json:"serialNumber"`
	PurchaseDate  *datatypes.Date  `json:"purchaseDate,omitempty"`
	PurchasePrice *decimal.Decimal `gorm:"type:decimal(10,2)"                    json:"purchasePrice,omitempty"`
	Status        EquipmentStatus  `gorm:"type:text;not null;index"              json:"status"`
	CheckedOutBy  *string          `gorm:"type:text;index"                       json:"checkedOutBy,omitempty"`
	CheckoutDate  *time.Time       `gorm:"type:timestamp"                        json:"checkoutDate,omitempty"`
	DueDate       *time.Time       `gorm:"type:timestamp"                        json:"dueDate,omitempty"`
	Location      string           `gorm:"type:text"                             json:"location"`
	ImagePath     *string          `gorm:"type:text"                             json:"imagePath,omitempty"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"                        json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime"                        json:"updatedAt"`

	Holder *User `gorm:"foreignKey:CheckedOutBy;references:Username" json:"holder,omitempty"`
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.SKU == "" || e.Name == "" {
		return gorm.ErrInvalidValue
	}
	if e.Status == "" {
		e.Status = StatusInStock
	}
	if !e.Status.IsValid() {
		return gorm.ErrInvalidValue
	}
	return nil
}

// IsCheckedOut reports whether the checkout field group should be
// populated for the current status.
func (e *Equipment) IsCheckedOut() bool {
	return e.Status == StatusCheckedOut
}

// MarkCheckedOut populates the checkout field group as one unit.
func (e *Equipment) MarkCheckedOut(user string, checkoutDate, dueDate time.Time) {
	e.Status = StatusCheckedOut
	e.CheckedOutBy = &user
	e.CheckoutDate = &checkoutDate
	e.DueDate = &dueDate
}

// ClearCheckout clears the checkout field group as one unit and moves the
// item to the given status.
func (e *Equipment) ClearCheckout(newStatus EquipmentStatus) {
	e.Status = newStatus
	e.CheckedOutBy = nil
	e.CheckoutDate = nil
	e.DueDate = nil
}
