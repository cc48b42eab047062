package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierStatus enum constants — suppliers pass a single admin-tier approval
// stage before they may be quoted against.
const (
	SupplierStatusPending  = "PENDING"
	SupplierStatusApproved = "APPROVED"
	SupplierStatusRejected = "REJECTED"
)

// Supplier represents an external party that responds to RFQs with quotations
type Supplier struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxCode       string         `gorm:"type:varchar(50)" json:"tax_code"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	BankAccount   string         `gorm:"type:varchar(100)" json:"bank_account"`
	Status        string         `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RegisteredBy  *uuid.UUID     `gorm:"type:uuid;index" json:"registered_by"`
	Registrar     *Account       `gorm:"foreignKey:RegisteredBy" json:"registrar,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
