package model

import (
	"time"

	"github.com/google/uuid"
)

// Receipt statuses.
const (
	ReceiptPending  = "pending"  // queued, PDF not yet rendered
	ReceiptRendered = "rendered" // PDF on disk; email (if requested) not yet sent
	ReceiptSent     = "sent"     // emailed to the customer
	ReceiptError    = "error"    // retries exhausted, moved to the DLQ
)

// Receipt tracks the async rendering and delivery of one transaction's
// receipt. RetryCount / NextRetryAt drive the background retry loop.
type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Status        string    `gorm:"not null;default:'pending'"`
	PDFPath       *string
	Email         *string
	RetryCount    int `gorm:"not null;default:0"`
	NextRetryAt   *time.Time
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
