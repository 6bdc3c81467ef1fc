package models

import "time"

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment tracks money against a booking as a status record only; there
// is no gateway integration behind it.
type Payment struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	BookingID     int64         `gorm:"not null;index:idx_payment_booking" json:"booking_id"`
	Booking       *Booking      `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking,omitempty"`
	AmountCents   int64         `gorm:"not null" json:"amount_cents"`
	Method        PaymentMethod `gorm:"size:50" json:"payment_method"`
	Status        PaymentStatus `gorm:"size:20;default:'pending';index:idx_payment_status" json:"status"`
	TransactionID string        `gorm:"size:100" json:"transaction_id,omitempty"`
	PaymentDate   time.Time     `gorm:"index:idx_payment_date" json:"payment_date"`
}
