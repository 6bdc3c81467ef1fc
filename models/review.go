package models

import "time"

// Review is one-per-user-per-property; the booking precondition is
// enforced at write time in the service layer, not by the schema.
type Review struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PropertyID int64     `gorm:"not null;index:idx_review_property;uniqueIndex:uniq_property_user_review" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
	UserID     int64     `gorm:"not null;index:idx_review_user;uniqueIndex:uniq_property_user_review" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Rating     int       `gorm:"not null;index:idx_review_rating" json:"rating" validate:"gte=1,lte=5"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
