package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                 int64                                 `gorm:"primaryKey" json:"id"`
	Name               string                                `gorm:"size:100;not null" json:"name"`
	Email              string                                `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone              *string                               `gorm:"size:16" json:"phone,omitempty"`
	PasswordHash       string                                `gorm:"size:255;not null" json:"-"`
	Gender             Gender                                `gorm:"size:10;not null" json:"gender"`
	Role               Role                                  `gorm:"size:10;not null;default:user" json:"role"`
	SubscriptionTier   *Tier                                 `gorm:"size:10" json:"subscription_tier,omitempty"`
	SubscriptionExpiry *time.Time                            `json:"subscription_expiry,omitempty"`
	ReferralCode       string                                `gorm:"size:10;uniqueIndex" json:"referral_code"`
	ReferredBy         *string                               `gorm:"size:10" json:"referred_by,omitempty"`
	IsActive           bool                                  `gorm:"not null;default:true" json:"is_active"`
	ApprovalStatus     ApprovalStatus                        `gorm:"size:10;not null;default:pending" json:"approval_status"`
	RejectionReason    *string                               `gorm:"type:text" json:"rejection_reason,omitempty"`
	OrientationStatus  datatypes.JSONType[OrientationStatus] `json:"orientation_status"`
	CreatedAt          time.Time                             `json:"created_at"`
	UpdatedAt          time.Time                             `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Orientation unwraps the stored orientation state.
func (u *User) Orientation() OrientationStatus {
	return u.OrientationStatus.Data()
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
