package model

import (
	"time"

	"github.com/google/uuid"
)

type RateLimitLog struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId         uuid.UUID `gorm:"type:uuid;not null;index"`
	SubscriptionPlan string    `gorm:"type:varchar(64)"`
	Operation        string    `gorm:"type:varchar(64);not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

func (RateLimitLog) TableName() string {
	return "rate_limit_logs"
}
