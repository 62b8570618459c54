package ratelimit

import "time"

// Hit is one counted request in the shared rate limit window.
type Hit struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Key   string    `gorm:"type:varchar(255);not null;index:idx_rate_limit_hits_key_at,priority:1"`
	HitAt time.Time `gorm:"not null;index:idx_rate_limit_hits_key_at,priority:2"`
}

func (Hit) TableName() string {
	return "rate_limit_hits"
}
