package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business is a venue that collects feedback through its QR code.
// The industry drives which review aspects the validator requires.
type Business struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Industry  string         `gorm:"size:100;index" json:"industry"`
	Location  string         `gorm:"size:500" json:"location"`
	OwnerID   uint           `gorm:"index" json:"owner_id"`
	LogoURL   string         `gorm:"size:500" json:"logo_url"`
	QRToken   string         `gorm:"uniqueIndex;size:36" json:"qr_token"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the scan token embedded in the business QR code.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.QRToken == "" {
		b.QRToken = uuid.NewString()
	}
	return nil
}

// User is identified by email; created lazily on first approved review.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:50;default:client" json:"role"` // owner, client
	Name         string    `gorm:"size:200" json:"name"`
	PhoneNumber  string    `gorm:"size:50" json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Review is append-only: created exactly once at submission time, never
// updated or deleted.
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BusinessID  uint      `gorm:"index;not null" json:"business_id"`
	Business    *Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Rating      int       `gorm:"not null" json:"rating"` // 1-5 stars
	ReceiptText string    `gorm:"type:text" json:"receipt_text"`
	Sentiment   string    `gorm:"size:20" json:"sentiment"`
	Topics      string    `gorm:"size:255" json:"topics"` // comma-joined
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// Bonus is a loyalty reward an owner offers for approved reviews.
type Bonus struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BusinessID  uint           `gorm:"index;not null" json:"business_id"`
	Description string         `gorm:"size:500;not null" json:"description"`
	Type        string         `gorm:"size:50" json:"type"` // discount, gift, points
	Value       string         `gorm:"size:100" json:"value"`
	Conditions  string         `gorm:"size:500" json:"conditions"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserBonus records that a user claimed a bonus. The composite unique index
// backs the at-most-one-claim-per-user-per-bonus invariant under concurrent
// claims; BonusService performs the check-then-insert on top of it.
type UserBonus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_bonus;not null" json:"user_id"`
	BonusID   uint      `gorm:"uniqueIndex:idx_user_bonus;not null" json:"bonus_id"`
	Bonus     *Bonus    `gorm:"foreignKey:BonusID" json:"bonus,omitempty"`
	Status    string    `gorm:"size:50;default:claimed" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LLMConfig is a language-model endpoint stored in the database. The
// validator picks the default active row, falling back to the YAML config.
type LLMConfig struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Provider    string         `gorm:"size:50;default:openai" json:"provider"` // openai, anthropic, ollama, gemini
	BaseURL     string         `gorm:"size:500" json:"base_url"`
	APIKey      string         `gorm:"size:500" json:"-"`
	Model       string         `gorm:"size:100" json:"model"`
	MaxTokens   int            `gorm:"default:1024" json:"max_tokens"`
	Temperature float64        `gorm:"default:0.3" json:"temperature"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MaskAPIKey returns a masked API key for display.
func (l *LLMConfig) MaskAPIKey() string {
	if len(l.APIKey) <= 8 {
		return "****"
	}
	return l.APIKey[:4] + "****" + l.APIKey[len(l.APIKey)-4:]
}

// SystemConfig is runtime-tunable configuration stored in the database.
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:config_key;uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:20;default:string" json:"type"` // string, int, bool
	Group     string    `gorm:"column:config_group;size:50;index" json:"group"`
	Label     string    `gorm:"size:200" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemLog is an audit record of notable pipeline events.
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `json:"user_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (Business) TableName() string     { return "businesses" }
func (User) TableName() string         { return "users" }
func (Review) TableName() string       { return "reviews" }
func (Bonus) TableName() string        { return "bonuses" }
func (UserBonus) TableName() string    { return "user_bonuses" }
func (LLMConfig) TableName() string    { return "llm_configs" }
func (SystemConfig) TableName() string { return "system_configs" }
func (SystemLog) TableName() string    { return "system_logs" }
