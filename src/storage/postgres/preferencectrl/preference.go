package preferencectrl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corpora/src/llm"
)

// ModelPreference is one tenant's stored default model selection.
type ModelPreference struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TenantID   int64  `gorm:"uniqueIndex;not null"`
	Provider   string `gorm:"not null"`
	ModelID    string `gorm:"not null"`
	APIBaseURL string
	APIKey     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository resolves per-tenant model preferences from PostgreSQL. It
// satisfies the generation service's PreferenceStore.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates the preference table if needed.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ModelPreference{})
}

// GetDefaultModel returns the tenant's preferred model configuration,
// or nil when no preference row exists.
func (r *Repository) GetDefaultModel(ctx context.Context, tenantID int64) (*llm.ModelConfig, error) {
	var pref ModelPreference
	result := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&pref)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get model preference: %w", result.Error)
	}

	return &llm.ModelConfig{
		Provider:   llm.ParseProvider(pref.Provider),
		ModelID:    pref.ModelID,
		APIBaseURL: pref.APIBaseURL,
		APIKey:     pref.APIKey,
	}, nil
}

// SetDefaultModel stores or replaces the tenant's preferred model.
func (r *Repository) SetDefaultModel(ctx context.Context, tenantID int64, config llm.ModelConfig) error {
	pref := ModelPreference{
		TenantID:   tenantID,
		Provider:   string(config.Provider),
		ModelID:    config.ModelID,
		APIBaseURL: config.APIBaseURL,
		APIKey:     config.APIKey,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "model_id", "api_base_url", "api_key", "updated_at"}),
	}).Create(&pref)
	if result.Error != nil {
		return fmt.Errorf("failed to set model preference: %w", result.Error)
	}
	return nil
}
