// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: Setting, SettingRepository
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Setting представляет настройку, изменяемую во время работы
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Key         string    `bun:"key,unique,notnull" json:"key"`
	Value       string    `bun:"value,notnull" json:"value"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// SettingRepository определяет интерфейс для работы с настройками
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	GetAll(ctx context.Context) ([]Setting, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
}
