package repository

import (
	"context"

	"dailymind/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SettingRepository реализует интерфейс model.SettingRepository
type SettingRepository struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewSettingRepository создает новый репозиторий настроек
func NewSettingRepository(db bun.IDB, logger *zap.Logger) model.SettingRepository {
	return &SettingRepository{
		db:     db,
		logger: logger,
	}
}

// Get возвращает настройку по ключу
func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting := new(model.Setting)

	err := r.db.NewSelect().
		Model(setting).
		Where("key = ?", key).
		Scan(ctx)

	if err != nil {
		return nil, wrapError("failed to get setting", err)
	}

	return setting, nil
}

// GetAll возвращает все настройки
func (r *SettingRepository) GetAll(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting

	err := r.db.NewSelect().
		Model(&settings).
		Order("key ASC").
		Scan(ctx)

	if err != nil {
		return nil, wrapError("failed to query settings", err)
	}

	return settings, nil
}

// Set устанавливает значение настройки
func (r *SettingRepository) Set(ctx context.Context, key, value, description string) error {
	setting := &model.Setting{
		Key:         key,
		Value:       value,
		Description: description,
	}

	_, err := r.db.NewInsert().
		Model(setting).
		ExcludeColumn("id", "created_at", "updated_at").
		On("CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description, updated_at = NOW()").
		Returning("NULL").
		Exec(ctx)

	if err != nil {
		return wrapError("failed to set setting", err)
	}

	r.logger.Info("Setting updated", zap.String("key", key), zap.String("value", value))
	return nil
}

// Delete удаляет настройку
func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.NewDelete().
		Model((*model.Setting)(nil)).
		Where("key = ?", key).
		Exec(ctx)

	if err != nil {
		return wrapError("failed to delete setting", err)
	}

	return expectAffected("failed to delete setting", res)
}
