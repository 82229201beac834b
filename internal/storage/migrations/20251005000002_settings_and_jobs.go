package migrations

import (
	"context"
	"fmt"

	"dailymind/internal/model"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewCreateTable().
			Model((*model.Setting)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*model.ScheduledJob)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create scheduled_jobs: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().Model((*model.ScheduledJob)(nil)).IfExists().Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewDropTable().Model((*model.Setting)(nil)).IfExists().Exec(ctx)
		return err
	})
}
