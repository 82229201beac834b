package migrations

import (
	"context"
	"fmt"

	"dailymind/internal/model"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*model.User)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create users: %w", err)
			}

			if _, err := tx.NewCreateTable().
				Model((*model.Task)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create tasks: %w", err)
			}

			if _, err := tx.NewCreateIndex().
				Model((*model.Task)(nil)).
				Index("ix_tasks_category").
				Column("category").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create tasks category index: %w", err)
			}

			if _, err := tx.NewCreateTable().
				Model((*model.Assignment)(nil)).
				IfNotExists().
				ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
				ForeignKey(`("task_id") REFERENCES "tasks" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("create assignments: %w", err)
			}

			// Одно назначение на пользователя в день. NULL даты очереди не конфликтуют.
			if _, err := tx.NewCreateIndex().
				Model((*model.Assignment)(nil)).
				Index("ux_assignments_user_date").
				Unique().
				Column("user_id", "assigned_date").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create assignments unique index: %w", err)
			}

			if _, err := tx.NewCreateIndex().
				Model((*model.Assignment)(nil)).
				Index("ix_assignments_user_status").
				Column("user_id", "status").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("create assignments status index: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		for _, m := range []interface{}{
			(*model.Assignment)(nil),
			(*model.Task)(nil),
			(*model.User)(nil),
		} {
			if _, err := db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
