package storage

import (
	"context"

	"dailymind/internal/model"
	"dailymind/internal/storage/repository"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// txStore привязывает репозитории к открытой транзакции
type txStore struct {
	tx     bun.Tx
	logger *zap.Logger
}

func (s *txStore) Users() model.UserRepository {
	return repository.NewUserRepository(s.tx, s.logger)
}

func (s *txStore) Tasks() model.TaskRepository {
	return repository.NewTaskRepository(s.tx, s.logger)
}

func (s *txStore) Assignments() model.AssignmentRepository {
	return repository.NewAssignmentRepository(s.tx, s.logger)
}

// RunInTx внутри транзакции открывает savepoint
func (s *txStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	return runInTx(ctx, s.tx, s.logger, fn)
}

func runInTx(ctx context.Context, db bun.IDB, logger *zap.Logger, fn func(ctx context.Context, tx model.Store) error) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txStore{tx: tx, logger: logger})
	})
}
