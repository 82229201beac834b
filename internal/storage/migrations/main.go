// Package migrations содержит миграции схемы базы данных.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations набор миграций, применяемых при старте сервера
var Migrations = migrate.NewMigrations()
