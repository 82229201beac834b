package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Difficulty представляет сложность упражнения
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties перечисляет допустимые значения сложности
var Difficulties = []string{string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard)}

// IsValid проверяет валидность сложности
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление сложности
func (d Difficulty) String() string {
	return string(d)
}

// Task представляет шаблон упражнения из банка заданий
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description,notnull" json:"description"`
	Category    string     `bun:"category,notnull" json:"category"`
	Difficulty  Difficulty `bun:"difficulty,notnull,default:'medium'" json:"difficulty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Validate проверяет валидность задания
func (t *Task) Validate() error {
	var errs ValidationErrors

	errs.Add(ValidateLength("title", t.Title, 1, 200))
	errs.Add(ValidateRequired("description", t.Description))
	errs.Add(ValidateLength("category", t.Category, 1, 50))
	errs.Add(ValidateEnum("difficulty", string(t.Difficulty), Difficulties))

	return errs.Err()
}

// TaskFilter параметры выборки заданий
type TaskFilter struct {
	Category   string
	Difficulty Difficulty
	Limit      int
	Offset     int
}
