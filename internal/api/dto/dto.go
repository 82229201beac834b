// Package dto описывает тела запросов и ответов API. Используется сервером и клиентом бота.
package dto

import (
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
)

// RegisterRequest тело запроса регистрации
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	TelegramID *int64 `json:"telegram_id,omitempty"`
}

// LoginRequest тело запроса входа
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TelegramID *int64 `json:"telegram_id,omitempty"`
}

// TelegramLoginRequest тело запроса входа бота
type TelegramLoginRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}

// RefreshRequest тело запроса обновления токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse пара токенов
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterResponse ответ на регистрацию
type RegisterResponse struct {
	User *UserResponse `json:"user"`
	TokenResponse
}

// MessageResponse простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse пользователь без чувствительных полей
type UserResponse struct {
	ID         uuid.UUID      `json:"id"`
	TelegramID *int64         `json:"telegram_id"`
	Name       string         `json:"name"`
	Email      *string        `json:"email"`
	Role       model.UserRole `json:"role"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ToUserResponse преобразует модель пользователя
func ToUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// ToUserResponses преобразует список пользователей
func ToUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *ToUserResponse(&users[i]))
	}
	return out
}

// ProfileUpdateRequest частичное обновление профиля
type ProfileUpdateRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	TelegramID *int64  `json:"telegram_id"`
}

// AdminUserUpdateRequest изменение пользователя администратором
type AdminUserUpdateRequest struct {
	IsActive *bool           `json:"is_active"`
	Role     *model.UserRole `json:"role"`
}

// TaskResponse задание из банка
type TaskResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Difficulty  model.Difficulty `json:"difficulty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ToTaskResponse преобразует модель задания
func ToTaskResponse(t *model.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Difficulty:  t.Difficulty,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTaskResponses преобразует список заданий
func ToTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, *ToTaskResponse(&tasks[i]))
	}
	return out
}

// Model возвращает задание в виде модели
func (t *TaskResponse) Model() *model.Task {
	if t == nil {
		return nil
	}
	return &model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Difficulty:  t.Difficulty,
		CreatedAt:   t.CreatedAt,
	}
}

// TaskCreateRequest создание задания
type TaskCreateRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	Difficulty  model.Difficulty `json:"difficulty"`
}

// TaskUpdateRequest частичное обновление задания
type TaskUpdateRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Category    *string           `json:"category"`
	Difficulty  *model.Difficulty `json:"difficulty"`
}

// AssignmentResponse назначение с заданием. Дата в формате YYYY-MM-DD, null для очереди.
type AssignmentResponse struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"user_id"`
	TaskID       uuid.UUID              `json:"task_id"`
	AssignedDate *string                `json:"assigned_date"`
	Status       model.AssignmentStatus `json:"status"`
	CompletedAt  *time.Time             `json:"completed_at"`
	AnswerText   *string                `json:"answer_text"`
	CreatedAt    time.Time              `json:"created_at"`
	Task         *TaskResponse          `json:"task,omitempty"`
}

// ToAssignmentResponse преобразует модель назначения
func ToAssignmentResponse(a *model.Assignment) *AssignmentResponse {
	if a == nil {
		return nil
	}
	resp := &AssignmentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		TaskID:      a.TaskID,
		Status:      a.Status,
		CompletedAt: a.CompletedAt,
		AnswerText:  a.AnswerText,
		CreatedAt:   a.CreatedAt,
		Task:        ToTaskResponse(a.Task),
	}
	if a.AssignedDate != nil {
		date := a.AssignedDate.Format(model.DateLayout)
		resp.AssignedDate = &date
	}
	return resp
}

// ToAssignmentResponses преобразует список назначений
func ToAssignmentResponses(assignments []model.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		out = append(out, *ToAssignmentResponse(&assignments[i]))
	}
	return out
}

// IsCompleted сообщает, выполнено ли назначение
func (a *AssignmentResponse) IsCompleted() bool {
	return a.Status == model.StatusCompleted
}

// CompleteTaskRequest тело запроса выполнения задания
type CompleteTaskRequest struct {
	AnswerText *string `json:"answer_text"`
}

// ScheduleAssignmentRequest привязка назначения из очереди к дате
type ScheduleAssignmentRequest struct {
	AssignedDate string `json:"assigned_date" binding:"required"`
}

// SettingUpdateRequest новое значение настройки
type SettingUpdateRequest struct {
	Value string `json:"value" binding:"required"`
}

// SettingResponse настройка
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSettingResponses преобразует список настроек
func ToSettingResponses(settings []model.Setting) []SettingResponse {
	out := make([]SettingResponse, 0, len(settings))
	for _, s := range settings {
		out = append(out, SettingResponse{
			Key:         s.Key,
			Value:       s.Value,
			Description: s.Description,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}

// JobRunResponse результат ручного запуска задачи
type JobRunResponse struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
