// Package handlers содержит HTTP обработчики API.
package handlers

import (
	"context"
	"strconv"
	"time"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/model"
	"dailymind/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService операции аутентификации
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, *service.TokenPair, error)
	Login(ctx context.Context, in service.LoginInput) (*service.TokenPair, error)
	TelegramLogin(ctx context.Context, telegramID int64) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// UserService операции над учетными записями
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch service.ProfilePatch) (*model.User, error)
	UpdateByAdmin(ctx context.Context, id uuid.UUID, patch service.AdminPatch) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentService операции над банком заданий
type ContentService interface {
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, id uuid.UUID, patch service.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

// AssignmentEngine операции над назначениями
type AssignmentEngine interface {
	Today() time.Time
	AssignDailyTask(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) (*model.Assignment, error)
	CompleteTask(ctx context.Context, userID, assignmentID uuid.UUID, answer *string) (*model.Assignment, error)
	GetTaskHistory(ctx context.Context, userID uuid.UUID, filter model.AssignmentFilter) ([]model.Assignment, error)
	GetUserProgress(ctx context.Context, userID uuid.UUID) (*model.Progress, error)
	GetNextPendingAssignment(ctx context.Context, userID uuid.UUID) (*model.Assignment, error)
	AssignPendingToDate(ctx context.Context, assignmentID uuid.UUID, date time.Time) (*model.Assignment, error)
	CreateDailyAssignment(ctx context.Context, userID, taskID uuid.UUID, date *time.Time) (*model.Assignment, error)
	DeleteAssignment(ctx context.Context, assignmentID uuid.UUID) error
}

// SettingsService операции над настройками
type SettingsService interface {
	GetAll(ctx context.Context) ([]model.Setting, error)
	Set(ctx context.Context, key, value string) error
}

// SchedulerService управление планировщиком
type SchedulerService interface {
	Status(ctx context.Context) (*service.SchedulerStatus, error)
	RunNow(ctx context.Context, name string) error
}

// Deps зависимости обработчиков
type Deps struct {
	Auth      AuthService
	Users     UserService
	Content   ContentService
	Engine    AssignmentEngine
	Settings  SettingsService
	Scheduler SchedulerService
	BotSecret string
	Logger    *zap.Logger
}

// Handlers содержит все обработчики API
type Handlers struct {
	deps   Deps
	logger *zap.Logger
}

// New создает обработчики
func New(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{deps: deps, logger: logger}
}

// Ограничения пагинации
const (
	defaultHistoryLimit = 10
	defaultAdminLimit   = 100
	maxPageLimit        = 100
)

// pathUUID разбирает UUID из параметра пути, при ошибке отвечает 400
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.InvalidInput(c, "Invalid "+name, map[string]string{name: c.Param(name)})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt читает целый параметр запроса в диапазоне [min, max]
func queryInt(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		apierrors.InvalidInput(c, "Invalid query parameter "+name, map[string]any{name: raw, "min": min, "max": max})
		return 0, false
	}
	return value, true
}

// queryBool читает логический параметр запроса
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		apierrors.InvalidInput(c, "Invalid query parameter "+name, map[string]string{name: raw})
		return nil, false
	}
	return &value, true
}

// queryStatus читает фильтр статуса назначения
func queryStatus(c *gin.Context) (model.AssignmentStatus, bool) {
	status := model.AssignmentStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		apierrors.InvalidInput(c, "Invalid status", map[string]string{"status": string(status)})
		return "", false
	}
	return status, true
}

// queryTaskFilter читает фильтр банка заданий
func queryTaskFilter(c *gin.Context) (model.TaskFilter, bool) {
	filter := model.TaskFilter{
		Category:   c.Query("category"),
		Difficulty: model.Difficulty(c.Query("difficulty")),
	}
	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		apierrors.InvalidInput(c, "Invalid difficulty", map[string]any{"allowed": model.Difficulties})
		return filter, false
	}
	return filter, true
}

// bindJSON разбирает тело запроса, при ошибке отвечает 400
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierrors.InvalidInput(c, "Invalid request body", err.Error())
		return false
	}
	return true
}
