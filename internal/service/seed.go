package service

import (
	"context"
	"errors"
	"fmt"

	"dailymind/internal/config"
	"dailymind/internal/model"

	"go.uber.org/zap"
)

// Seeder заполняет пустую базу начальными данными
type Seeder struct {
	users  model.UserRepository
	tasks  model.TaskRepository
	jobs   *JobService
	auth   *AuthService
	cfg    *config.Config
	logger *zap.Logger
}

// NewSeeder создает новый заполнитель базы
func NewSeeder(users model.UserRepository, tasks model.TaskRepository, jobs *JobService, auth *AuthService, cfg *config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{
		users:  users,
		tasks:  tasks,
		jobs:   jobs,
		auth:   auth,
		cfg:    cfg,
		logger: logger,
	}
}

// Seed выполняет все шаги заполнения. Повторный запуск ничего не меняет.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.SeedAdmin(ctx); err != nil {
		return err
	}
	if err := s.SeedTasks(ctx); err != nil {
		return err
	}
	return s.SeedJobs(ctx)
}

// SeedAdmin создает администратора из конфигурации, если его еще нет
func (s *Seeder) SeedAdmin(ctx context.Context) error {
	admin := s.cfg.Admin
	if admin.Email == "" || admin.Password == "" {
		s.logger.Info("Admin credentials are not configured, skipping admin seed")
		return nil
	}

	email := NormalizeEmail(admin.Email)
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	hash, err := s.auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Name:           admin.Name,
		Email:          &email,
		HashedPassword: &hash,
		Role:           model.RoleAdmin,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Admin user created", zap.String("email", email))
	return nil
}

// SeedTasks заполняет банк заданий, если он пуст
func (s *Seeder) SeedTasks(ctx context.Context) error {
	count, err := s.tasks.Count(ctx, model.TaskFilter{})
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, task := range DefaultTasks() {
		task := task
		if err := s.tasks.Create(ctx, &task); err != nil {
			return fmt.Errorf("failed to seed task %q: %w", task.Title, err)
		}
	}

	s.logger.Info("Task bank seeded", zap.Int("count", len(DefaultTasks())))
	return nil
}

// SeedJobs создает задачи рассылок, если их нет
func (s *Seeder) SeedJobs(ctx context.Context) error {
	morning, err := config.CronSpec(s.cfg.Schedule.MorningTaskTime)
	if err != nil {
		return fmt.Errorf("invalid morning task time: %w", err)
	}
	evening, err := config.CronSpec(s.cfg.Schedule.EveningReminderTime)
	if err != nil {
		return fmt.Errorf("invalid evening reminder time: %w", err)
	}

	jobs := []model.ScheduledJob{
		{
			Name:           string(model.JobTypeMorningTasks),
			Description:    "Утренняя рассылка заданий на день",
			JobType:        model.JobTypeMorningTasks,
			CronExpression: morning,
			IsActive:       true,
		},
		{
			Name:           string(model.JobTypeEveningReminders),
			Description:    "Вечернее напоминание о невыполненном задании",
			JobType:        model.JobTypeEveningReminders,
			CronExpression: evening,
			IsActive:       true,
		},
	}

	for i := range jobs {
		if err := s.jobs.EnsureJob(ctx, &jobs[i]); err != nil {
			return fmt.Errorf("failed to seed job %s: %w", jobs[i].Name, err)
		}
	}

	// Значения из окружения или базы могли измениться с прошлого запуска.
	if err := s.jobs.UpdateScheduleTime(ctx, model.JobTypeMorningTasks, s.cfg.Schedule.MorningTaskTime); err != nil {
		return err
	}
	return s.jobs.UpdateScheduleTime(ctx, model.JobTypeEveningReminders, s.cfg.Schedule.EveningReminderTime)
}

// DefaultTasks возвращает начальный банк заданий
func DefaultTasks() []model.Task {
	return []model.Task{
		{
			Title:       "Утренняя медитация осознанности",
			Description: "Найдите тихое место. Сядьте удобно, закройте глаза. Сосредоточьтесь на своем дыхании. Наблюдайте за вдохами и выдохами в течение 10 минут. Если мысли отвлекают вас, мягко возвращайте внимание к дыханию.",
			Category:    "медитация",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Медитация благодарности",
			Description: "Вспомните 3 вещи, за которые вы благодарны сегодня. Сосредоточьтесь на чувстве благодарности. Почувствуйте, как оно наполняет вас теплом. Посвятите этому 5 минут.",
			Category:    "медитация",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Сканирование тела",
			Description: "Лягте на спину. Закройте глаза. Медленно перемещайте внимание от пальцев ног к макушке головы. Замечайте ощущения в каждой части тела. Расслабляйте напряженные зоны. 15 минут.",
			Category:    "медитация",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Title:       "Дыхание 4-7-8",
			Description: "Вдохните через нос на счет 4. Задержите дыхание на счет 7. Выдохните через рот на счет 8. Повторите 4 раза. Это упражнение помогает успокоиться и снизить стресс.",
			Category:    "дыхание",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Диафрагмальное дыхание",
			Description: "Положите одну руку на грудь, другую на живот. Дышите так, чтобы двигалась только рука на животе. Это активирует парасимпатическую нервную систему. 5 минут.",
			Category:    "дыхание",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Квадратное дыхание",
			Description: "Вдох на 4 счета. Задержка на 4 счета. Выдох на 4 счета. Задержка на 4 счета. Повторите 10 циклов. Помогает сосредоточиться и снизить тревожность.",
			Category:    "дыхание",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Title:       "Дневник благодарности",
			Description: "Запишите 5 вещей, за которые вы благодарны сегодня. Они могут быть большими или маленькими. Опишите, почему вы за них благодарны и как они повлияли на ваш день.",
			Category:    "дневник",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Анализ дня",
			Description: "Ответьте на вопросы: Что было хорошего сегодня? Что было сложным? Чему я научился? Что я могу улучшить завтра? Пишите свободно, без самоцензуры.",
			Category:    "дневник",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Title:       "Письмо себе из будущего",
			Description: "Представьте себя через 5 лет. Напишите письмо себе настоящему от лица будущего \"я\". Какие советы вы бы дали? О чем бы предупредили? Что бы похвалили?",
			Category:    "дневник",
			Difficulty:  model.DifficultyHard,
		},
		{
			Title:       "Утренние аффирмации",
			Description: "Встаньте перед зеркалом. Посмотрите себе в глаза. Произнесите вслух 3 раза: \"Я достоин любви и уважения\", \"Я справлюсь с любыми трудностями\", \"Я выбираю радость сегодня\".",
			Category:    "аффирмации",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Аффирмации для уверенности",
			Description: "Запишите 5 ваших сильных сторон. Для каждой создайте аффирмацию в настоящем времени. Например: \"Я обладаю творческим мышлением\". Повторяйте их в течение дня.",
			Category:    "аффирмации",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Title:       "10-минутная растяжка",
			Description: "Выполните мягкую растяжку всего тела. Особое внимание уделите шее, плечам, спине и ногам. Двигайтесь медленно и осознанно. Дышите глубоко и ровно.",
			Category:    "физическая_активность",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Прогулка на природе",
			Description: "Прогуляйтесь на свежем воздухе минимум 20 минут. Обращайте внимание на звуки, запахи, ощущения. Отложите телефон. Просто присутствуйте в моменте.",
			Category:    "физическая_активность",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Title:       "Колесо жизненного баланса",
			Description: "Оцените по шкале от 1 до 10 свою удовлетворенность в областях: здоровье, отношения, карьера, финансы, личностный рост, отдых, творчество, духовность. Определите 2 области для развития.",
			Category:    "самопознание",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Title:       "Исследование эмоций",
			Description: "Выберите эмоцию, которую вы часто испытываете. Опишите: Где в теле вы ее чувствуете? Какие мысли ее сопровождают? Что может быть ее причиной? Как она влияет на ваше поведение?",
			Category:    "самопознание",
			Difficulty:  model.DifficultyHard,
		},
	}
}
