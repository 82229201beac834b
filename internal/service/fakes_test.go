package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
)

// memStore хранит данные в памяти и реализует model.Store для тестов
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*model.User
	tasks       []*model.Task
	assignments []*model.Assignment
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]*model.User),
	}
}

func (s *memStore) Users() model.UserRepository             { return &memUsers{s} }
func (s *memStore) Tasks() model.TaskRepository             { return &memTasks{s} }
func (s *memStore) Assignments() model.AssignmentRepository { return &memAssignments{s} }

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	return fn(ctx, s)
}

func (s *memStore) addUser(name string, telegramID *int64) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uuid.New(), Name: name, TelegramID: telegramID, Role: model.RoleUser, IsActive: true}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addTask(title, category string, difficulty model.Difficulty) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &model.Task{ID: uuid.New(), Title: title, Description: title, Category: category, Difficulty: difficulty}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *memStore) addCompleted(userID uuid.UUID, day time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := day
	now := day.Add(12 * time.Hour)
	s.assignments = append(s.assignments, &model.Assignment{
		ID: uuid.New(), UserID: userID, TaskID: uuid.New(), AssignedDate: &d,
		Status: model.StatusCompleted, CompletedAt: &now, CreatedAt: now,
	})
}

func intPtr(v int64) *int64 { return &v }

type memUsers struct{ s *memStore }

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) find(match func(u *model.User) bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID })
}

func (r *memUsers) List(_ context.Context, filter model.UserFilter) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, u := range r.s.users {
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memUsers) ListNotifiable(ctx context.Context) ([]model.User, error) {
	active := true
	users, err := r.List(ctx, model.UserFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}
	var out []model.User
	for _, u := range users {
		if u.TelegramID != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return model.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUsers) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memTasks struct{ s *memStore }

func (r *memTasks) filtered(filter model.TaskFilter) []*model.Task {
	var out []*model.Task
	for _, t := range r.s.tasks {
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && t.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (r *memTasks) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tasks {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memTasks) List(_ context.Context, filter model.TaskFilter) ([]model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Task
	for _, t := range r.filtered(filter) {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTasks) Count(_ context.Context, filter model.TaskFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.filtered(filter)), nil
}

func (r *memTasks) GetAt(_ context.Context, filter model.TaskFilter, offset int) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tasks := r.filtered(filter)
	if offset < 0 || offset >= len(tasks) {
		return nil, model.ErrNotFound
	}
	cp := *tasks[offset]
	return &cp, nil
}

func (r *memTasks) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	cp := *task
	r.s.tasks = append(r.s.tasks, &cp)
	return nil
}

func (r *memTasks) Update(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.tasks {
		if t.ID == task.ID {
			cp := *task
			r.s.tasks[i] = &cp
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memTasks) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.tasks {
		if t.ID == id {
			r.s.tasks = append(r.s.tasks[:i], r.s.tasks[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memTasks) Categories(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range r.s.tasks {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memAssignments struct{ s *memStore }

func (r *memAssignments) withTask(a *model.Assignment) *model.Assignment {
	cp := *a
	for _, t := range r.s.tasks {
		if t.ID == a.TaskID {
			task := *t
			cp.Task = &task
		}
	}
	return &cp
}

func (r *memAssignments) first(match func(a *model.Assignment) bool) (*model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *model.Assignment
	for _, a := range r.s.assignments {
		if match(a) && (found == nil || a.CreatedAt.Before(found.CreatedAt)) {
			found = a
		}
	}
	if found == nil {
		return nil, model.ErrNotFound
	}
	return r.withTask(found), nil
}

func onDay(a *model.Assignment, day time.Time) bool {
	return a.AssignedDate != nil && model.SameDay(*a.AssignedDate, day)
}

func (r *memAssignments) GetByID(_ context.Context, id uuid.UUID) (*model.Assignment, error) {
	return r.first(func(a *model.Assignment) bool { return a.ID == id })
}

func (r *memAssignments) GetPendingForDate(_ context.Context, userID uuid.UUID, day time.Time) (*model.Assignment, error) {
	return r.first(func(a *model.Assignment) bool {
		return a.UserID == userID && onDay(a, day) && a.Status == model.StatusPending
	})
}

func (r *memAssignments) GetForDate(_ context.Context, userID uuid.UUID, day time.Time) (*model.Assignment, error) {
	return r.first(func(a *model.Assignment) bool { return a.UserID == userID && onDay(a, day) })
}

func (r *memAssignments) GetNextQueued(_ context.Context, userID uuid.UUID) (*model.Assignment, error) {
	return r.first(func(a *model.Assignment) bool {
		return a.UserID == userID && a.AssignedDate == nil && a.Status == model.StatusPending
	})
}

func (r *memAssignments) Insert(_ context.Context, assignment *model.Assignment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if assignment.AssignedDate != nil {
		for _, a := range r.s.assignments {
			if a.UserID == assignment.UserID && onDay(a, *assignment.AssignedDate) {
				return false, nil
			}
		}
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	cp := *assignment
	cp.Task = nil
	r.s.assignments = append(r.s.assignments, &cp)
	return true, nil
}

func (r *memAssignments) Update(_ context.Context, assignment *model.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.assignments {
		if a.ID == assignment.ID {
			cp := *assignment
			cp.Task = nil
			r.s.assignments[i] = &cp
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memAssignments) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, a := range r.s.assignments {
		if a.ID == id {
			r.s.assignments = append(r.s.assignments[:i], r.s.assignments[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memAssignments) ListByUser(_ context.Context, userID uuid.UUID, filter model.AssignmentFilter) ([]model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range r.s.assignments {
		if a.UserID != userID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *r.withTask(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].AssignedDate, out[j].AssignedDate
		switch {
		case di == nil && dj == nil:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case di.Equal(*dj):
			return out[i].CreatedAt.After(out[j].CreatedAt)
		default:
			return di.After(*dj)
		}
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memAssignments) CountByUser(_ context.Context, userID uuid.UUID) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total, completed int
	for _, a := range r.s.assignments {
		if a.UserID != userID {
			continue
		}
		total++
		if a.Status == model.StatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (r *memAssignments) CompletedDates(_ context.Context, userID uuid.UUID) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []time.Time
	for _, a := range r.s.assignments {
		if a.UserID == userID && a.Status == model.StatusCompleted && a.AssignedDate != nil {
			out = append(out, *a.AssignedDate)
		}
	}
	return out, nil
}

// fixedClock возвращает часы, которые можно переводить вперед
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingSender запоминает отправленные сообщения
type recordingSender struct {
	mu     sync.Mutex
	sent   map[int64][]string
	failOn map[int64]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: map[int64][]string{}, failOn: map[int64]bool{}}
}

func (s *recordingSender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[chatID] {
		return fmt.Errorf("chat %d: %w", chatID, errSendFailed)
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

var errSendFailed = errors.New("send failed")

// memJobs хранит задачи планировщика в памяти
type memJobs struct {
	mu    sync.Mutex
	jobs  []*model.ScheduledJob
	stats map[int64][]bool
}

func newMemJobs(jobs ...model.ScheduledJob) *memJobs {
	r := &memJobs{stats: map[int64][]bool{}}
	for i := range jobs {
		job := jobs[i]
		job.ID = int64(i + 1)
		r.jobs = append(r.jobs, &job)
	}
	return r
}

func (r *memJobs) GetAll(_ context.Context) ([]model.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ScheduledJob
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (r *memJobs) GetActive(ctx context.Context) ([]model.ScheduledJob, error) {
	all, _ := r.GetAll(ctx)
	var out []model.ScheduledJob
	for _, j := range all {
		if j.IsActive {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memJobs) GetByName(_ context.Context, name string) (*model.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Name == name {
			cp := *j
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memJobs) Create(_ context.Context, job *model.ScheduledJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Name == job.Name {
			return nil
		}
	}
	job.ID = int64(len(r.jobs) + 1)
	cp := *job
	r.jobs = append(r.jobs, &cp)
	return nil
}

func (r *memJobs) UpdateCron(_ context.Context, jobType model.JobType, cronExpression string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.JobType == jobType {
			j.CronExpression = cronExpression
		}
	}
	return nil
}

func (r *memJobs) UpdateRunStats(_ context.Context, id int64, success bool, execErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[id] = append(r.stats[id], success)
	for _, j := range r.jobs {
		if j.ID == id {
			j.RunCount++
			if success {
				j.SuccessCount++
			} else {
				j.ErrorCount++
				j.LastError = execErr.Error()
			}
		}
	}
	return nil
}

func (r *memJobs) cronFor(jobType model.JobType) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.JobType == jobType {
			return j.CronExpression
		}
	}
	return ""
}

// memSettings хранит настройки в памяти
type memSettings struct {
	values map[string]string
}

func (r *memSettings) Get(_ context.Context, key string) (*model.Setting, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &model.Setting{Key: key, Value: v}, nil
}

func (r *memSettings) GetAll(_ context.Context) ([]model.Setting, error) {
	var out []model.Setting
	for k, v := range r.values {
		out = append(out, model.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (r *memSettings) Set(_ context.Context, key, value, _ string) error {
	r.values[key] = value
	return nil
}

func (r *memSettings) Delete(_ context.Context, key string) error {
	delete(r.values, key)
	return nil
}
