// Package formatter форматирует сообщения для Telegram в HTML.
package formatter

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"dailymind/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Russian)

// Escape экранирует текст для HTML разметки Telegram
func Escape(text string) string {
	return html.EscapeString(text)
}

// CategoryLabel превращает категорию вида "физическая_активность" в "Физическая активность"
func CategoryLabel(category string) string {
	label := strings.TrimSpace(strings.ReplaceAll(category, "_", " "))
	if label == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(label)
	return upper.String(string(first)) + label[size:]
}

// DifficultyEmoji возвращает значок сложности
func DifficultyEmoji(d model.Difficulty) string {
	switch d {
	case model.DifficultyEasy:
		return "🟢"
	case model.DifficultyMedium:
		return "🟡"
	case model.DifficultyHard:
		return "🔴"
	default:
		return "⚪️"
	}
}

// DifficultyLabel возвращает название сложности на русском
func DifficultyLabel(d model.Difficulty) string {
	switch d {
	case model.DifficultyEasy:
		return "легкая"
	case model.DifficultyMedium:
		return "средняя"
	case model.DifficultyHard:
		return "сложная"
	default:
		return string(d)
	}
}

// FormatTask форматирует карточку задания
func FormatTask(task *model.Task) string {
	if task == nil {
		return NoTaskToday
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>%s</b>\n\n", Escape(task.Title))
	if task.Category != "" {
		fmt.Fprintf(&b, "🏷 Категория: %s\n", Escape(CategoryLabel(task.Category)))
	}
	if task.Difficulty != "" {
		fmt.Fprintf(&b, "%s Сложность: %s\n", DifficultyEmoji(task.Difficulty), DifficultyLabel(task.Difficulty))
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", Escape(task.Description))
	}
	return b.String()
}

// FormatProgress форматирует статистику пользователя
func FormatProgress(p *model.Progress) string {
	var b strings.Builder
	b.WriteString("📊 <b>Ваша статистика</b>\n\n")
	fmt.Fprintf(&b, "✅ Выполнено заданий: %d из %d\n", p.CompletedTasks, p.TotalTasks)
	fmt.Fprintf(&b, "📈 Процент выполнения: %.1f%%\n", p.CompletionRate)
	fmt.Fprintf(&b, "🔥 Текущая серия: %d %s\n", p.StreakDays, DaysWord(p.StreakDays))
	fmt.Fprintf(&b, "🏆 Рекорд серии: %d %s\n\n", p.LongestStreak, DaysWord(p.LongestStreak))

	switch {
	case p.StreakDays >= 7:
		b.WriteString("🌟 Отличная работа! Вы держите стабильную серию!")
	case p.StreakDays >= 3:
		b.WriteString("💪 Хорошая работа! Продолжайте в том же духе!")
	default:
		b.WriteString("📅 Выполняйте задания каждый день для серии!")
	}
	return b.String()
}

// DaysWord склоняет слово "день" по числу
func DaysWord(n int) string {
	if n < 0 {
		n = -n
	}
	switch {
	case n%100 >= 11 && n%100 <= 14:
		return "дней"
	case n%10 == 1:
		return "день"
	case n%10 >= 2 && n%10 <= 4:
		return "дня"
	default:
		return "дней"
	}
}

// FormatMorningTask утреннее сообщение с заданием на день
func FormatMorningTask(name string, task *model.Task) string {
	var title, description string
	if task != nil {
		title, description = task.Title, task.Description
	}
	return fmt.Sprintf("☀️ Доброе утро, %s!\n\n"+
		"📋 <b>Ваше задание на сегодня:</b>\n%s\n\n"+
		"📝 <b>Описание:</b>\n%s\n\n"+
		"Используйте команду /today чтобы посмотреть задание и выполнить его.",
		Escape(name), Escape(title), Escape(description))
}

// FormatEveningReminder вечернее напоминание о невыполненном задании
func FormatEveningReminder(task *model.Task) string {
	var title string
	if task != nil {
		title = task.Title
	}
	return fmt.Sprintf("🔔 <b>Напоминание</b>\n\n"+
		"У вас ещё есть время выполнить сегодняшнее задание:\n📋 %s\n\n"+
		"Не упустите возможность продолжить свой прогресс!\n\n"+
		"Используйте команду /today для выполнения задания.",
		Escape(title))
}

// FormatAskEmail просит email после ввода имени
func FormatAskEmail(name string) string {
	return fmt.Sprintf(AskEmailFormat, Escape(name))
}

// FormatRegistrationSuccess сообщение об успешной регистрации
func FormatRegistrationSuccess(email string) string {
	return fmt.Sprintf(RegistrationFormat, Escape(email))
}
