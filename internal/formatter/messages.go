package formatter

// Тексты сообщений чат-бота
const (
	WelcomeNewUser = "👋 Добро пожаловать в Психолог-бот!\n\n" +
		"Я помогу вам развивать эмоциональный интеллект и поддерживать психологическое здоровье через регулярные практики.\n\n" +
		"Для начала работы мне нужно задать вам несколько вопросов."
	WelcomeExistingUser = "С возвращением! 👋\n\nРад снова видеть вас. Готовы продолжить работу над собой?"

	AskName            = "Как я могу к вам обращаться? Введите ваше имя:"
	AskEmailFormat     = "Отлично, %s! Теперь введите ваш email для доступа к веб-версии:"
	AskPassword        = "Придумайте пароль для доступа к веб-версии.\nПароль должен содержать минимум 8 символов:"
	InvalidName        = "Имя должно содержать минимум 2 символа. Попробуйте еще раз:"
	InvalidEmail       = "Похоже, это не email. Введите адрес в формате name@example.com:"
	InvalidPassword    = "Пароль слишком короткий. Минимум 8 символов, попробуйте еще раз:"
	RegistrationFormat = "🎉 Регистрация успешно завершена!\n\n" +
		"Теперь вы можете использовать бот и веб-версию.\nEmail: %s\n\nДавайте начнем! Выберите действие:"
	RegistrationError = "😔 Произошла ошибка при регистрации.\nВозможно, этот email уже используется.\n\nПопробуйте снова: /start"

	HelpMessage = "📚 <b>Доступные команды:</b>\n\n" +
		"/start - Начать работу с ботом\n" +
		"/today - Получить задание на сегодня\n" +
		"/done - Отметить задание как выполненное\n" +
		"/progress - Посмотреть свой прогресс\n" +
		"/help - Показать эту справку\n" +
		"/cancel - Отменить текущее действие\n\n" +
		"💡 Также вы можете использовать кнопки меню для навигации."

	MainMenu             = "Выберите действие:"
	NoTaskToday          = "😊 На сегодня у вас нет активных заданий.\nОтдохните или вернитесь завтра!"
	TaskAlreadyCompleted = "✅ Это задание уже выполнено!\nОтличная работа! Ждите новое задание завтра."
	AskTaskAnswer        = "📝 Поделитесь своими ощущениями от упражнения.\n\n" +
		"Что вы почувствовали? Какие мысли возникли?\n(Или отправьте /skip чтобы пропустить)"
	TaskCompleted = "🎉 Отлично! Задание выполнено!\n\n" +
		"Вы делаете успехи в развитии эмоционального интеллекта.\nПродолжайте в том же духе!"
	TaskSkipped     = "Задание пропущено. Вы можете выполнить его позже."
	NothingToSkip   = "Сейчас нечего пропускать. Используйте /done, чтобы отметить задание."
	UnknownCommand  = "Неизвестная команда. Используйте /help для списка команд."
	UnknownCallback = "Неизвестное действие"

	ErrorGeneral     = "😔 Произошла ошибка. Попробуйте позже или обратитесь в поддержку."
	ErrorAuth        = "🔐 Ошибка авторизации.\nПожалуйста, зарегистрируйтесь заново: /start"
	ErrorNoToken     = "Вы не авторизованы. Используйте /start для регистрации."
	ErrorInactive    = "🚫 Ваша учетная запись отключена. Обратитесь к администратору."
	ErrorRateLimited = "⏳ Слишком много запросов. Подождите немного и попробуйте снова."

	Cancelled       = "Действие отменено. Чем могу помочь?"
	NothingToCancel = "Нет активных действий для отмены."
)
