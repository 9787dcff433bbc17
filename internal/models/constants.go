package models

const (
	// DateLayout формат хранения дат в БД (только дата, без времени)
	DateLayout = "2006-01-02"

	// DefaultFreeQuestions дневной лимит бесплатных вопросов
	DefaultFreeQuestions = 5

	// UnlimitedQuestions сентинел "без лимита" для премиум-пользователей
	UnlimitedQuestions = -1

	// HistoryKeep сколько сообщений истории хранится на пользователя
	HistoryKeep = 10

	// ContextWindow сколько последних сообщений передается как контекст AI
	ContextWindow = 5

	// MaxContentRunes максимальная длина сообщения истории в code points
	MaxContentRunes = 2000

	// ReferralCodeLen длина реферального кода
	ReferralCodeLen = 8

	// DefaultReferrerBonusDays бонус пригласившему
	DefaultReferrerBonusDays = 7

	// DefaultPaidPremiumDays длительность оплаченного премиума
	DefaultPaidPremiumDays = 30

	// DefaultRedisTTL время жизни кэша настроек пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	LangRU = "ru"
	LangEN = "en"
	LangKO = "ko"
)

// Languages — допустимые языки интерфейса.
var Languages = []string{LangRU, LangEN, LangKO}

func ValidLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)
