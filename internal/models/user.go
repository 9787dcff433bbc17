package models

import (
	"database/sql"
	"time"
)

// User — одна строка на участника чата. Ключ — Telegram ID.
type User struct {
	ID            int64           // Telegram ID, первичный ключ
	Username      string          // Юзернейм Telegram
	IsPremium     bool            // Кэшированный флаг; источник истины — PremiumUntil
	PremiumUntil  sql.NullString  // Дата окончания премиума, YYYY-MM-DD
	FreeQuestions int             // Остаток бесплатных вопросов на сегодня
	LastReset     string          // Дата последнего сброса лимита, YYYY-MM-DD
	ReferralCode  string          // Уникальный реферальный код
	ReferredBy    sql.NullInt64   // Кто пригласил
	ReferralUsed  bool            // Код уже погашен этим пользователем
	Height        sql.NullInt64   // Рост, см
	Weight        sql.NullFloat64 // Вес, кг
	Age           sql.NullInt64   // Возраст, лет
	Gender        sql.NullString
	Goal          sql.NullString
	Location      sql.NullString
	Equipment     sql.NullString
	VoiceMode     bool   // Голосовые ответы
	Language      string // ru, en, ko
	ProfileStep   sql.NullString
	CreatedAt     time.Time
}

// HasProfile считает профиль заполненным, когда указаны рост, вес и цель.
// Возраст, пол и место тренировок могут остаться пустыми.
func (u *User) HasProfile() bool {
	return u.Height.Valid && u.Weight.Valid && u.Goal.Valid
}

// PremiumUntilDate parses PremiumUntil; the bool is false when the date is
// absent or unparseable (treated as "not premium" by callers).
func (u *User) PremiumUntilDate() (time.Time, bool) {
	if !u.PremiumUntil.Valid || u.PremiumUntil.String == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, u.PremiumUntil.String)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Settings — презентационные предпочтения пользователя, кэшируются отдельно.
type Settings struct {
	UserID    int64  `json:"user_id"`
	VoiceMode bool   `json:"voice_mode"`
	Language  string `json:"language"`
}
