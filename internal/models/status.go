package models

// EntitlementStatus — read-only проекция статуса пользователя для
// презентационного слоя. Ядро никогда не форматирует её в текст.
type EntitlementStatus struct {
	IsPremium              bool   `json:"is_premium"`
	DaysLeft               int    `json:"days_left"`
	Until                  string `json:"until,omitempty"` // YYYY-MM-DD
	FreeQuestionsRemaining int    `json:"free_questions_remaining"`
}

// QuotaCheck — результат проверки лимита. Remaining == UnlimitedQuestions
// для премиум-пользователей.
type QuotaCheck struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// UserStats — сводка для /stats: статус плюс счетчики.
type UserStats struct {
	FreeQuestions     int   `json:"free_questions"`
	IsPremium         bool  `json:"is_premium"`
	TotalQuestions    int64 `json:"total_questions"`
	WorkoutsCompleted int64 `json:"workouts_completed"`
	RecipesGenerated  int64 `json:"recipes_generated"`
	ReferralsCount    int64 `json:"referrals_count"`
}
