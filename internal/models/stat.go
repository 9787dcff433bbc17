package models

import "time"

// Stat — счетчики пользователя. Создается вместе с User, только растет.
type Stat struct {
	UserID            int64 `json:"user_id"`
	TotalQuestions    int64 `json:"total_questions"`
	WorkoutsCompleted int64 `json:"workouts_completed"`
	RecipesGenerated  int64 `json:"recipes_generated"`
	ReferralsCount    int64 `json:"referrals_count"`
}

// Payment — запись об успешной оплате премиума.
type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ChargeID  string    `json:"charge_id"`
	Amount    int64     `json:"amount"` // в минимальных единицах валюты
	Currency  string    `json:"currency"`
	Days      int       `json:"days"`
	CreatedAt time.Time `json:"created_at"`
}
