package models

import "time"

// Workout — сгенерированная тренировка пользователя.
type Workout struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Date      time.Time `json:"date"`
}

// ProgressSample — запись веса. Только добавляется, никогда не изменяется.
type ProgressSample struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}
