package database

import "errors"

// Ожидаемые негативные исходы отличимы от ошибок хранилища: сервисы
// превращают их в булев результат, всё остальное всплывает как сбой.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCodeNotFound    = errors.New("referral code not found")
	ErrSelfReferral    = errors.New("self referral is not allowed")
	ErrAlreadyReferred = errors.New("referral already used by this user")
	ErrInvalidDays     = errors.New("premium days must be positive")
	ErrCodeCollision   = errors.New("failed to generate unique referral code")
	ErrWorkoutNotFound = errors.New("workout not found")
)
