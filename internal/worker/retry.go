package worker

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy задает экспоненциальную выдержку между повторами обращения
// к внешнему API. Jitter размазывает повторы во времени, чтобы несколько
// одновременно упавших запросов не били по API синхронно.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        float64 // доля задержки, 0..1; 0 отключает разброс
}

// NextDelay возвращает выдержку перед попыткой attempt (нумерация с 1).
// Рост ограничен MaxDelay, при ненулевом Jitter к результату добавляется
// случайная доля задержки.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	if r.Jitter > 0 {
		d += time.Duration(rand.Float64() * r.Jitter * float64(d))
	}
	return d
}
