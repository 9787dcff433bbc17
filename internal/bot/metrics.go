package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CommandsProcessed    *prometheus.CounterVec
	QuestionsAsked       *prometheus.CounterVec
	QuotaRejections      prometheus.Counter
	AIRequestDuration    prometheus.Histogram
	PremiumActivations   *prometheus.CounterVec
	ReferralsRedeemed    prometheus.Counter
	WorkoutsGenerated    prometheus.Counter
	RecipesGenerated     prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UsersTotal           prometheus.Gauge
	UpdateProcessingTime prometheus.Histogram
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of processed messages",
		}),

		CommandsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_commands_processed_total",
			Help: "Total number of processed commands",
		}, []string{"command"}),

		QuestionsAsked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_questions_asked_total",
			Help: "Total number of AI questions asked",
		}, []string{"tier"}),

		QuotaRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_quota_rejections_total",
			Help: "Total number of questions rejected by daily quota",
		}),

		AIRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_ai_request_duration_seconds",
			Help:    "Time spent waiting for AI completions",
			Buckets: prometheus.DefBuckets,
		}),

		PremiumActivations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_premium_activations_total",
			Help: "Total number of premium activations",
		}, []string{"source"}),

		ReferralsRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_referrals_redeemed_total",
			Help: "Total number of redeemed referral codes",
		}),

		WorkoutsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_workouts_generated_total",
			Help: "Total number of generated workouts",
		}),

		RecipesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_recipes_generated_total",
			Help: "Total number of generated recipes",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of errors",
		}),

		UsersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "telegram_bot_users_total",
			Help: "Total number of known users",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
