package bot

import (
	"strings"
	"testing"

	"sportbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeightMessage(t *testing.T) {
	tests := []struct {
		text   string
		weight float64
		ok     bool
	}{
		{"вес 75.5", 75.5, true},
		{"Вес 80", 80, true},
		{"вес 90,2", 90.2, true},
		{"вес 29", 0, false},
		{"вес 301", 0, false},
		{"мой вес 75", 0, false},
		{"вес", 0, false},
		{"привет", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			weight, ok := parseWeightMessage(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.weight, weight)
			}
		})
	}
}

func TestIsFitnessQuestion(t *testing.T) {
	fitness := []string{
		"Составь программу тренировок",
		"сколько белка нужно есть в день?",
		"Как правильно делать приседания",
		"что есть на завтрак",
		"КАК НАКАЧАТЬ ПРЕСС",
	}
	for _, text := range fitness {
		assert.True(t, isFitnessQuestion(text), text)
	}

	offTopic := []string{
		"какая погода в Москве",
		"расскажи анекдот",
		"привет",
	}
	for _, text := range offTopic {
		assert.False(t, isFitnessQuestion(text), text)
	}
}

func TestChoiceLabel(t *testing.T) {
	assert.Equal(t, "Похудеть", choiceLabel(models.GoalLoseFat))
	assert.Equal(t, "Дома", choiceLabel(models.LocationHome))
	// Неизвестное значение возвращается как есть
	assert.Equal(t, "custom", choiceLabel("custom"))
}

func TestProfileCallbackTokenRoundTrip(t *testing.T) {
	// Кнопочные значения с подчеркиванием должны переживать разбор токена
	data := "profile_goal_" + models.GoalBuildStrength
	parts := strings.SplitN(data, "_", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "goal", parts[1])
	assert.Equal(t, models.GoalBuildStrength, parts[2])
}

func TestProfileSummary(t *testing.T) {
	user := &models.User{ID: 1, Language: models.LangRU}

	// Пустой профиль: прочерки вместо значений
	summary := profileSummary(user, false)
	assert.Contains(t, summary, "—")

	user.Height.Int64, user.Height.Valid = 182, true
	user.Weight.Float64, user.Weight.Valid = 85.5, true
	user.Goal.String, user.Goal.Valid = models.GoalLoseFat, true

	summary = profileSummary(user, true)
	assert.Contains(t, summary, "182")
	assert.Contains(t, summary, "85.5")
	assert.Contains(t, summary, "Похудеть")
}
