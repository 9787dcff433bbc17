package service

import (
	"context"
	"testing"

	"sportbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_FullWizard(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)

	first, err := svc.Start(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, models.StepHeight, first.Step)

	res, err := svc.HandleText(ctx, 100, models.StepHeight, "182")
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, models.StepWeight, res.Next.Step)

	res, err = svc.HandleText(ctx, 100, models.StepWeight, "85,5")
	require.NoError(t, err)
	assert.Equal(t, models.StepAge, res.Next.Step)

	res, err = svc.HandleText(ctx, 100, models.StepAge, "мне 30 лет")
	require.NoError(t, err)
	assert.Equal(t, models.StepGender, res.Next.Step)

	res, err = svc.HandleChoice(ctx, 100, models.StepGender, models.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, models.StepGoal, res.Next.Step)

	res, err = svc.HandleChoice(ctx, 100, models.StepGoal, models.GoalLoseFat)
	require.NoError(t, err)
	assert.Equal(t, models.StepLocation, res.Next.Step)

	res, err = svc.HandleChoice(ctx, 100, models.StepLocation, models.LocationHome)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Nil(t, res.Next)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.True(t, user.HasProfile())
	assert.False(t, user.ProfileStep.Valid)
	assert.Equal(t, int64(182), user.Height.Int64)
	assert.Equal(t, 85.5, user.Weight.Float64)
	assert.Equal(t, int64(30), user.Age.Int64)
	assert.Equal(t, models.GenderMale, user.Gender.String)
	assert.Equal(t, models.GoalLoseFat, user.Goal.String)
	assert.Equal(t, models.LocationHome, user.Location.String)

	// Вес анкеты стал первой точкой прогресса
	samples, err := db.GetWeightHistory(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 85.5, samples[0].Weight)

	// Активного шага больше нет
	_, ok := svc.CurrentStep(user)
	assert.False(t, ok)
}

func TestProfileService_InvalidInputKeepsStep(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)
	_, err := svc.Start(ctx, 100)
	require.NoError(t, err)

	tests := []struct {
		text string
		want error
	}{
		{"высокий", ErrInvalidHeight},
		{"99", ErrInvalidHeight},
		{"251", ErrInvalidHeight},
	}
	for _, tt := range tests {
		_, err := svc.HandleText(ctx, 100, models.StepHeight, tt.text)
		assert.ErrorIs(t, err, tt.want)
	}

	// Шаг не сдвинулся
	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	def, ok := svc.CurrentStep(user)
	require.True(t, ok)
	assert.Equal(t, models.StepHeight, def.Step)
}

func TestProfileService_ValidationBounds(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)
	_, err := svc.Start(ctx, 100)
	require.NoError(t, err)

	// Границы включительны
	_, err = svc.HandleText(ctx, 100, models.StepHeight, "100")
	require.NoError(t, err)

	_, err = svc.HandleText(ctx, 100, models.StepWeight, "300")
	require.NoError(t, err)

	_, err = svc.HandleText(ctx, 100, models.StepAge, "9")
	assert.ErrorIs(t, err, ErrInvalidAge)
	_, err = svc.HandleText(ctx, 100, models.StepAge, "101")
	assert.ErrorIs(t, err, ErrInvalidAge)
	_, err = svc.HandleText(ctx, 100, models.StepAge, "10")
	require.NoError(t, err)
}

func TestProfileService_ChoiceValidation(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)

	// Значение не из списка шага
	_, err := svc.HandleChoice(ctx, 100, models.StepGender, "unknown")
	assert.ErrorIs(t, err, ErrInvalidChoice)

	// Значение чужого шага
	_, err = svc.HandleChoice(ctx, 100, models.StepGender, models.GoalLoseFat)
	assert.ErrorIs(t, err, ErrInvalidChoice)

	// Текст на кнопочном шаге и наоборот
	_, err = svc.HandleText(ctx, 100, models.StepGender, "мужской")
	assert.ErrorIs(t, err, ErrUnexpectedStep)
	_, err = svc.HandleChoice(ctx, 100, models.StepHeight, "180")
	assert.ErrorIs(t, err, ErrUnexpectedStep)
}

func TestProfileService_RestartOverwrites(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)
	_, err := svc.Start(ctx, 100)
	require.NoError(t, err)
	_, err = svc.HandleText(ctx, 100, models.StepHeight, "170")
	require.NoError(t, err)

	// Перезапуск возвращает на первый шаг
	first, err := svc.Start(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, models.StepHeight, first.Step)

	_, err = svc.HandleText(ctx, 100, models.StepHeight, "175")
	require.NoError(t, err)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(175), user.Height.Int64)
}

func TestParseStepValue_WeightRounding(t *testing.T) {
	value, err := parseStepValue(models.StepWeight, "вешу 85.25 кг")
	require.NoError(t, err)
	assert.Equal(t, 85.3, value)

	value, err = parseStepValue(models.StepWeight, "72,0")
	require.NoError(t, err)
	assert.Equal(t, 72.0, value)
}

func TestProfileService_StaleKeyboardRejected(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewProfileService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)
	_, err := svc.Start(ctx, 100)
	require.NoError(t, err)

	// Анкета стоит на росте, а кнопка пришла с шага цели
	_, err = svc.HandleChoice(ctx, 100, models.StepGoal, models.GoalLoseFat)
	assert.ErrorIs(t, err, ErrUnexpectedStep)

	_, err = svc.HandleText(ctx, 100, models.StepHeight, "180")
	require.NoError(t, err)
	_, err = svc.HandleText(ctx, 100, models.StepWeight, "80")
	require.NoError(t, err)
	_, err = svc.HandleText(ctx, 100, models.StepAge, "30")
	require.NoError(t, err)
	_, err = svc.HandleChoice(ctx, 100, models.StepGender, models.GenderMale)
	require.NoError(t, err)

	// Повторный тап по старой клавиатуре пола: анкета уже на цели
	_, err = svc.HandleChoice(ctx, 100, models.StepGender, models.GenderFemale)
	assert.ErrorIs(t, err, ErrUnexpectedStep)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, user.Gender.String)
}
