package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"sportbot/internal/config"
	"sportbot/internal/domain"
	"sportbot/internal/events"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

// Ошибки валидации шагов анкеты. Презентационный слой переводит их в
// подсказки пользователю, шаг при этом не сдвигается.
var (
	ErrInvalidHeight  = errors.New("height out of range")
	ErrInvalidWeight  = errors.New("weight out of range")
	ErrInvalidAge     = errors.New("age out of range")
	ErrInvalidChoice  = errors.New("choice not allowed for step")
	ErrUnexpectedStep = errors.New("unexpected wizard step")
)

type StepKind int

const (
	StepKindText StepKind = iota
	StepKindChoice
)

// StepDef описывает один шаг анкеты: поле профиля, способ ввода и допустимые
// варианты для кнопочных шагов.
type StepDef struct {
	Step    models.ProfileStep
	Kind    StepKind
	Field   string
	Choices []string
}

// stepDefs — единственный источник порядка шагов. Порядок важен.
var stepDefs = []StepDef{
	{Step: models.StepHeight, Kind: StepKindText, Field: "height"},
	{Step: models.StepWeight, Kind: StepKindText, Field: "weight"},
	{Step: models.StepAge, Kind: StepKindText, Field: "age"},
	{Step: models.StepGender, Kind: StepKindChoice, Field: "gender", Choices: models.GenderChoices},
	{Step: models.StepGoal, Kind: StepKindChoice, Field: "goal", Choices: models.GoalChoices},
	{Step: models.StepLocation, Kind: StepKindChoice, Field: "location", Choices: models.LocationChoices},
}

func findStep(step models.ProfileStep) (StepDef, int, bool) {
	for i, def := range stepDefs {
		if def.Step == step {
			return def, i, true
		}
	}
	return StepDef{}, 0, false
}

func nextAfter(index int) (StepDef, bool) {
	if index+1 < len(stepDefs) {
		return stepDefs[index+1], true
	}
	return StepDef{}, false
}

var (
	intPattern   = regexp.MustCompile(`\d+`)
	floatPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ProfileService ведет пользователя по шагам анкеты. Шаг хранится в профиле,
// поэтому анкета переживает рестарт процесса.
type ProfileService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewProfileService(store domain.Store, config *config.Config, logger *zerolog.Logger, publisher domain.EventPublisher) *ProfileService {
	return &ProfileService{
		store:  store,
		config: config,
		logger: logger,
		events: publisher,
	}
}

// Start переводит пользователя на первый шаг анкеты. Повторный запуск
// начинает заново, старые значения перезаписываются по ходу.
func (s *ProfileService) Start(ctx context.Context, userID int64) (StepDef, error) {
	first := stepDefs[0]
	if err := s.store.SetProfileStep(ctx, userID, nullStep(first.Step)); err != nil {
		return StepDef{}, err
	}
	return first, nil
}

// CurrentStep возвращает активный шаг анкеты пользователя, если он есть.
func (s *ProfileService) CurrentStep(user *models.User) (StepDef, bool) {
	if user == nil || !user.ProfileStep.Valid {
		return StepDef{}, false
	}
	def, _, ok := findStep(models.ProfileStep(user.ProfileStep.String))
	return def, ok
}

// AdvanceResult — итог обработки ввода на шаге анкеты.
type AdvanceResult struct {
	Saved StepDef  // шаг, значение которого записано
	Next  *StepDef // следующий шаг, nil если анкета закончена
	Done  bool
}

// HandleText обрабатывает свободный ввод текущего шага. Нечисловой или
// выходящий за границы ввод возвращает ошибку валидации, шаг не двигается.
func (s *ProfileService) HandleText(ctx context.Context, userID int64, step models.ProfileStep, text string) (AdvanceResult, error) {
	def, index, ok := findStep(step)
	if !ok || def.Kind != StepKindText {
		return AdvanceResult{}, ErrUnexpectedStep
	}

	value, err := parseStepValue(def.Step, text)
	if err != nil {
		return AdvanceResult{}, err
	}

	return s.save(ctx, userID, def, index, value)
}

// HandleChoice обрабатывает нажатие кнопки шага с выбором. Значение не из
// списка шага или шаг не по порядку отклоняются. Кнопка несет шаг в токене,
// поэтому устаревшая клавиатура сверяется с актуальным шагом пользователя.
func (s *ProfileService) HandleChoice(ctx context.Context, userID int64, step models.ProfileStep, value string) (AdvanceResult, error) {
	def, index, ok := findStep(step)
	if !ok || def.Kind != StepKindChoice {
		return AdvanceResult{}, ErrUnexpectedStep
	}

	allowed := false
	for _, choice := range def.Choices {
		if choice == value {
			allowed = true
			break
		}
	}
	if !allowed {
		return AdvanceResult{}, ErrInvalidChoice
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if !user.ProfileStep.Valid || user.ProfileStep.String != string(step) {
		return AdvanceResult{}, ErrUnexpectedStep
	}

	return s.save(ctx, userID, def, index, value)
}

func (s *ProfileService) save(ctx context.Context, userID int64, def StepDef, index int, value interface{}) (AdvanceResult, error) {
	result := AdvanceResult{Saved: def}

	next, hasNext := nextAfter(index)
	var nextNull sql.NullString
	if hasNext {
		nextNull = nullStep(next.Step)
		result.Next = &next
	} else {
		result.Done = true
	}

	if err := s.store.SetProfileFieldAndStep(ctx, userID, def.Field, value, nextNull); err != nil {
		return AdvanceResult{}, err
	}

	// Вес из анкеты попадает и в историю прогресса: это первая точка графика.
	if def.Step == models.StepWeight {
		if weight, ok := value.(float64); ok {
			if err := s.store.AddWeightRecord(ctx, userID, weight); err != nil {
				s.logger.Warn().Err(err).Int64("user_id", userID).
					Msg("Не удалось записать вес анкеты в прогресс")
			}
		}
	}

	if result.Done {
		_ = s.events.PublishJSON(events.EventProfileCompleted, map[string]int64{"user_id": userID})
	}
	return result, nil
}

// parseStepValue извлекает число из свободного текста: "рост 182 см"
// принимается наравне с "182".
func parseStepValue(step models.ProfileStep, text string) (interface{}, error) {
	text = strings.TrimSpace(text)

	switch step {
	case models.StepHeight:
		raw := intPattern.FindString(text)
		if raw == "" {
			return nil, ErrInvalidHeight
		}
		height, err := strconv.Atoi(raw)
		if err != nil || height < models.HeightMin || height > models.HeightMax {
			return nil, ErrInvalidHeight
		}
		return int64(height), nil

	case models.StepWeight:
		raw := floatPattern.FindString(text)
		if raw == "" {
			return nil, ErrInvalidWeight
		}
		weight, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || weight < models.WeightMin || weight > models.WeightMax {
			return nil, ErrInvalidWeight
		}
		return math.Round(weight*10) / 10, nil

	case models.StepAge:
		raw := intPattern.FindString(text)
		if raw == "" {
			return nil, ErrInvalidAge
		}
		age, err := strconv.Atoi(raw)
		if err != nil || age < models.AgeMin || age > models.AgeMax {
			return nil, ErrInvalidAge
		}
		return int64(age), nil
	}

	return nil, ErrUnexpectedStep
}

func nullStep(step models.ProfileStep) sql.NullString {
	return sql.NullString{String: string(step), Valid: true}
}
