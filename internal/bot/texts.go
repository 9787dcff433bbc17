package bot

import (
	"strings"

	"sportbot/internal/models"
)

// Тексты бота. Все пользовательские сообщения собраны здесь, хендлеры
// текст не сочиняют.
const (
	textSubscribeGate = "🔒 Подпишись на канал для доступа!"
	textSubscribeOK   = "✅ Подписка подтверждена! Нажми /start"
	textSubscribeFail = "❌ Подписка не найдена!"

	textReferralBonus = "🎁 Бонус начислен пригласившему!"

	textHistoryCleared = "✅ История очищена!"

	textLimitReached = "⚠️ *Лимит исчерпан!*\n\n💎 Premium — безлимит\n👥 Или /referral"

	textOffTopic = "🏋️ Я — фитнес-тренер и отвечаю на вопросы о:\n\n" +
		"• Тренировках и упражнениях\n" +
		"• Питании и диетах\n" +
		"• Здоровье и восстановлении\n\n" +
		"*Примеры:*\n" +
		"• Составь тренировку на ноги\n" +
		"• Как делать приседания?\n" +
		"• Что съесть после тренировки?"

	textHelp = "📖 *Как пользоваться ботом:*\n\n" +
		"*1. Создай профиль* — нажми кнопку\n\n" +
		"*2. Задавай вопросы о спорте:*\n" +
		"• Составь тренировку на ноги\n" +
		"• Как правильно делать отжимания?\n" +
		"• Что съесть после тренировки?\n\n" +
		"*3. Записывай вес:*\n`Вес 75.5`\n\n" +
		"*Команды:*\n" +
		"/start — Меню\n" +
		"/profile — Профиль\n" +
		"/settings — Настройки\n" +
		"/stats — Статистика"

	textNoProfile = "❌ *Профиль не заполнен*\n\nНажми кнопку ниже:"

	textChooseAbove = "👆 Выбери один из вариантов выше"

	textPremiumOffer = "💎 *Premium (99₽/мес)*\n\n" +
		"✅ Безлимитные вопросы\n" +
		"✅ Голосовые ответы\n" +
		"✅ Память диалога"

	textPaymentsOff = "⚠️ Платежи недоступны. /referral"

	textWorkoutDone = "✅ Тренировка выполнена! 💪"

	textGenericError = "❌ Произошла ошибка при обработке запроса. Попробуй позже."
)

// Подсказки шагов анкеты.
var stepPrompts = map[models.ProfileStep]string{
	models.StepHeight:   "📏 *Шаг 1/6: Укажи свой рост*\n\nВведи число в сантиметрах (например: 175):",
	models.StepWeight:   "⚖️ *Шаг 2/6: Укажи свой вес*\n\nВведи число в килограммах (например: 75):",
	models.StepAge:      "🎂 *Шаг 3/6: Укажи свой возраст*\n\nВведи число (например: 25):",
	models.StepGender:   "👤 *Шаг 4/6: Укажи пол*",
	models.StepGoal:     "🎯 *Шаг 5/6: Какая у тебя цель?*",
	models.StepLocation: "📍 *Шаг 6/6: Где тренируешься?*",
}

// Русские подписи для значений кнопочных шагов.
var choiceLabels = map[string]string{
	models.GenderMale:        "👨 Мужской",
	models.GenderFemale:      "👩 Женский",
	models.GoalLoseFat:       "🔥 Похудеть",
	models.GoalGainMass:      "💪 Набрать массу",
	models.GoalMaintain:      "✨ Поддержать форму",
	models.GoalBuildStrength: "🏋️ Развить силу",
	models.LocationHome:      "🏠 Дома",
	models.LocationGym:       "🏋️ В зале",
	models.LocationOutdoors:  "🌳 На улице",
}

// choiceLabel без эмодзи, для подстановки в профиль.
func choiceLabel(value string) string {
	label, ok := choiceLabels[value]
	if !ok {
		return value
	}
	if i := strings.IndexRune(label, ' '); i > 0 {
		return label[i+1:]
	}
	return label
}

// Фильтр тематики: вопрос пропускается к модели, только если похож на
// фитнес. Список исторический, менять с осторожностью.
var fitnessKeywords = []string{
	"тренировк", "упражнен", "качать", "накачать", "спорт", "фитнес",
	"присед", "отжим", "подтягив", "планка", "бег", "кардио", "силов",
	"мышц", "бицепс", "трицепс", "пресс", "спина", "ноги", "руки", "плечи",
	"грудь", "ягодиц", "растяж", "разминк", "заминк", "жим", "тяга",
	"гантел", "штанг", "турник", "брусья", "гиря", "тренажер",
	"питани", "диет", "калор", "ккал", "белок", "белки", "углевод", "жиры",
	"кбжу", "рецепт", "еда", "продукт", "витамин", "протеин", "завтрак",
	"обед", "ужин", "перекус", "похуд", "набрать", "сброс", "вес", "масса",
	"здоров", "сон", "восстановлен", "боль", "травм", "растян", "суста",
	"спин", "осанк", "гибкост", "выносливост", "сила", "энерги",
	"как делать", "как правильно", "техника", "покажи", "научи", "помоги",
	"посоветуй", "подскажи", "составь", "программ", "план",
	"похудеть", "накачаться", "подтянуться", "форма", "рельеф", "сушка",
}

var questionWords = []string{"как", "что", "какой", "сколько", "почему", "можно ли"}
var actionWords = []string{"есть", "пить", "делать", "качать", "тренир", "худе", "набира"}

func isFitnessQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range fitnessKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	hasQuestion := false
	for _, q := range questionWords {
		if strings.Contains(lower, q) {
			hasQuestion = true
			break
		}
	}
	if !hasQuestion {
		return false
	}
	for _, a := range actionWords {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}
