package models

// ProfileStep — шаг пошагового заполнения профиля. Последовательность
// фиксированная и проходится строго по порядку.
type ProfileStep string

const (
	StepHeight   ProfileStep = "height"
	StepWeight   ProfileStep = "weight"
	StepAge      ProfileStep = "age"
	StepGender   ProfileStep = "gender"
	StepGoal     ProfileStep = "goal"
	StepLocation ProfileStep = "location"
)

// StepOrder — полный порядок шагов онбординга.
var StepOrder = []ProfileStep{
	StepHeight, StepWeight, StepAge, StepGender, StepGoal, StepLocation,
}

const (
	GenderMale   = "male"
	GenderFemale = "female"

	GoalLoseFat       = "lose_fat"
	GoalGainMass      = "gain_mass"
	GoalMaintain      = "maintain"
	GoalBuildStrength = "build_strength"

	LocationHome     = "home"
	LocationGym      = "gym"
	LocationOutdoors = "outdoors"
)

var (
	GenderChoices   = []string{GenderMale, GenderFemale}
	GoalChoices     = []string{GoalLoseFat, GoalGainMass, GoalMaintain, GoalBuildStrength}
	LocationChoices = []string{LocationHome, LocationGym, LocationOutdoors}
)

// Границы валидации свободного ввода. Должны совпадать с историческими
// значениями, иначе сломается совместимость со старыми клиентами.
const (
	HeightMin = 100
	HeightMax = 250
	WeightMin = 30.0
	WeightMax = 300.0
	AgeMin    = 10
	AgeMax    = 100
)
