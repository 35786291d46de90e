package util

import "strings"

// bodyPartMap translates the Korean body-part labels produced by the chat
// extraction into the catalog's English enum.
var bodyPartMap = map[string]string{
	"가슴":     "chest",
	"등":      "back",
	"하체":     "legs",
	"다리":     "legs",
	"어깨":     "shoulders",
	"팔":      "arms",
	"복근":     "abs",
	"유산소":    "cardio",
	"유산소운동":  "cardio",
	"cardio": "cardio",
}

// mealTimeMap translates the Korean meal labels into the backend enum.
// 야식 and 간식 both collapse into snack.
var mealTimeMap = map[string]string{
	"아침": "breakfast",
	"점심": "lunch",
	"저녁": "dinner",
	"야식": "snack",
	"간식": "snack",
}

var saveKeywords = []string{
	"저장해줘",
	"기록해줘",
	"등록해줘",
	"저장",
	"기록",
	"완료",
	"끝",
	"등록",
}

// BodyPartForLabel resolves a Korean body-part label to the catalog enum.
func BodyPartForLabel(label string) (string, bool) {
	part, ok := bodyPartMap[strings.TrimSpace(strings.ToLower(label))]
	return part, ok
}

// IsCardioCategory reports whether an exercise category names a cardio
// workout, in which case no body part is required.
func IsCardioCategory(category string) bool {
	c := strings.TrimSpace(strings.ToLower(category))
	return c == "cardio" || strings.Contains(c, "유산소")
}

// MealTimeForLabel maps a Korean meal-time label to the backend enum.
// Unknown labels fall back to snack.
func MealTimeForLabel(label string) string {
	if mealTime, ok := mealTimeMap[strings.TrimSpace(label)]; ok {
		return mealTime
	}
	return "snack"
}

// HasSaveIntent reports whether an utterance is a persist command rather than
// dialogue content. Matching is substring-based so combined forms such as
// "저장해줘" or "기록 완료" trigger as well.
func HasSaveIntent(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}
	for _, keyword := range saveKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// TimePeriodForHour buckets an hour of day into the backend's time_period enum.
func TimePeriodForHour(hour int) string {
	switch {
	case hour >= 4 && hour < 8:
		return "dawn"
	case hour >= 8 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}
