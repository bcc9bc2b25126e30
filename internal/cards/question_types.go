package cards

import "quizrelay/internal/models"

// questionTypeMapping lists the card types the backend accepts. Keys are the
// form values the front end submits; values are the backend names.
var questionTypeMapping = map[string]string{
	"Multiple Choice Question":               "Multiple Choice Question",
	"Understanding Question":                 "Understanding Question",
	"Case Scenario Multiple Choice Question": "Case Scenario Multiple Choice Question",
	"True/False Question":                    "True/False Question",
}

// BuildQuestionTypes maps the user's selections to backend question type
// entries. Unknown selections are skipped. True/False questions always use
// the Basic difficulty group regardless of the requested difficulty.
func BuildQuestionTypes(selectedTypes []string, difficulty string) []models.QuestionTypeSelection {
	questionTypes := []models.QuestionTypeSelection{}
	for _, questionType := range selectedTypes {
		mapped, ok := questionTypeMapping[questionType]
		if !ok {
			continue
		}

		group := difficulty
		if questionType == "True/False Question" {
			group = "Basic"
		}
		questionTypes = append(questionTypes, models.QuestionTypeSelection{
			CardType:        mapped,
			DifficultyGroup: group,
		})
	}
	return questionTypes
}
