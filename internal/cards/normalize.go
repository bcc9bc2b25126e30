package cards

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"quizrelay/internal/models"
)

// NormalizeAnswer renders a raw answer value as a display string. Booleans
// and boolean-looking strings become the canonical "True"/"False"; numbers
// drop their decoder float form ("42", not "42.0"); empty or missing values
// become "".
func NormalizeAnswer(answer interface{}) string {
	switch v := answer.(type) {
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return "True"
		case "false":
			return "False"
		}
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// BuildOptions assembles the answer options for a card. Distractors are
// copied, the answer appended and the result shuffled. The shuffle runs on
// every call, so repeated fetches of the same deck reorder options; clients
// rely on matching by value, not position. Cards with no distractors fall
// back to ["True", "False"] when either the card type or the answer looks
// boolean.
func BuildOptions(answer interface{}, distractors []string, cardType string) []string {
	options := []string{}

	if len(distractors) > 0 {
		options = append(options, distractors...)
		if truthy(answer) {
			options = append(options, NormalizeAnswer(answer))
		}
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
	}

	if len(options) == 0 {
		typeLower := strings.ToLower(cardType)
		if strings.Contains(typeLower, "true") || strings.Contains(typeLower, "false") {
			return []string{"True", "False"}
		}
		if s, ok := answer.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "false":
				return []string{"True", "False"}
			}
		}
	}

	return options
}

// Explanation picks the first populated explanation field, falling back to
// the normalized answer.
func Explanation(cardData map[string]interface{}, answer interface{}) string {
	for _, key := range []string{"explanation", "explanation_text", "detailed_answer", "solution"} {
		if s, ok := cardData[key].(string); ok && s != "" {
			return s
		}
	}
	return NormalizeAnswer(answer)
}

// Normalize converts a raw backend card object into a Card. Cards without an
// id are unusable downstream and yield nil.
func Normalize(cardData map[string]interface{}) *models.Card {
	cardID := stringValue(cardData["card_id"])
	if cardID == "" {
		cardID = stringValue(cardData["id"])
	}
	if cardID == "" {
		return nil
	}

	answer := cardData["answer"]
	cardType := stringValue(cardData["card_type"])
	distractors := stringSlice(cardData["distractor_answers_for_multiple_choice_question"])

	return &models.Card{
		CardID:      cardID,
		Question:    stringValue(cardData["question"]),
		CaseDetails: stringValue(cardData["case_scenario_details"]),
		CardType:    cardType,
		Answer:      NormalizeAnswer(answer),
		Explanation: Explanation(cardData, answer),
		Options:     BuildOptions(answer, distractors, cardType),
		Raw:         cardData,
	}
}

// NormalizeAll normalizes a batch, dropping cards without ids.
func NormalizeAll(cardsData []map[string]interface{}) []models.Card {
	normalized := []models.Card{}
	for _, cardData := range cardsData {
		if card := Normalize(cardData); card != nil {
			normalized = append(normalized, *card)
		}
	}
	return normalized
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
