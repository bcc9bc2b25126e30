package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"quizrelay/internal/models"
)

const (
	maxQuestionRunes    = 300
	maxMessageRunes     = 4096
	maxPollOptionRunes  = 100
	maxExplanationRunes = 200
	maxErrorRunes       = 50
)

// Sender is the part of the bot client the deliverer needs. It exists so
// delivery logic can be tested without the network.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text, parseMode string) error
	SendPoll(ctx context.Context, chatID int64, question string, options []string, correctOptionID int, explanation string) error
}

// Delivery summarizes one deck send.
type Delivery struct {
	Sent    int
	Skipped int
	Errors  []string
}

// Message is the human-readable summary returned to the caller
func (d Delivery) Message() string {
	return fmt.Sprintf("Sent %d questions to Telegram", d.Sent)
}

func (d *Delivery) addError(err error) {
	questionNum := d.Sent + d.Skipped + 1
	d.Errors = append(d.Errors, fmt.Sprintf("Question %d: %s", questionNum, firstRunes(err.Error(), maxErrorRunes)))
}

// Deliverer sends a deck's cards to a chat one by one, as plain messages for
// open-ended cards and quiz polls for everything else, pausing between sends
// to stay under Telegram's rate limits.
type Deliverer struct {
	Sender       Sender
	MessageDelay time.Duration
	PollDelay    time.Duration
}

// NewDeliverer creates a deliverer with the standard rate-limit delays
func NewDeliverer(sender Sender) *Deliverer {
	return &Deliverer{
		Sender:       sender,
		MessageDelay: 500 * time.Millisecond,
		PollDelay:    100 * time.Millisecond,
	}
}

// Deliver sends every card in order. Cards that cannot be represented (no
// question, too few usable poll options) are skipped; send failures are
// recorded per question and do not stop the rest of the deck.
func (d *Deliverer) Deliver(ctx context.Context, chatID int64, cards []models.Card) Delivery {
	var result Delivery

	for _, card := range cards {
		if card.Question == "" {
			result.Skipped++
			continue
		}

		questionText := "❓ " + card.Question
		if card.CaseDetails != "" {
			questionText = fmt.Sprintf("📋 %s\n\n❓ %s", card.CaseDetails, card.Question)
		}
		questionText = ellipsisRunes(questionText, maxQuestionRunes)

		cardType := strings.ToLower(card.CardType)
		if strings.Contains(cardType, "understand") || len(card.Options) == 0 {
			d.sendMessage(ctx, chatID, questionText, card, &result)
		} else {
			d.sendPoll(ctx, chatID, questionText, card, &result)
		}
	}
	return result
}

func (d *Deliverer) sendMessage(ctx context.Context, chatID int64, questionText string, card models.Card, result *Delivery) {
	answerText := card.Answer
	if answerText == "" {
		answerText = "No answer provided"
	}

	message := fmt.Sprintf("%s\n\n✅ **Answer:** %s", questionText, answerText)
	if card.Explanation != "" && card.Explanation != card.Answer {
		message += fmt.Sprintf("\n\n💡 **Explanation:** %s", card.Explanation)
	}
	message = ellipsisRunes(message, maxMessageRunes)

	if err := d.Sender.SendMessage(ctx, chatID, message, "Markdown"); err != nil {
		log.Printf("ERROR: Error sending message to %d: %v", chatID, err)
		result.addError(err)
		result.Skipped++
		return
	}
	result.Sent++
	d.pause(ctx, d.MessageDelay)
}

func (d *Deliverer) sendPoll(ctx context.Context, chatID int64, questionText string, card models.Card, result *Delivery) {
	if len(card.Options) < 2 {
		result.Skipped++
		return
	}

	// Telegram rejects empty options and options over 100 characters.
	validOptions := make([]string, 0, len(card.Options))
	for _, option := range card.Options {
		trimmed := strings.TrimSpace(option)
		if trimmed != "" && utf8.RuneCountInString(trimmed) <= maxPollOptionRunes {
			validOptions = append(validOptions, trimmed)
		}
	}
	if len(validOptions) < 2 {
		result.Skipped++
		return
	}

	correctID := correctOptionIndex(validOptions, card.Answer, questionText)
	pollExplanation := firstRunes(card.Explanation, maxExplanationRunes)

	if err := d.Sender.SendPoll(ctx, chatID, questionText, validOptions, correctID, pollExplanation); err != nil {
		log.Printf("ERROR: Error sending poll to %d: %v", chatID, err)
		result.addError(err)
		result.Skipped++
		return
	}
	result.Sent++
	d.pause(ctx, d.PollDelay)
}

// correctOptionIndex finds the poll option matching the answer: exact match
// first, then case-insensitive, then true/false equivalence. Falls back to
// the first option when nothing matches.
func correctOptionIndex(options []string, answer, questionText string) int {
	normalized := strings.TrimSpace(answer)

	for idx, option := range options {
		if option == normalized {
			return idx
		}
	}
	for idx, option := range options {
		if strings.EqualFold(option, normalized) {
			return idx
		}
	}

	answerLower := strings.ToLower(normalized)
	if answerLower == "true" || answerLower == "false" {
		for idx, option := range options {
			optionLower := strings.ToLower(option)
			if (optionLower == "true" || optionLower == "false") && optionLower == answerLower {
				return idx
			}
		}
	}

	log.Printf("WARN: Answer '%s' not found in options for question: %s", answer, firstRunes(questionText, 50))
	return 0
}

func (d *Deliverer) pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsisRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
