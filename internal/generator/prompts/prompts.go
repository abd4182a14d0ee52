// Package prompts builds the system prompts sent to the question generator.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/quizdesk/internal/model"
)

const maxSourceRunes = 10000

// BuildTopicPrompt builds the prompt for generating questions on a named topic.
func BuildTopicPrompt(topic string, difficulty model.Difficulty, count int) string {
	var sb strings.Builder
	sb.WriteString("You are a quiz author. Write multiple-choice questions for a timed exam.\n\n")
	sb.WriteString("TOPIC: " + topic + "\n")
	sb.WriteString(fmt.Sprintf("DIFFICULTY: %s\n", difficulty))
	sb.WriteString(fmt.Sprintf("NUMBER OF QUESTIONS: %d\n\n", count))
	writeFormatInstructions(&sb, count)
	return sb.String()
}

// BuildTextPrompt builds the prompt for generating questions from document text.
func BuildTextPrompt(sourceText string, difficulty model.Difficulty, count int) string {
	var sb strings.Builder
	sb.WriteString("You are a quiz author. Write multiple-choice questions for a timed exam, ")
	sb.WriteString("based strictly on the source text below. Do not use outside knowledge.\n\n")
	sb.WriteString("SOURCE TEXT:\n" + sanitizeSource(sourceText) + "\n\n")
	sb.WriteString(fmt.Sprintf("DIFFICULTY: %s\n", difficulty))
	sb.WriteString(fmt.Sprintf("NUMBER OF QUESTIONS: %d\n\n", count))
	writeFormatInstructions(&sb, count)
	return sb.String()
}

func writeFormatInstructions(sb *strings.Builder, count int) {
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- Each question must have exactly 4 answer options.\n")
	sb.WriteString("- correct_answer must be copied verbatim from the options list.\n")
	sb.WriteString("- Include a one-sentence explanation of the correct answer.\n")
	sb.WriteString(fmt.Sprintf("- Produce exactly %d questions.\n", count))
	sb.WriteString("\nRespond ONLY with a JSON object of this shape:\n")
	sb.WriteString(`{"questions": [{"question": "<text>", "options": ["<a>", "<b>", "<c>", "<d>"], "correct_answer": "<one of the options>", "explanation": "<text>"}]}`)
	sb.WriteString("\n")
}

func sanitizeSource(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxSourceRunes {
		runes := []rune(text)
		text = string(runes[:maxSourceRunes]) + "\n\n[Source truncated due to length]"
	}
	return text
}
