package session

import "github.com/pavelanni/quizdesk/internal/model"

// Score counts the positions where the recorded answer exactly matches the
// question's correct answer. No partial credit, no negative marking. The
// answers slice is indexed parallel to quiz.Questions; extra entries are
// ignored and missing entries count as unanswered.
func Score(quiz model.Quiz, answers []string) int {
	score := 0
	for i, q := range quiz.Questions {
		if i >= len(answers) {
			break
		}
		if answers[i] != model.Unanswered && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}
