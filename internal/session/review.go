package session

import "github.com/pavelanni/quizdesk/internal/model"

// Review is a read-only walk over a finalized Result against its Quiz. It
// never mutates the recorded answers; navigation follows the same range
// semantics as the live engine.
type Review struct {
	quiz    model.Quiz
	result  model.Result
	current int
}

// ReviewOption classifies one option of the question under review. An option
// can be both selected and correct (the taker was right), selected without
// correct (the taker was wrong), correct without selected, or neither.
type ReviewOption struct {
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Selected bool   `json:"selected"`
}

// ReviewItem is the render-ready view of one reviewed question.
type ReviewItem struct {
	Question    string         `json:"question"`
	Options     []ReviewOption `json:"options"`
	Explanation string         `json:"explanation,omitempty"`
	Answered    bool           `json:"answered"`
	Position    int            `json:"position"` // 1-based
	Total       int            `json:"total"`
	IsFirst     bool           `json:"is_first"`
	IsLast      bool           `json:"is_last"`
}

// BeginReview starts a review walk at the first question.
func BeginReview(result model.Result, quiz model.Quiz) *Review {
	return &Review{quiz: quiz, result: result}
}

// Navigate moves the review cursor by delta (+1 or -1). Out-of-range
// requests, or any other delta, are silently ignored.
func (r *Review) Navigate(delta int) {
	if delta != 1 && delta != -1 {
		return
	}
	next := r.current + delta
	if next < 0 || next >= len(r.quiz.Questions) {
		return
	}
	r.current = next
}

// Current returns the review view of the question under the cursor.
func (r *Review) Current() ReviewItem {
	q := r.quiz.Questions[r.current]
	selected := model.Unanswered
	if r.current < len(r.result.Answers) {
		selected = r.result.Answers[r.current]
	}

	options := make([]ReviewOption, len(q.Options))
	for i, opt := range q.Options {
		options[i] = ReviewOption{
			Text:     opt,
			Correct:  opt == q.CorrectAnswer,
			Selected: selected != model.Unanswered && opt == selected,
		}
	}

	return ReviewItem{
		Question:    q.Question,
		Options:     options,
		Explanation: q.Explanation,
		Answered:    selected != model.Unanswered,
		Position:    r.current + 1,
		Total:       len(r.quiz.Questions),
		IsFirst:     r.current == 0,
		IsLast:      r.current == len(r.quiz.Questions)-1,
	}
}

// End finishes the walk and hands the original Result back unchanged.
func (r *Review) End() model.Result {
	return r.result
}
