package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// quizSize is how many questions one session draws.
const quizSize = 5

// Quiz is an ephemeral question session. It is not part of the persisted
// aggregate; only its experience reward flows back into the player through
// a level-change consequence.
type Quiz struct {
	ID        string
	Questions []QuizQuestion
	Index     int
	Correct   int
	// Experience accumulates the reward of every correctly answered question.
	Experience int
}

// NewQuiz draws up to quizSize questions from the bank, filtered by category
// when one is given, in shuffled order.
func NewQuiz(bank []QuizQuestion, category string) *Quiz {
	var pool []QuizQuestion
	for _, q := range bank {
		if category == "" || q.Category == category {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > quizSize {
		pool = pool[:quizSize]
	}
	return &Quiz{ID: uuid.NewString(), Questions: pool}
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (QuizQuestion, bool) {
	if q.Done() {
		return QuizQuestion{}, false
	}
	return q.Questions[q.Index], true
}

// Answer records the player's pick for the current question and advances.
// It reports whether the pick was correct.
func (q *Quiz) Answer(choice int) bool {
	cur, ok := q.Current()
	if !ok {
		return false
	}
	q.Index++
	if choice != cur.Correct {
		return false
	}
	q.Correct++
	q.Experience += cur.Experience
	return true
}

// Done reports whether every drawn question has been answered.
func (q *Quiz) Done() bool {
	return q.Index >= len(q.Questions)
}
