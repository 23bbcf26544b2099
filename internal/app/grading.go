package app

import (
	"fmt"
	"reflect"
	"strings"

	"gamified-learning-service/internal/domain"
)

// Grade scores a submission against the quiz's question bank. It is pure and
// total: skipped questions grade incorrect with zero points, and an empty
// question list yields all-zero aggregates.
func Grade(quiz domain.Quiz, submitted []domain.SubmittedAnswer) domain.GradingResult {
	byQuestion := make(map[string]domain.SubmittedAnswer, len(submitted))
	for _, answer := range submitted {
		byQuestion[answer.QuestionID] = answer
	}

	result := domain.GradingResult{
		Responses:      make([]domain.QuestionResult, 0, len(quiz.Questions)),
		TotalQuestions: len(quiz.Questions),
		TotalPoints:    quiz.TotalPoints(),
	}

	for _, question := range quiz.Questions {
		response := domain.QuestionResult{QuestionID: question.ID}
		if answer, ok := byQuestion[question.ID]; ok {
			response.Answered = true
			response.Answer = answer.Answer
			response.Correct = answerMatches(question, answer.Answer)
		}
		if response.Correct {
			response.PointsAwarded = question.PointsOrDefault()
			result.Score += response.PointsAwarded
			result.CorrectCount++
		}
		result.Responses = append(result.Responses, response)
	}
	return result
}

// answerMatches applies the type-dependent correctness rule.
func answerMatches(question domain.Question, submitted any) bool {
	switch question.Type {
	case domain.QuestionTrueFalse:
		// Tolerate type mismatch: boolean true equals string "true".
		return fmt.Sprint(submitted) == fmt.Sprint(question.Answer)
	case domain.QuestionShortAnswer:
		submittedStr, okSubmitted := submitted.(string)
		canonicalStr, okCanonical := question.Answer.(string)
		if !okSubmitted || !okCanonical {
			return false
		}
		return normalizeShortAnswer(submittedStr) == normalizeShortAnswer(canonicalStr)
	default:
		// mcq and untyped questions: strict equality, no coercion.
		return reflect.DeepEqual(submitted, question.Answer)
	}
}

func normalizeShortAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
