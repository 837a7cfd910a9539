package security

import (
	"fmt"
	"regexp"
	"strings"
)

const MaxQuestionLength = 1000

// questionDangerousPatterns rejects prompt-injection attempts and shell
// or code fragments smuggled into a chat question.
var questionDangerousPatterns = []*regexp.Regexp{
	// Prompt injection
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)игнорируй\s+(все\s+)?предыдущие\s+инструкции`),
	regexp.MustCompile(`(?i)забудь\s+(все\s+)?предыдущие\s+инструкции`),

	// Command and code execution fragments
	regexp.MustCompile(`(?i)\brm\s+-`),
	regexp.MustCompile(`(?i)\bcurl\s+`),
	regexp.MustCompile(`(?i)\bwget\s+`),
	regexp.MustCompile(`(?i)\bsudo\s+`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)system\s*\(`),
	regexp.MustCompile(`(?i)__import__\s*\(`),

	// Path traversal
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`/etc/passwd`),
	regexp.MustCompile(`id_rsa`),
}

// statsKeywords marks a message as a statistics question. Covers the
// Russian phrasing the bot's audience actually uses plus English
// equivalents. Questions with none of these never reach the model.
var statsKeywords = []string{
	// Russian
	"сколько", "количество", "прирост", "среднее", "средний",
	"максимум", "минимум", "всего", "суммарн", "видео", "просмотр",
	"лайк", "коммент", "жалоб", "снапшот", "создател", "креатор",
	"автор", "выросл",
	// English
	"how many", "how much", "count", "sum", "total", "average",
	"max", "min", "views", "likes", "comments", "reports",
	"video", "creator", "snapshot", "growth", "delta",
}

// QuestionValidator screens inbound chat questions before they are
// spliced into the prompt template.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a question for dangerous content and topical fit
func (v *QuestionValidator) Validate(question string) ValidationResult {
	if strings.TrimSpace(question) == "" {
		return ValidationResult{Valid: false, Message: "question cannot be empty"}
	}

	if len(question) > MaxQuestionLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("question too long: %d bytes (max %d)", len(question), MaxQuestionLength),
		}
	}

	for _, pattern := range questionDangerousPatterns {
		if pattern.MatchString(question) {
			return ValidationResult{
				Valid:   false,
				Message: "dangerous pattern detected: " + pattern.String(),
			}
		}
	}

	lower := strings.ToLower(question)
	for _, kw := range statsKeywords {
		if strings.Contains(lower, kw) {
			return ValidationResult{Valid: true, Message: "ok"}
		}
	}

	return ValidationResult{
		Valid:   false,
		Message: "question does not look like a statistics question",
	}
}
