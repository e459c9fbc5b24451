package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database and protocol constraints.
const (
	MaxTopicLen        = 80
	MaxUserIDLen       = 64
	MaxQuestionTextLen = 500
	MaxOptionLen       = 200
	MaxOptions         = 50
)

var (
	// topicRe matches topic slugs: lowercase alphanumerics and hyphens.
	topicRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// userIDRe matches session tokens: UUIDs or other opaque url-safe ids.
	userIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateTopic checks that a topic slug is well-formed and within limits.
func ValidateTopic(topic string) (string, string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", "topic is required"
	}
	if len(topic) > MaxTopicLen {
		return "", "topic must be at most 80 characters"
	}
	if !topicRe.MatchString(topic) {
		return "", "topic must be a lowercase slug (letters, digits, hyphens)"
	}
	return topic, ""
}

// ValidateUserID checks that a user identifier is a plausible session token.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userId is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 64 characters"
	}
	if !userIDRe.MatchString(id) {
		return "", "userId contains invalid characters"
	}
	return id, ""
}

// ValidateQuestionText trims and bounds a question body.
func ValidateQuestionText(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "question text cannot be empty"
	}
	if len(text) > MaxQuestionTextLen {
		return "", "question text must be at most 500 characters"
	}
	return text, ""
}

// ValidateOptions bounds an option list's size and entry lengths. Content
// rules (minimum two options, duplicates) live with the question service;
// this is only the transport-level sanity check.
func ValidateOptions(options []string) string {
	if len(options) > MaxOptions {
		return "at most 50 options are allowed"
	}
	for _, opt := range options {
		if len(opt) > MaxOptionLen {
			return "options must be at most 200 characters each"
		}
	}
	return ""
}
