package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var notificationTypeRegex = regexp.MustCompile(`^[a-z0-9_.]+$`)

const (
	maxTitleLen        = 200
	maxBodyLen         = 2000
	maxAnnouncementLen = 1000
)

func ValidateNotification(notifType, title, body string) ValidationErrors {
	errs := make(ValidationErrors)

	notifType = strings.TrimSpace(notifType)
	if notifType == "" {
		errs.Add("type", "Notification type is required")
	} else if !notificationTypeRegex.MatchString(notifType) {
		errs.Add("type", "Notification type can only contain lowercase letters, numbers, _ and .")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > maxTitleLen {
		errs.Add("title", "Title is too long")
	}

	if len(body) > maxBodyLen {
		errs.Add("body", "Body is too long")
	}

	return errs
}

func ValidateAnnouncement(message string) ValidationErrors {
	errs := make(ValidationErrors)

	message = strings.TrimSpace(message)
	if message == "" {
		errs.Add("message", "Message is required")
	} else if len(message) > maxAnnouncementLen {
		errs.Add("message", "Message is too long")
	}

	return errs
}

func ValidateTaskStatus(status string) ValidationErrors {
	errs := make(ValidationErrors)

	switch status {
	case "todo", "in_progress", "review", "done", "archived":
	default:
		errs.Add("status", "Task status must be todo, in_progress, review, done or archived")
	}

	return errs
}

func ValidateMemberAction(action string) ValidationErrors {
	errs := make(ValidationErrors)

	switch action {
	case "added", "removed", "role_changed":
	default:
		errs.Add("action", "Member action must be added, removed or role_changed")
	}

	return errs
}
