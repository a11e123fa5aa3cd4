package models

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrProgressNotFound = errors.New("progress not found")
	ErrSessionNotFound  = errors.New("study session not found")
	ErrNoActiveTest     = errors.New("no active test found")
)
