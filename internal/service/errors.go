package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrTranscriptMissing = errors.New("transcript not found")
	ErrEmptyUpload       = errors.New("uploaded file is empty")
	ErrUploadTooLarge    = errors.New("uploaded file is too large")
	ErrEmptyTranscript   = errors.New("transcript has no entries")
	ErrInvalidChoice     = errors.New("choice index must be between 0 and 3")
	ErrModelUnavailable  = errors.New("model provider failed")
)
