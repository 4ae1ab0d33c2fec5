package utils

import (
	"log/slog"
	"os"
	"regexp"
)

const masked = "***MASKED***"

var (
	// key=, api_key=, apiKey=, subscription-key= and friends in query strings
	queryKeyPattern = regexp.MustCompile(`([?&])((?i:api[_\-]?key|key|subscription[_\-]?key))=([^&\s"]+)`)
	bearerPattern   = regexp.MustCompile(`Bearer\s+([A-Za-z0-9_\-\.]+)`)
	// Azure Cognitive Services subscription header, any casing
	azureKeyPattern = regexp.MustCompile(`(?i)(Ocp-Apim-Subscription-Key)(:\s*|=)([^\s\]"]+)`)
	// private_key field of a Google service account file
	privateKeyPattern = regexp.MustCompile(`("private_key"\s*:\s*")[^"]*(")`)
)

// MaskSensitiveData masks subscription keys, tokens and credentials in s
// so error messages and URLs can be logged
func MaskSensitiveData(s string) string {
	if s == "" {
		return s
	}

	s = queryKeyPattern.ReplaceAllString(s, `${1}${2}=`+masked)
	s = bearerPattern.ReplaceAllString(s, `Bearer `+masked)
	s = azureKeyPattern.ReplaceAllString(s, `${1}${2}`+masked)
	s = privateKeyPattern.ReplaceAllString(s, `${1}`+masked+`${2}`)

	return s
}

// MaskSensitiveError wraps an error and masks sensitive data when the error is converted to string
func MaskSensitiveError(err error) error {
	if err == nil {
		return nil
	}
	return &maskedError{err: err}
}

type maskedError struct {
	err error
}

func (e *maskedError) Error() string {
	return MaskSensitiveData(e.err.Error())
}

func (e *maskedError) Unwrap() error {
	return e.err
}

func ExitOnError(msg string, err error) {
	slog.Error(msg, "err", MaskSensitiveError(err))
	os.Exit(1)
}
