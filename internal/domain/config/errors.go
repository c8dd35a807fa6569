package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeEnvFile          = "ENV_FILE"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeGroupNotFound    = "GROUP_NOT_FOUND"
	ErrCodeNotRoot          = "NOT_ROOT"
	ErrCodeNoTerminal       = "NO_TERMINAL"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code    string // one of the ErrCode constants
	Message string
	// Context locates the problem: a file, "file (line N)" or a config field.
	Context    string
	Suggestion string
	Underlying error
}

// Error returns the message and, when known, where the problem is.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a new UserError with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a new UserError with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a new UserError wrapping another error.
func (e *UserError) WithUnderlying(err error) *UserError {
	c := *e
	c.Underlying = err
	return &c
}

// ErrorList accumulates multiple errors for comprehensive reporting.
type ErrorList struct {
	errors []*UserError
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{
		errors: make([]*UserError, 0),
	}
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation adds a validation error to the list.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns the list of errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	if len(l.errors) == 0 {
		return ""
	}
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	if len(l.errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// AsError returns the ErrorList as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l
}

// Common user-friendly error constructors.

// NewConfigNotFoundError creates an error for a missing config file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Run 'debprep config init' to write the defaults, or check the file path.",
	}
}

// NewConfigParseError creates an error for TOML parsing failures.
func NewConfigParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "failed to parse configuration file",
		Context:    path,
		Suggestion: "Check your TOML syntax. Strings must be quoted and durations written as \"30s\".",
		Underlying: err,
	}
}

// NewUnsupportedFormatError creates an error for a config file with an unknown extension.
func NewUnsupportedFormatError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigInvalid,
		Message:    "unsupported configuration format",
		Context:    path,
		Suggestion: "Use a .yaml, .yml or .toml file.",
	}
}

// NewEnvFileError creates an error for an unreadable dotenv file.
func NewEnvFileError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeEnvFile,
		Message:    "failed to read environment file",
		Context:    path,
		Suggestion: "Each line must be KEY=value. Remove --env-file to run without overrides.",
		Underlying: err,
	}
}

// NewValidationFailedError creates a validation error.
func NewValidationFailedError(field, message string) *UserError {
	return &UserError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for '%s': %s", field, message),
		Context: field,
	}
}

// NewUnknownGroupError creates an error for a step group that does not exist.
func NewUnknownGroupError(name string, available []string) *UserError {
	suggestion := "Run 'debprep status' to list the available groups."
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available groups: %s", strings.Join(available, ", "))
	}
	return &UserError{
		Code:       ErrCodeGroupNotFound,
		Message:    fmt.Sprintf("step group '%s' not found", name),
		Suggestion: suggestion,
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// yamlHints maps fragments of yaml.v3 errors to operator-facing messages.
// The first match wins.
var yamlHints = []struct {
	fragment   string
	message    string
	suggestion string
}{
	{"cannot unmarshal !!map into []string", "expected a list of names",
		"Package lists are plain YAML sequences:\n\n  baseline:\n    packages:\n      - curl\n      - ca-certificates"},
	{"invalid duration", "invalid duration",
		"Write durations as Go duration strings, for example 5s, 1m30s or 2m."},
	{"cannot unmarshal !!seq into map", "expected a mapping but found a list",
		"Sections such as docker or retry take 'key: value' pairs, not '- item' entries."},
	{"cannot unmarshal !!str into", "unexpected string value",
		"A section was given a plain value; check its indentation."},
	{"did not find expected key", "missing key or wrong indentation",
		"Indent every level with two spaces; tabs are not allowed."},
	{"mapping values are not allowed", "invalid YAML structure",
		"Check for a missing colon after a key or a value that needs quotes."},
	{"found character that cannot start", "invalid character in YAML",
		"Quote values that contain ':', '#' or '{', such as URLs with ports."},
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// NewYAMLParseError translates technical YAML errors into user-friendly messages.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	ue := &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "invalid YAML syntax",
		Context:    path,
		Suggestion: "Check the indentation, the colons after keys and quoting of special characters.",
		Underlying: err,
	}
	for _, h := range yamlHints {
		if strings.Contains(errStr, h.fragment) {
			ue.Message, ue.Suggestion = h.message, h.suggestion
			break
		}
	}
	if m := yamlLine.FindStringSubmatch(errStr); m != nil {
		ue.Context = fmt.Sprintf("%s (line %s)", path, m[1])
	}
	return ue
}
