package tracker

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a tracker-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsType reports whether err is a tracker *Error of type t.
func IsType(err error, t ErrorType) bool {
	var terr *Error
	return errors.As(err, &terr) && terr.Type == t
}

// Config is the application-level state the tracker starts from. It is
// passed in explicitly; the tracker never reads globals or the
// environment.
type Config struct {
	// OnboardingCompleted is false until the user has gone through the
	// first-run choice of starting empty or with sample data.
	OnboardingCompleted bool `json:"onboardingCompleted" yaml:"onboardingCompleted" mapstructure:"onboarding_completed"`
	// UseSampleData seeds the sample categories and tasks on New.
	UseSampleData bool `json:"useSampleData" yaml:"useSampleData" mapstructure:"use_sample_data"`
	// ShowCompletedTasks keeps tasks already completed for a day in that
	// day's agenda.
	ShowCompletedTasks bool `json:"showCompletedTasks" yaml:"showCompletedTasks" mapstructure:"show_completed_tasks"`
	// DefaultCategory is used by Add when no category is given.
	DefaultCategory string `json:"defaultCategory,omitempty" yaml:"defaultCategory,omitempty" mapstructure:"default_category" validate:"omitempty,max=64"`
}

// DefaultConfig is the state of a fresh install.
var DefaultConfig = Config{
	ShowCompletedTasks: true,
}

var validate = validator.New()

// Validate checks c for malformed values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &Error{Type: ErrInvalidInput, Message: "invalid tracker config", Err: err}
	}
	return nil
}
