package config

import "errors"

// Errors returned by Load and Validate.
var (
	// ErrUnknownSetting indicates a config file key with no matching setting.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidValue indicates a setting with an unusable value.
	ErrInvalidValue = errors.New("invalid value")
)
