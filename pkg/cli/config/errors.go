package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = goerr.New("configuration file not found")
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrInvalidWorkingHours = goerr.New("invalid working hours")
	ErrInvalidContextRule  = goerr.New("invalid context rule")
	ErrInvalidUserSpec     = goerr.New("invalid user specification")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	RuleIndexKey  = "rule_index"
	UserSpecKey   = "user_spec"
)
