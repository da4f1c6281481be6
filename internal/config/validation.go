package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError is one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors reports whether any field failed.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
	validLogOutputs = map[string]bool{"stdout": true, "stderr": true, "file": true, "both": true}
)

// Validator validates configuration values.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// Validate returns ValidationErrors when any section is invalid.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = nil

	if strings.TrimSpace(cfg.App.Name) == "" {
		v.addError("app.name", "name is required")
	}
	v.validateServer(&cfg.Server)
	v.validateEditor(&cfg.Editor)
	v.validateLog(&cfg.Log)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Address == "" {
		v.addError("server.address", "address is required")
	} else if !isValidAddress(cfg.Address) {
		v.addError("server.address", "invalid address format, expected host:port or :port")
	}
	if cfg.ReadTimeout < 0 {
		v.addError("server.read_timeout", "read timeout must be non-negative")
	}
	if cfg.WriteTimeout < 0 {
		v.addError("server.write_timeout", "write timeout must be non-negative")
	}
	if cfg.BodyLimit <= 0 {
		v.addError("server.body_limit", "body limit must be positive")
	}
	if cfg.EnableCORS && len(cfg.CORSOrigins) == 0 {
		v.addError("server.cors_origins", "at least one origin is required when CORS is enabled")
	}
}

func (v *Validator) validateEditor(cfg *EditorConfig) {
	if cfg.Indent < 1 || cfg.Indent > 8 {
		v.addError("editor.indent", "indent must be between 1 and 8")
	}
	if cfg.MaxSessions <= 0 {
		v.addError("editor.max_sessions", "max sessions must be positive")
	}
}

func (v *Validator) validateLog(cfg *LogConfig) {
	if !validLogLevels[strings.ToLower(cfg.Level)] {
		v.addError("log.level", fmt.Sprintf("invalid level %q", cfg.Level))
	}
	if !validLogFormats[strings.ToLower(cfg.Format)] {
		v.addError("log.format", fmt.Sprintf("invalid format %q", cfg.Format))
	}
	if !validLogOutputs[strings.ToLower(cfg.Output)] {
		v.addError("log.output", fmt.Sprintf("invalid output %q", cfg.Output))
	}
	if (cfg.Output == "file" || cfg.Output == "both") && cfg.FilePath == "" {
		v.addError("log.file_path", "file path is required for file output")
	}
}

func isValidAddress(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	return err == nil && port != ""
}

// Validate is a shorthand for NewValidator().Validate(cfg).
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
