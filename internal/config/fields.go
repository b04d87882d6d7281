package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

var (
	// ErrUnknownField is returned for a field name Settings does not have.
	ErrUnknownField = errors.New("unknown settings field")
	// ErrInvalidValue is returned when a value cannot be parsed as the
	// field's type.
	ErrInvalidValue = errors.New("invalid settings value")
)

// Kind is the type of a settings field.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindLevel
)

// Field describes one settings field.
type Field struct {
	Name        string
	Kind        Kind
	Description string
}

var fields = []Field{
	{Name: "CoursesPublic", Kind: KindBool, Description: "Show course names publicly"},
	{Name: "GradeCheckInterval", Kind: KindInt, Description: "Seconds between grade checks"},
	{Name: "CustomHostname", Kind: KindString, Description: "Host name reported by this machine"},
	{Name: "LogLevel", Kind: KindLevel, Description: "Minimum log level"},
	{Name: "MaxLogAgeDays", Kind: KindInt, Description: "Days to keep log files"},
}

// Fields returns the settings fields in file order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// LookupField finds a field by name, ignoring case.
func LookupField(name string) (Field, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Get returns the value of the named field formatted as text.
func (s *Settings) Get(name string) (string, error) {
	f, ok := LookupField(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	switch f.Name {
	case "CoursesPublic":
		return strconv.FormatBool(s.CoursesPublic), nil
	case "GradeCheckInterval":
		return strconv.Itoa(s.GradeCheckInterval), nil
	case "CustomHostname":
		return s.CustomHostname, nil
	case "LogLevel":
		return s.LogLevel.String(), nil
	case "MaxLogAgeDays":
		return strconv.Itoa(s.MaxLogAgeDays), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Set parses raw according to the named field's type and assigns it. Only
// the type is checked; any int or string is accepted.
func (s *Settings) Set(name, raw string) error {
	f, ok := LookupField(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	switch f.Kind {
	case KindBool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s wants true or false, got %q", ErrInvalidValue, f.Name, raw)
		}
		s.CoursesPublic = v
	case KindInt:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s wants an integer, got %q", ErrInvalidValue, f.Name, raw)
		}
		if f.Name == "GradeCheckInterval" {
			s.GradeCheckInterval = v
		} else {
			s.MaxLogAgeDays = v
		}
	case KindString:
		s.CustomHostname = raw
	case KindLevel:
		v, err := logging.ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("%w: %s wants one of DEBUG, INFO, WARNING, ERROR, got %q", ErrInvalidValue, f.Name, raw)
		}
		s.LogLevel = v
	}
	return nil
}

// Assign applies a NAME=VALUE pair with Set.
func (s *Settings) Assign(pair string) error {
	name, value, ok := strings.Cut(pair, "=")
	if !ok {
		return fmt.Errorf("%w: expected NAME=VALUE, got %q", ErrInvalidValue, pair)
	}
	return s.Set(strings.TrimSpace(name), value)
}
