package pipeline

import (
	"fmt"
	"log"
)

// OptionKind represents the possible types of an option's value.
type OptionKind int

const (
	// BoolOption reflects the boolean value type.
	BoolOption OptionKind = iota
	// IntOption reflects the integer value type.
	IntOption
	// StringOption reflects the string value type.
	StringOption
	// FloatOption reflects a floating point value type.
	FloatOption
	// PathOption reflects the file system path value type.
	PathOption
)

// String returns the name shown next to a flag in usage output.
// Booleans have none.
func (k OptionKind) String() string {
	switch k {
	case BoolOption:
		return ""
	case IntOption:
		return "int"
	case StringOption:
		return "string"
	case FloatOption:
		return "float"
	case PathOption:
		return "path"
	}

	log.Panicf("invalid OptionKind value %d", k)

	return ""
}

// OptionSpec declares one setting a handler reads from Options in Start.
type OptionSpec struct {
	// Default is the value used when the option is not given.
	Default any
	// Name is the key under which the value is stored in Options.
	Name string
	// Description is the help text.
	Description string
	// Flag is the CLI token without the leading "--".
	Flag string
	// Shorthand is the optional one-letter alias.
	Shorthand string
	// Kind specifies the type of the value.
	Kind OptionKind
}

// FormatDefault renders the default value for usage output, or "" when
// the default is empty.
func (spec OptionSpec) FormatDefault() string {
	if spec.Default == nil || spec.Default == "" {
		return ""
	}

	if spec.Kind == StringOption || spec.Kind == PathOption {
		return fmt.Sprintf("%q", spec.Default)
	}

	return fmt.Sprint(spec.Default)
}

// Configurable is implemented by handlers that accept options in Start.
type Configurable interface {
	OptionSpecs() []OptionSpec
}

// Options carries run settings to Starter.Start, keyed by OptionSpec.Name.
type Options map[string]any

// String returns the string option name, or "" when missing or mistyped.
func (o Options) String(name string) string {
	v, _ := o[name].(string)

	return v
}

// Int returns the int option name, or 0 when missing or mistyped.
func (o Options) Int(name string) int {
	v, _ := o[name].(int)

	return v
}

// Bool returns the bool option name, or false when missing or mistyped.
func (o Options) Bool(name string) bool {
	v, _ := o[name].(bool)

	return v
}

// Float returns the float64 option name, or 0 when missing or mistyped.
func (o Options) Float(name string) float64 {
	v, _ := o[name].(float64)

	return v
}

// WithDefaults returns a copy of o with every missing spec filled in from its default.
func (o Options) WithDefaults(specs []OptionSpec) Options {
	out := make(Options, len(o)+len(specs))
	for k, v := range o {
		out[k] = v
	}

	for _, spec := range specs {
		if _, ok := out[spec.Name]; !ok {
			out[spec.Name] = spec.Default
		}
	}

	return out
}
