package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
)

// optionValue binds one handler option to a flag. The value lands in opts
// only once the flag is set, so WithDefaults still supplies the rest.
type optionValue struct {
	spec pipeline.OptionSpec
	opts pipeline.Options
}

func (v *optionValue) String() string {
	if current, ok := v.opts[v.spec.Name]; ok {
		return fmt.Sprint(current)
	}

	return v.spec.FormatDefault()
}

func (v *optionValue) Set(raw string) error {
	var (
		parsed any
		err    error
	)

	switch v.spec.Kind {
	case pipeline.BoolOption:
		parsed, err = strconv.ParseBool(raw)
	case pipeline.IntOption:
		parsed, err = strconv.Atoi(raw)
	case pipeline.FloatOption:
		parsed, err = strconv.ParseFloat(raw, 64)
	case pipeline.StringOption, pipeline.PathOption:
		parsed = raw
	default:
		return fmt.Errorf("option %s: unsupported kind %d", v.spec.Name, v.spec.Kind)
	}

	if err != nil {
		return fmt.Errorf("option %s: %w", v.spec.Name, err)
	}

	v.opts[v.spec.Name] = parsed

	return nil
}

func (v *optionValue) Type() string {
	if v.spec.Kind == pipeline.BoolOption {
		return "bool"
	}

	return v.spec.Kind.String()
}

// registerOptions adds a flag per spec and returns the options they fill.
func registerOptions(fs *pflag.FlagSet, specs []pipeline.OptionSpec) pipeline.Options {
	opts := pipeline.Options{}

	for _, spec := range specs {
		flag := fs.VarPF(&optionValue{spec: spec, opts: opts}, spec.Flag, spec.Shorthand, spec.Description)
		if spec.Kind == pipeline.BoolOption {
			flag.NoOptDefVal = "true"
		}
	}

	return opts
}
