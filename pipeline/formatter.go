package pipeline

import (
	"fmt"
	"strconv"
)

// ArgType names the coercion applied to one command argument.
type ArgType int

const (
	// ArgString leaves the argument as-is.
	ArgString ArgType = iota
	// ArgInt coerces via strconv.ParseInt.
	ArgInt
	// ArgFloat coerces via strconv.ParseFloat.
	ArgFloat
	// ArgBool accepts strconv.ParseBool forms.
	ArgBool
)

// ArgFormatter describes one positional command argument: its
// type, whether it is required, a default for when it is absent, and an
// optional verify hook run after coercion. Failure yields a *FormatError.
type ArgFormatter struct {
	// Name labels the argument in error messages.
	Name string
	Type ArgType
	// Required rejects an absent argument; otherwise Default fills in.
	Required bool
	Default  any
	// Verify, when set, validates the coerced value. VerifyTip explains
	// the constraint in the resulting error.
	Verify    func(v any) bool
	VerifyTip string
}

// format coerces args.Vals[idx] in place.
func (f *ArgFormatter) format(args *ParseArgs, idx int) error {
	if idx >= len(args.Vals) {
		if f.Required {
			return &FormatError{Cmd: args.Name, Index: idx, Name: f.Name, Reason: "required argument missing"}
		}
		args.Vals = append(args.Vals, f.Default)
		return nil
	}

	raw, ok := args.Vals[idx].(string)
	if !ok {
		// Already coerced by an earlier pass.
		return nil
	}

	v, err := f.coerce(raw)
	if err != nil {
		return &FormatError{
			Cmd:    args.Name,
			Index:  idx,
			Name:   f.Name,
			Reason: fmt.Sprintf("cannot interpret %q as %s", raw, f.typeName()),
			Cause:  err,
		}
	}
	if f.Verify != nil && !f.Verify(v) {
		reason := f.VerifyTip
		if reason == "" {
			reason = fmt.Sprintf("value %v rejected by verify hook", v)
		}
		return &FormatError{Cmd: args.Name, Index: idx, Name: f.Name, Reason: reason}
	}
	args.Vals[idx] = v
	return nil
}

func (f *ArgFormatter) coerce(raw string) (any, error) {
	switch f.Type {
	case ArgInt:
		return strconv.ParseInt(raw, 10, 64)
	case ArgFloat:
		return strconv.ParseFloat(raw, 64)
	case ArgBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

func (f *ArgFormatter) typeName() string {
	switch f.Type {
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	case ArgBool:
		return "bool"
	default:
		return "string"
	}
}
