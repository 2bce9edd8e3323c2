package faults

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is the failure category attached to a Fault. It is fixed when the
// fault is raised and is the only signal used for metrics aggregation and
// invocation status selection.
type Kind string

const (
	Configuration Kind = "configuration"
	Read          Kind = "read_failure"
	Parse         Kind = "parse_failure"
	Validation    Kind = "validation_failure"
	Transform     Kind = "transform_failure"
	Partition     Kind = "partition_failure"
	Write         Kind = "write_failure"
	Unknown       Kind = "unknown"
)

// Fault is an error carrying a failure kind plus contextual key-values
// (bucket, key, record index) for downstream reporting.
type Fault struct {
	kind    Kind
	message string
	context map[string]string
	cause   error
}

func New(kind Kind, message string) *Fault {
	return &Fault{kind: kind, message: message}
}

func Errorf(kind Kind, format string, args ...interface{}) *Fault {
	return &Fault{kind: kind, message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Fault {
	return &Fault{kind: kind, message: message, cause: err}
}

func (f *Fault) Kind() Kind {
	return f.kind
}

// With records a contextual key-value on the fault and returns it.
func (f *Fault) With(key, value string) *Fault {
	if f.context == nil {
		f.context = map[string]string{}
	}
	f.context[key] = value
	return f
}

func (f *Fault) Context() map[string]string {
	return f.context
}

func (f *Fault) Error() string {
	var b strings.Builder
	b.WriteString(string(f.kind))
	b.WriteString(": ")
	b.WriteString(f.message)
	if f.cause != nil {
		fmt.Fprintf(&b, ": %v", f.cause)
	}
	if len(f.context) > 0 {
		keys := make([]string, 0, len(f.context))
		for k := range f.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, f.context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(pairs, " "))
	}
	return b.String()
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// KindOf classifies an arbitrary error. Errors that do not carry a Fault
// anywhere in their chain are Unknown.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.kind
	}
	return Unknown
}
