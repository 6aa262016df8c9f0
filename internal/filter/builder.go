package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tkingovr/logfilter/internal/properties"
)

// ErrUnknownKind is returned when a filter kind has no registered constructor.
var ErrUnknownKind = errors.New("filter: unknown filter kind")

// Spec describes one filter to construct: its kind and its raw properties.
type Spec struct {
	Kind       string            `yaml:"kind" json:"kind"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

type constructor func(props properties.Properties) (Filter, error)

var constructors = map[string]constructor{
	"DenyAllFilter": func(properties.Properties) (Filter, error) {
		return NewDenyAllFilter(), nil
	},
	"LogLevelMatchFilter": func(p properties.Properties) (Filter, error) {
		return NewLogLevelMatchFilterFromProperties(p)
	},
	"LogLevelRangeFilter": func(p properties.Properties) (Filter, error) {
		return NewLogLevelRangeFilterFromProperties(p)
	},
	"StringMatchFilter": func(p properties.Properties) (Filter, error) {
		return NewStringMatchFilterFromProperties(p), nil
	},
	"NDCMatchFilter": func(p properties.Properties) (Filter, error) {
		return NewNDCMatchFilterFromProperties(p), nil
	},
	"MDCMatchFilter": func(p properties.Properties) (Filter, error) {
		return NewMDCMatchFilterFromProperties(p), nil
	},
	"PolicyFilter": func(p properties.Properties) (Filter, error) {
		return NewPolicyFilterFromProperties(p)
	},
	"SecretMatchFilter": func(p properties.Properties) (Filter, error) {
		return NewSecretMatchFilterFromProperties(p)
	},
}

// NormalizeKind strips any namespace qualifier ("ns::Kind" or "pkg.Kind").
func NormalizeKind(kind string) string {
	kind = strings.TrimSpace(kind)
	if i := strings.LastIndex(kind, "::"); i >= 0 {
		kind = kind[i+2:]
	}
	if i := strings.LastIndex(kind, "."); i >= 0 {
		kind = kind[i+1:]
	}
	return kind
}

// Known reports whether kind names a registered filter.
func Known(kind string) bool {
	_, ok := constructors[NormalizeKind(kind)]
	return ok
}

// Kinds returns the registered filter kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs a single filter of the given kind from props.
func Build(kind string, props properties.Properties) (Filter, error) {
	ctor, ok := constructors[NormalizeKind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if props == nil {
		props = properties.Properties{}
	}
	f, err := ctor(props)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", NormalizeKind(kind), err)
	}
	return f, nil
}

// BuildChain constructs a chain from specs, preserving their order.
func BuildChain(logger *slog.Logger, specs []Spec) (*Chain, error) {
	filters := make([]Filter, 0, len(specs))
	for i, s := range specs {
		f, err := Build(s.Kind, properties.FromMap(s.Properties))
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return NewChain(logger, filters...)
}
