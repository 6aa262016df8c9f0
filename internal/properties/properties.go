// Package properties is the flat key/value store filters are bound from.
package properties

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Properties maps property names to raw string values. Names are case sensitive.
type Properties map[string]string

// Values may legitimately contain '#' or ';' (patterns, Rego), so only
// whole-line comments are honored.
var loadOptions = ini.LoadOptions{IgnoreInlineComment: true}

// FromMap copies m into a new Properties.
func FromMap(m map[string]string) Properties {
	p := make(Properties, len(m))
	for k, v := range m {
		p[k] = v
	}
	return p
}

// Load reads a Java-style .properties file ("key=value" lines, '#' comments).
func Load(path string) (Properties, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("reading properties file: %w", err)
	}
	return fromINI(f), nil
}

// LoadBytes parses .properties data.
func LoadBytes(data []byte) (Properties, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parsing properties: %w", err)
	}
	return fromINI(f), nil
}

func fromINI(f *ini.File) Properties {
	p := make(Properties)
	for _, sec := range f.Sections() {
		prefix := ""
		if sec.Name() != ini.DefaultSection {
			prefix = sec.Name() + "."
		}
		for _, k := range sec.Keys() {
			p[prefix+k.Name()] = k.String()
		}
	}
	return p
}

// Get returns the value for name, or "" if it is absent.
func (p Properties) Get(name string) string {
	return p[name]
}

// Has reports whether name is present.
func (p Properties) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// GetBool parses the named property into dst. It returns false and leaves dst
// untouched when the property is absent or not a recognizable boolean.
func (p Properties) GetBool(dst *bool, name string) bool {
	raw, ok := p[name]
	if !ok {
		return false
	}
	v, ok := ParseBool(raw)
	if !ok {
		return false
	}
	*dst = v
	return true
}

// ParseBool recognizes "true"/"false" in any case, and integers (non-zero is true).
func ParseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, true
	}
	return false, false
}

// Subset returns the properties whose names start with prefix, with the
// prefix removed.
func (p Properties) Subset(prefix string) Properties {
	out := make(Properties)
	for k, v := range p {
		if rest, ok := strings.CutPrefix(k, prefix); ok && rest != "" {
			out[rest] = v
		}
	}
	return out
}

// Names returns the property names in sorted order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
