package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tkingovr/logfilter/internal/filter"
	"github.com/tkingovr/logfilter/internal/properties"
)

const (
	propsPrefix    = "log4cplus."
	appenderPrefix = "appender."
	filtersSegment = ".filters."
	settingsPrefix = "settings."
	propertiesExt  = ".properties"
)

// LoadProperties reads a Java-style properties file and converts it into a
// File. Filters are declared per appender:
//
//	appender.console.filters.1=LogLevelRangeFilter
//	appender.console.filters.1.LogLevelMin=WARN
//	appender.console.filters.2=DenyAllFilter
//
// Keys may carry a leading "log4cplus." and filters run in ascending
// numeric order of their index.
func LoadProperties(path string) (*File, error) {
	props, err := properties.Load(path)
	if err != nil {
		return nil, err
	}
	return FromProperties(props)
}

// ParseProperties parses properties data into a File.
func ParseProperties(data []byte) (*File, error) {
	props, err := properties.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return FromProperties(props)
}

type indexedSpec struct {
	index int
	spec  filter.Spec
}

// FromProperties converts a flat property set into a validated File.
func FromProperties(props properties.Properties) (*File, error) {
	f := &File{Version: 1, Chains: make(map[string][]filter.Spec)}
	chains := make(map[string]map[int]*indexedSpec)

	for _, name := range props.Names() {
		key := strings.TrimPrefix(name, propsPrefix)
		value := props.Get(name)

		if strings.HasPrefix(key, settingsPrefix) {
			if err := applySetting(&f.Settings, strings.TrimPrefix(key, settingsPrefix), value); err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasPrefix(key, appenderPrefix) {
			continue
		}

		key = strings.TrimPrefix(key, appenderPrefix)
		i := strings.Index(key, filtersSegment)
		if i < 0 {
			continue
		}
		chain, rest := key[:i], key[i+len(filtersSegment):]
		if chain == "" {
			return nil, fmt.Errorf("property %q: chain name is required", name)
		}

		idxStr, propName, _ := strings.Cut(rest, ".")
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("property %q: invalid filter index %q", name, idxStr)
		}

		if chains[chain] == nil {
			chains[chain] = make(map[int]*indexedSpec)
		}
		s := chains[chain][idx]
		if s == nil {
			s = &indexedSpec{index: idx, spec: filter.Spec{Properties: map[string]string{}}}
			chains[chain][idx] = s
		}
		if propName == "" {
			s.spec.Kind = value
		} else {
			s.spec.Properties[propName] = value
		}
	}

	for chain, byIndex := range chains {
		specs := make([]*indexedSpec, 0, len(byIndex))
		for _, s := range byIndex {
			specs = append(specs, s)
		}
		sort.Slice(specs, func(a, b int) bool { return specs[a].index < specs[b].index })

		out := make([]filter.Spec, 0, len(specs))
		for _, s := range specs {
			out = append(out, s.spec)
		}
		f.Chains[chain] = out
	}

	if err := validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

func applySetting(s *Settings, key, value string) error {
	switch key {
	case "log_dir":
		s.LogDir = value
	case "listen_addr":
		s.ListenAddr = value
	case "record_decisions":
		b, ok := properties.ParseBool(value)
		if !ok {
			return fmt.Errorf("settings.record_decisions: invalid boolean %q", value)
		}
		s.RecordDecisions = b
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
