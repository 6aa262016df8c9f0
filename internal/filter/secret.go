package filter

import (
	"fmt"
	"regexp"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// SecretPattern defines a named regex pattern for detecting secrets.
type SecretPattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultSecretPatterns returns the built-in set of secret detection patterns.
func DefaultSecretPatterns() []SecretPattern {
	return []SecretPattern{
		{Name: "aws_access_key", Regex: regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`)},
		{Name: "github_token", Regex: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,255}`)},
		{Name: "github_pat_fine", Regex: regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,255}`)},
		{Name: "generic_api_key", Regex: regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api_secret)['":\s]*[=:]\s*['"]?([A-Za-z0-9\-_]{20,60})['"]?`)},
		{Name: "password", Regex: regexp.MustCompile(`(?i)(?:password|passwd|pwd)['":\s]*[=:]\s*['"]?([^\s'"]{6,100})`)},
		{Name: "private_key", Regex: regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`)},
		{Name: "slack_token", Regex: regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`)},
		{Name: "stripe_key", Regex: regexp.MustCompile(`(?:sk|pk)_(?:live|test)_[A-Za-z0-9]{20,100}`)},
		{Name: "google_api_key", Regex: regexp.MustCompile(`AIza[A-Za-z0-9\-_]{35}`)},
		{Name: "jwt_token", Regex: regexp.MustCompile(`eyJ[A-Za-z0-9-_]+\.eyJ[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+`)},
	}
}

// SecretMatchFilter matches events whose message carries a credential.
// By default a match denies, so the filter keeps secrets out of sinks;
// no match is neutral.
type SecretMatchFilter struct {
	link
	patterns      []SecretPattern
	acceptOnMatch bool
}

// SecretMatchOption configures the SecretMatchFilter.
type SecretMatchOption func(*SecretMatchFilter)

// WithPatterns sets custom secret patterns (replaces defaults).
func WithPatterns(patterns []SecretPattern) SecretMatchOption {
	return func(f *SecretMatchFilter) {
		f.patterns = patterns
	}
}

// WithSecretMatchAccept sets the match polarity.
func WithSecretMatchAccept(accept bool) SecretMatchOption {
	return func(f *SecretMatchFilter) {
		f.acceptOnMatch = accept
	}
}

// NewSecretMatchFilter creates a new secret match filter.
func NewSecretMatchFilter(opts ...SecretMatchOption) *SecretMatchFilter {
	f := &SecretMatchFilter{
		patterns: DefaultSecretPatterns(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSecretMatchFilterFromProperties binds AcceptOnMatch and Patterns, a
// comma separated list of built-in pattern names.
func NewSecretMatchFilterFromProperties(props properties.Properties) (*SecretMatchFilter, error) {
	f := NewSecretMatchFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")

	if raw := props.Get("Patterns"); raw != "" {
		byName := make(map[string]SecretPattern, len(f.patterns))
		for _, p := range f.patterns {
			byName[p.Name] = p
		}
		var selected []SecretPattern
		for _, name := range splitList(raw) {
			p, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("Patterns: unknown secret pattern %q", name)
			}
			selected = append(selected, p)
		}
		f.patterns = selected
	}
	return f, nil
}

func (f *SecretMatchFilter) Name() string { return "secret_match" }

func (f *SecretMatchFilter) Decide(ev *api.Event) api.Result {
	if ev.Message == "" {
		return api.ResultNeutral
	}
	if _, ok := f.Match(ev.Message); ok {
		return onMatch(f.acceptOnMatch)
	}
	return api.ResultNeutral
}

// Match returns the name of the first pattern found in text.
func (f *SecretMatchFilter) Match(text string) (string, bool) {
	for _, p := range f.patterns {
		if p.Regex.MatchString(text) {
			return p.Name, true
		}
	}
	return "", false
}
