package config

const (
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultChain is the chain used when a command does not name one.
	DefaultChain = "default"
)

// DefaultLogDir returns the default decision log directory path.
func DefaultLogDir() string {
	return "~/.logfilter/decisions"
}
