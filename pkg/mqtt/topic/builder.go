package topic

import (
	"errors"
	"fmt"
	"strings"
)

// Set is the immutable group of topics a sensor agent publishes to.
// It is built once at startup and never mutated afterwards.
type Set struct {
	Temperature string
	Humidity    string
	Status      string
}

// NewSet builds the topic set for the given namespace.
func NewSet(namespace string) Set {
	return Set{
		Temperature: build(namespace, SuffixTemperature),
		Humidity:    build(namespace, SuffixHumidity),
		Status:      build(namespace, SuffixStatus),
	}
}

// ValidateNamespace reports whether namespace can prefix publish topics.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return errors.New("topic namespace is required")
	}
	if strings.ContainsAny(namespace, Wildcard+MultiWildcard) {
		return fmt.Errorf("topic namespace %q must not contain wildcards", namespace)
	}
	if strings.HasPrefix(namespace, "/") || strings.HasSuffix(namespace, "/") {
		return fmt.Errorf("topic namespace %q must not start or end with '/'", namespace)
	}
	if strings.ContainsRune(namespace, 0) {
		return fmt.Errorf("topic namespace %q contains a NUL character", namespace)
	}
	return nil
}

// build is a private helper to construct the final topic string.
// Pattern: {namespace}/{suffix}
func build(namespace, suffix string) string {
	return fmt.Sprintf("%s/%s", namespace, suffix)
}
