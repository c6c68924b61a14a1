package starfield

import "fmt"

// ConfigurationError reports an invalid build parameter or a malformed
// per-point buffer. It is fatal: the layer (and the scene) is not built.
type ConfigurationError struct {
	Component string // e.g. "layer 2", "sampler"
	Param     string
	Value     any
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("invalid %s=%v: %s", e.Param, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s=%v: %s", e.Component, e.Param, e.Value, e.Reason)
}

func configErr(component, param string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Component: component, Param: param, Value: value, Reason: reason}
}
