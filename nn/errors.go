package nn

import "fmt"

// ConfigError reports an invalid architecture configuration. It is raised
// at assembly time, before any forward call, and aborts construction.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ShapeError reports a tensor shape incompatible with the assembled
// topology. It is raised at forward time and names the failing stage.
type ShapeError struct {
	Stage string
	Msg   string
}

func (e *ShapeError) Error() string { return e.Stage + ": " + e.Msg }

func shapeErrorf(stage, format string, args ...interface{}) error {
	return &ShapeError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}
