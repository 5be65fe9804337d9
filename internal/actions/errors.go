package actions

import "fmt"

// ConfigurationError reports a project that cannot be built at all.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Reason
}

// ErrNoBackend is returned before any target is computed when the project
// declares no backend.
var ErrNoBackend = &ConfigurationError{Reason: "cannot build actions, app has no backend"}

// MissingSourceError reports an action whose function path does not exist.
type MissingSourceError struct {
	// Path is the function path as declared in the manifest.
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s is not a valid file or directory", e.Path)
}

func (e *MissingSourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidLayoutError reports a folder action with no resolvable entry file.
type InvalidLayoutError struct {
	// Dir is the action directory relative to the project root.
	Dir string
}

func (e *InvalidLayoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("the directory %s must contain either a package.json with a 'main' flag or an index.js file at its root", e.Dir)
}

// CompilationError carries the serialized errors reported by the bundler.
type CompilationError struct {
	Payload string
}

func (e *CompilationError) Error() string {
	if e == nil {
		return ""
	}
	return "action build failed, bundler compilation errors:\n" + e.Payload
}

// BuildInvocationError reports a bundler that failed without producing
// compilation stats.
type BuildInvocationError struct {
	Err error
}

func (e *BuildInvocationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *BuildInvocationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TargetError wraps the failure of one target with its name.
type TargetError struct {
	Target Target
	Err    error
}

func (e *TargetError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("build action %s: %v", e.Target.Name(), e.Err)
}

func (e *TargetError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
