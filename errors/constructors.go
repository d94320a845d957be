package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *GuardError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("guardfile not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *GuardError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid guardfile: %s", reason))
}

// NoWatchRoots creates a fatal setup error for an empty watch root set
func NoWatchRoots() *GuardError {
	return New(ErrCodeNoWatchRoots, "no watch roots could be resolved")
}

// SetupFailed wraps a configuration evaluation failure
func SetupFailed(err error) *GuardError {
	return Wrap(err, ErrCodeSetupFailed, "configuration evaluation failed")
}

// ReloadFailed wraps a configuration reevaluation failure
func ReloadFailed(err error) *GuardError {
	return Wrap(err, ErrCodeReloadFailed, "configuration reevaluation failed")
}

// DispatchFailed wraps a plugin failure during change dispatch
func DispatchFailed(plugin string, err error) *GuardError {
	return Wrap(err, ErrCodeDispatchFailed,
		fmt.Sprintf("plugin '%s' failed to handle changes", plugin)).
		WithDetail("plugin", plugin)
}

// PluginUnknown creates an error for an unregistered plugin factory
func PluginUnknown(name string) *GuardError {
	return New(ErrCodePluginUnknown, fmt.Sprintf("unknown plugin '%s'", name)).
		WithDetail("plugin", name)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *GuardError {
	guardErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		guardErr = guardErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return guardErr
}
