// Package shell provides the builtin plugin that runs an external command
// whenever a change batch is dispatched to it.
package shell

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jamesdabbs/guard/command"
	"github.com/jamesdabbs/guard/config"
	"github.com/jamesdabbs/guard/errors"
	"github.com/jamesdabbs/guard/logging"
	"github.com/jamesdabbs/guard/plugin"
)

// Options are the guardfile options the shell plugin understands.
type Options struct {
	// Command is the program and its fixed arguments.
	Command []string `mapstructure:"command"`

	// AppendPaths appends the batch's changed paths to the command line.
	AppendPaths bool `mapstructure:"append_paths"`

	// Dir is the working directory for the command; empty means inherit.
	Dir string `mapstructure:"dir"`

	// RunOnEmpty runs the command even for an empty batch (e.g. the
	// console's "run all" request).
	RunOnEmpty bool `mapstructure:"run_on_empty"`
}

// Shell runs a configured command per dispatched batch.
type Shell struct {
	name   string
	opts   Options
	runner *command.Runner
	logger *logrus.Entry
}

// New builds a shell plugin from guardfile options.
func New(name string, options map[string]interface{}, runner *command.Runner) (plugin.Plugin, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, errors.ConfigInvalid("shell plugin '" + name + "': " + err.Error())
	}
	if len(opts.Command) == 0 {
		return nil, errors.ConfigInvalid("shell plugin '" + name + "' requires a command")
	}

	return &Shell{
		name:   name,
		opts:   opts,
		runner: runner,
		logger: logging.NewLogger("shell"),
	}, nil
}

// Name returns the plugin's instance name.
func (s *Shell) Name() string {
	return s.name
}

// OnChanges runs the configured command for the batch.
func (s *Shell) OnChanges(ctx context.Context, batch plugin.Batch) error {
	if batch.Empty() && !s.opts.RunOnEmpty {
		return nil
	}

	args := append([]string(nil), s.opts.Command[1:]...)
	if s.opts.AppendPaths {
		args = append(args, batch.Paths()...)
	}

	s.logger.WithField("plugin", s.name).Debugf("Running for %d changed paths", len(batch.Paths()))
	return s.runner.Run(ctx, s.opts.Dir, s.opts.Command[0], args...)
}
