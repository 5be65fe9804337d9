package bundler

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// DefaultCommand runs the webpack wrapper installed in the project.
const DefaultCommand = "npx --no-install actpack-webpack"

// ExecBundler runs an external bundler command. The composed config is
// written to a temp JSON file whose path is appended as the last argument;
// the command must print a JSON Stats document on stdout.
type ExecBundler struct {
	Command string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env    []string
	Logger logr.Logger
}

func NewExecBundler(command, dir string, log logr.Logger) *ExecBundler {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &ExecBundler{Command: command, Dir: dir, Logger: log}
}

func (b *ExecBundler) Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg == nil {
		return nil, errors.New("bundler config is required")
	}
	args, err := parseCommand(b.Command)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode bundler config")
	}
	tmp, err := os.CreateTemp("", "actpack-bundler-*.json")
	if err != nil {
		return nil, errors.Wrap(err, "create bundler config file")
	}
	cfgPath := tmp.Name()
	defer os.Remove(cfgPath)
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrap(err, "write bundler config file")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "write bundler config file")
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], cfgPath)...)
	cmd.Dir = b.Dir
	if len(b.Env) > 0 {
		cmd.Env = append(os.Environ(), b.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	b.Logger.V(1).Info("running bundler", "command", args, "config", cfgPath)
	runErr := cmd.Run()

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) > 0 {
		var stats Stats
		if err := json.Unmarshal(out, &stats); err == nil {
			// a failed run only counts as a compilation result when it reports errors
			if runErr == nil || stats.HasErrors() {
				return &stats, nil
			}
		} else if runErr == nil {
			return nil, errors.Wrap(err, "decode bundler stats")
		}
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, errors.Wrapf(runErr, "bundler %s failed", args[0])
		}
		return nil, errors.Wrapf(runErr, "bundler %s failed: %s", args[0], msg)
	}
	return &Stats{}, nil
}

func parseCommand(raw string) ([]string, error) {
	args, err := shellwords.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse bundler command")
	}
	if len(args) == 0 {
		return nil, errors.New("bundler command must contain at least one argument")
	}
	return args, nil
}
