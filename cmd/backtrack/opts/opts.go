package opts

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/pkg/config"
)

// RootOpts carries the options shared by all commands. The console
// logger travels on the command context instead.
type RootOpts struct {
	ConfigFile string // Path to the config file, may not exist
}

// LoadConfig resolves the configuration for a command invocation
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
