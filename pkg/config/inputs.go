package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Inputs is the environment a GitHub Actions step runs with.
type Inputs struct {
	// NitpickerFile is the `nitpickerFile` action input.
	NitpickerFile string `env:"INPUT_NITPICKERFILE"`
	// Token is the `token` action input.
	Token string `env:"INPUT_TOKEN"`

	EventName  string `env:"GITHUB_EVENT_NAME"`
	EventPath  string `env:"GITHUB_EVENT_PATH"`
	Repository string `env:"GITHUB_REPOSITORY"`
	SHA        string `env:"GITHUB_SHA"`
	Output     string `env:"GITHUB_OUTPUT"`
	APIURL     string `env:"GITHUB_API_URL, default=https://api.github.com"`

	BotLogin string `env:"NITPICKER_BOT_LOGIN"`
}

// LoadInputs reads Inputs from the process environment.
func LoadInputs(ctx context.Context) (*Inputs, error) {
	return LoadInputsWith(ctx, envconfig.OsLookuper())
}

// LoadInputsWith reads Inputs through lookuper.
func LoadInputsWith(ctx context.Context, lookuper envconfig.Lookuper) (*Inputs, error) {
	var in Inputs
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &in,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to read action inputs: %w", err)
	}
	return &in, nil
}

// RequireRun reports the first input a GitHub run cannot proceed without.
func (in *Inputs) RequireRun() error {
	switch {
	case in.Token == "":
		return fmt.Errorf("missing input: token")
	case in.EventName == "":
		return fmt.Errorf("missing environment: GITHUB_EVENT_NAME")
	case in.EventPath == "":
		return fmt.Errorf("missing environment: GITHUB_EVENT_PATH")
	}
	return nil
}
