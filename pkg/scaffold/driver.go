package scaffold

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("scaffold: aborted")

// InputConfig configures a text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a single or multi-select prompt.
type SelectConfig struct {
	Message  string
	Options  []string
	Default  string
	Defaults []string
	Help     string
}

// PromptDriver abstracts the terminal so the scaffold flow can be tested
// without one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (string, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]string, error)
}

// SurveyDriver prompts on the controlling terminal.
type SurveyDriver struct{}

var _ PromptDriver = SurveyDriver{}

// Input asks for a line of text.
func (SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validator := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validator(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

// Select asks for one option.
func (SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.Default != "" {
		prompt.Default = cfg.Default
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

// MultiSelect asks for any number of options.
func (SurveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if len(cfg.Defaults) > 0 {
		prompt.Default = cfg.Defaults
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
