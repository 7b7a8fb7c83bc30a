package generator

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
)

// Module exposes content generator implementation to fx graph.
var Module = fx.Provide(newGenerator)

type generatorParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGenerator(p generatorParams) (ContentGenerator, error) {
	if p.Config.GeneratorAddress == "" {
		p.Logger.Warn("generator address is not set, using template generator")
		return NewTemplateGenerator(), nil
	}
	return NewHTTPClient(p.Config.GeneratorAddress, p.Config.GeneratorTimeout, p.Logger)
}
