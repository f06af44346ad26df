package bootstrap

import (
	"pasarlink/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.DispatchConfig { return cfg.Dispatch },
	),
)
