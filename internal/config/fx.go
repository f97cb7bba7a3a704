package config

import "go.uber.org/fx"

// Module wires application configuration and the plan catalog.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewPlanCatalog,
	),
)
