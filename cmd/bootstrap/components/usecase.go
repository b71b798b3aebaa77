package components

import (
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.PolicyConfig {
		return cfg.Policy
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationCommands,
		commands.NewPaymentCommands,
		commands.NewPointCommands,
		commands.NewReferralCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewAvailabilityQueries,
		queries.NewPointQueries,
		queries.NewReferralQueries,
	),
)
