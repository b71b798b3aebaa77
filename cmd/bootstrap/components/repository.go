package components

import (
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/infra/holdstore"
	repo_impl "beautybook/internal/infra/repository"
	"beautybook/internal/pkg/config"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"
	"beautybook/internal/usecase/shared"
	"beautybook/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			shared.NewPgxTxRunner,
			fx.As(new(shared.TxRunner)),
		),
		// Reservation
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(commands.ReservationRepository)),
			fx.As(new(queries.ReservationReader)),
		),
		// Payment
		fx.Annotate(
			repo_impl.NewPaymentRepository,
			fx.As(new(commands.PaymentRepository)),
			fx.As(new(queries.PaymentReader)),
		),
		// Point ledger
		fx.Annotate(
			repo_impl.NewLedgerRepository,
			fx.As(new(commands.LedgerRepository)),
			fx.As(new(queries.LedgerReader)),
		),
		// Referral
		fx.Annotate(
			repo_impl.NewReferralRepository,
			fx.As(new(commands.ReferralRepository)),
			fx.As(new(queries.ReferralReader)),
		),
		// Catalog
		fx.Annotate(
			repo_impl.NewCatalogRepository,
			fx.As(new(commands.CatalogRepository)),
			fx.As(new(queries.CatalogReader)),
		),
		// Idempotency
		fx.Annotate(
			repo_impl.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		// Outbox
		fx.Annotate(
			repo_impl.NewOutboxRepository,
			fx.As(new(commands.OutboxRepository)),
			fx.As(new(worker.OutboxSource)),
		),
		// Slot holds
		fx.Annotate(
			NewHoldStore,
			fx.As(new(commands.HoldStore)),
			fx.As(new(queries.HoldReader)),
		),
		// Payment gateway
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(gateway.Gateway)),
		),
		NewWebhookVerifier,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewHoldStore(client *redis.Client, cfg config.Config) *holdstore.RedisHoldStore {
	return holdstore.NewRedisHoldStore(client, cfg.Policy.SlotGranularity, cfg.Policy.HoldTTL)
}

func NewPaymentGateway(cfg config.Config) *gateway.HTTPGateway {
	return gateway.NewHTTPGateway(cfg.Gateway)
}

func NewWebhookVerifier(cfg config.Config) *gateway.WebhookVerifier {
	return gateway.NewWebhookVerifier(cfg.Gateway.WebhookSecret)
}
