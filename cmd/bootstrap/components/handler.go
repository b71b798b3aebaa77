package components

import (
	"beautybook/internal/handler"
	"beautybook/internal/handler/api"
	"beautybook/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewAvailabilityHandler,
		api.NewPaymentHandler,
		api.NewPointHandler,
		api.NewReferralHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	reservation *api.ReservationHandler,
	availability *api.AvailabilityHandler,
	payment *api.PaymentHandler,
	point *api.PointHandler,
	referral *api.ReferralHandler,
) handler.Handlers {
	return handler.Handlers{
		Reservation:  reservation,
		Availability: availability,
		Payment:      payment,
		Point:        point,
		Referral:     referral,
	}
}
