package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var meter = otel.Meter("deliveryfood")

// Instruments are created against the global meter, which delegates to the
// provider installed by InitMeterProvider.
var (
	ordersCreated, _     = meter.Int64Counter("orders_created_total", otelmetric.WithDescription("Orders finalized at checkout"))
	orderRevenue, _      = meter.Int64Counter("order_revenue_total", otelmetric.WithDescription("Sum of order totals in currency units"))
	statusTransitions, _ = meter.Int64Counter("order_status_transitions_total", otelmetric.WithDescription("Order status changes"))
	cartMutations, _     = meter.Int64Counter("cart_mutations_total", otelmetric.WithDescription("Cart line writes"))
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

func RecordOrderCreated(ctx context.Context, total int64) {
	ordersCreated.Add(ctx, 1)
	orderRevenue.Add(ctx, total)
}

func RecordStatusTransition(ctx context.Context, from, to string) {
	statusTransitions.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func RecordCartMutation(ctx context.Context, op string) {
	cartMutations.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("op", op)))
}
