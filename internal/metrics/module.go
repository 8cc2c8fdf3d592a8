package metrics

import "go.uber.org/fx"

// Module provides the Prometheus registry and order collectors.
var Module = fx.Provide(
	NewRegistry,
	NewOrderMetrics,
)
