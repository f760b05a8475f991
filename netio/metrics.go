package netio

import (
	"github.com/VictoriaMetrics/metrics"
)

// Process-wide counters for all connections and servers of this library.
// They can be exported with metrics.WritePrometheus from the same module.
var (
	metricConnectionsDialed   = metrics.NewCounter(`tcpio_connections_total{type="dialed"}`)
	metricConnectionsAccepted = metrics.NewCounter(`tcpio_connections_total{type="accepted"}`)
	metricConnectionsClosed   = metrics.NewCounter(`tcpio_connections_closed_total`)

	metricBytesSent     = metrics.NewCounter(`tcpio_bytes_total{direction="sent"}`)
	metricBytesReceived = metrics.NewCounter(`tcpio_bytes_total{direction="received"}`)

	metricPacketsSent     = metrics.NewCounter(`tcpio_packets_total{direction="sent"}`)
	metricPacketsReceived = metrics.NewCounter(`tcpio_packets_total{direction="received"}`)

	metricAcceptErrors = metrics.NewCounter(`tcpio_accept_errors_total`)

	metricPacketSizeSent     = metrics.NewHistogram(`tcpio_packet_size_bytes{direction="sent"}`)
	metricPacketSizeReceived = metrics.NewHistogram(`tcpio_packet_size_bytes{direction="received"}`)
)
