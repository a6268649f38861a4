// Package influxdb records hub telemetry in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Two measurements
// are written, both batched and non-blocking:
//
//	plugin_fetch  tags plugin, mode; fields duration_ms, ok
//	home_delta    tags plugin, mode; field keys
//
// Client satisfies the aggregation service's fetch observer and the change
// poller's publisher interfaces.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
package influxdb
