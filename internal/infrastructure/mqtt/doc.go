// Package mqtt publishes hub change events to an MQTT broker.
//
// The broker is optional. When enabled, every delta the change poller
// detects is published as JSON on graylogic/hub/delta/{plugin} (demo
// deltas on graylogic/hub/demo/delta/{plugin}), so home automation
// software can react without polling the HTTP API.
//
// # Topics
//
//	graylogic/hub/status              retained online/offline + LWT
//	graylogic/hub/delta/{plugin}      real change events, QoS from config
//	graylogic/hub/demo/delta/{plugin} demo change events
//
// # Security Considerations
//
//   - TLS should be enabled for remote brokers (cfg.Broker.TLS=true)
//   - Credentials come from GRAYLOGIC_MQTT_USERNAME / GRAYLOGIC_MQTT_PASSWORD
//   - Payloads carry device state, never backend credentials
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	poller.AddPublisher(mqtt.NewDeltaPublisher(client, client.QoS()))
package mqtt
