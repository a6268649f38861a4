package mqtt

import "fmt"

// TopicPrefix is the base of every hub topic.
const TopicPrefix = "graylogic/hub"

// Topics builds hub topic names.
//
//	mqtt.Topics{}.Delta("lighting", false) // "graylogic/hub/delta/lighting"
//	mqtt.Topics{}.Delta("lighting", true)  // "graylogic/hub/demo/delta/lighting"
type Topics struct{}

// Delta returns the topic change events of pluginID are published on.
// Demo events live under their own subtree so real consumers never see them.
func (Topics) Delta(pluginID string, demo bool) string {
	if demo {
		return fmt.Sprintf("%s/demo/delta/%s", TopicPrefix, pluginID)
	}
	return fmt.Sprintf("%s/delta/%s", TopicPrefix, pluginID)
}

// AllDeltas is the wildcard subscription for every real plugin's deltas.
func (Topics) AllDeltas() string {
	return TopicPrefix + "/delta/+"
}

// Status is the retained online/offline topic of the hub itself.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}
