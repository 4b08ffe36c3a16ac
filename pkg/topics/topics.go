// Package topics builds every MQTT topic and identifier the bridge uses.
// It has no dependencies so that discovery, bridge and transport packages
// share one naming scheme without import cycles.
package topics

import (
	"fmt"
	"strings"
)

var objectIDReplacer = strings.NewReplacer("/", "__", "-", "_", " ", "")

// SanitizeObjectID makes a data object name usable in topics and ids:
// "/" becomes "__", "-" becomes "_" and spaces are removed
func SanitizeObjectID(name string) string {
	return objectIDReplacer.Replace(name)
}

// BuildConfigID constructs the config id of a discovery entity
// Pattern: {object}[_{flag}]_{suffix}
func BuildConfigID(object, flag, suffix string) string {
	id := SanitizeObjectID(object)
	if flag != "" {
		id += "_" + flag
	}
	return id + "_" + suffix
}

// BuildDiscoveryTopic constructs the discovery config topic of an entity
// Pattern: {prefix}/{component}/{node_id}/{config_id}/config
func BuildDiscoveryTopic(prefix, component, nodeID, configID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", prefix, component, nodeID, configID)
}

// BuildUniqueID constructs the unique id of an entity
// Pattern: {uid_prefix}_{register}_{object}[_{flag}]_{suffix}
func BuildUniqueID(uidPrefix string, registerID uint8, object, flag, suffix string) string {
	return fmt.Sprintf("%s_%d_%s", uidPrefix, registerID, BuildConfigID(object, flag, suffix))
}

// BuildValueTopic constructs the topic carrying decoded register values
// Pattern: {prefix}/{register}/{suffix}_{msg_type}
func BuildValueTopic(prefix string, registerID uint8, suffix, msgType string) string {
	return fmt.Sprintf("%s/%d/%s_%s", prefix, registerID, suffix, msgType)
}

// BuildDescTopic constructs the retained description topic of a register
// Pattern: {prefix}/{register}/desc
func BuildDescTopic(prefix string, registerID uint8) string {
	return fmt.Sprintf("%s/%d/desc", prefix, registerID)
}

// BuildDataObjectTopic constructs the retained data object topic of a register
// Pattern: {prefix}/{register}/d_obj
func BuildDataObjectTopic(prefix string, registerID uint8) string {
	return fmt.Sprintf("%s/%d/d_obj", prefix, registerID)
}

// BuildRWTopic constructs the retained read/write capability topic of a register
// Pattern: {prefix}/{register}/rw
func BuildRWTopic(prefix string, registerID uint8) string {
	return fmt.Sprintf("%s/%d/rw", prefix, registerID)
}

// BuildBridgeTopic constructs a bridge control or status topic
// Pattern: {prefix}/{leaf} with leaf one of state, trial, dump, cmd
func BuildBridgeTopic(prefix, leaf string) string {
	return fmt.Sprintf("%s/%s", prefix, leaf)
}

// BuildGatewayTopic constructs a topic of the monitored OpenTherm gateway
// Pattern: {otgw_prefix}/{leaf} with leaf one of state, master, slave, active, temp, cmd
func BuildGatewayTopic(prefix, leaf string) string {
	return fmt.Sprintf("%s/%s", prefix, leaf)
}

// BuildHAStatusTopic constructs the Home Assistant birth/will topic
// Pattern: {discovery_prefix}/status
func BuildHAStatusTopic(discoveryPrefix string) string {
	return fmt.Sprintf("%s/status", discoveryPrefix)
}

// BuildDiagnosticDiscoveryTopic constructs discovery topic for the bridge diagnostic sensor
// Pattern: {prefix}/sensor/{node_id}/{node_id}_diagnostic/config
func BuildDiagnosticDiscoveryTopic(prefix, nodeID string) string {
	return fmt.Sprintf("%s/sensor/%s/%s_diagnostic/config", prefix, nodeID, nodeID)
}

// BuildDiagnosticStateTopic constructs state topic for the bridge diagnostic sensor
// Pattern: {prefix}/diagnostic
func BuildDiagnosticStateTopic(prefix string) string {
	return fmt.Sprintf("%s/diagnostic", prefix)
}

// BuildDiagnosticUniqueID constructs unique ID for the bridge diagnostic sensor
// Pattern: {uid_prefix}_diagnostic
func BuildDiagnosticUniqueID(uidPrefix string) string {
	return fmt.Sprintf("%s_diagnostic", uidPrefix)
}
