package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeObjectID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tboiler", "Tboiler"},
		{"DHW pump/valve starts", "DHWpump__valvestarts"},
		{"Max-rel mod", "Max_relmod"},
		{"OpenTherm version Master", "OpenThermversionMaster"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeObjectID(tt.in), tt.in)
	}
}

func TestDiscoveryNaming(t *testing.T) {
	assert.Equal(t, "Tboiler_s", BuildConfigID("Tboiler", "", "s"))
	assert.Equal(t, "Master_status_CH_enable_m", BuildConfigID("Master_status", "CH_enable", "m"))

	assert.Equal(t, "homeassistant/sensor/OpenThermGW/Tboiler_s/config",
		BuildDiscoveryTopic("homeassistant", "sensor", "OpenThermGW", "Tboiler_s"))
	assert.Equal(t, "otgw_bridge_25_Tboiler_s",
		BuildUniqueID("otgw_bridge", 25, "Tboiler", "", "s"))
	assert.Equal(t, "otgw_bridge_0_Slave_status_Fault_s",
		BuildUniqueID("otgw_bridge", 0, "Slave_status", "Fault", "s"))
}

func TestRegisterTopics(t *testing.T) {
	assert.Equal(t, "otgw/25/s_ra", BuildValueTopic("otgw", 25, "s", "ra"))
	assert.Equal(t, "otgw/25/desc", BuildDescTopic("otgw", 25))
	assert.Equal(t, "otgw/25/d_obj", BuildDataObjectTopic("otgw", 25))
	assert.Equal(t, "otgw/25/rw", BuildRWTopic("otgw", 25))
}

func TestControlTopics(t *testing.T) {
	assert.Equal(t, "otgw/state", BuildBridgeTopic("otgw", "state"))
	assert.Equal(t, "esp/mqtt_ot/master", BuildGatewayTopic("esp/mqtt_ot", "master"))
	assert.Equal(t, "homeassistant/status", BuildHAStatusTopic("homeassistant"))
	assert.Equal(t, "otgw/diagnostic", BuildDiagnosticStateTopic("otgw"))
	assert.Equal(t, "homeassistant/sensor/OpenThermGW/OpenThermGW_diagnostic/config",
		BuildDiagnosticDiscoveryTopic("homeassistant", "OpenThermGW"))
}
