package opentherm

const (
	unitCelsius  = "°C"
	unitPercent  = "%"
	unitBar      = "bar"
	unitFlowRate = "L/min"
	unitKW       = "kW"

	classTemperature = "temperature"
	classPressure    = "pressure"
	classFlowRate    = "volume_flow_rate"
	classPower       = "power"
	classPowerFactor = "power_factor"
	classHeat        = "heat"
)

func obj(name, desc string) DataObject {
	return DataObject{Name: name, Description: desc}
}

func temp(name, desc string) DataObject {
	return DataObject{Name: name, Description: desc, Unit: unitCelsius, DeviceClass: classTemperature}
}

func percent(name, desc string) DataObject {
	return DataObject{Name: name, Description: desc, Unit: unitPercent}
}

func on(name string) Flag {
	return Flag{Name: name, Enabled: true}
}

func heat(name string) Flag {
	return Flag{Name: name, Enabled: true, DeviceClass: classHeat}
}

func reserved(n int) []Flag {
	out := make([]Flag, n)
	for i := range out {
		out[i] = Flag{Name: "reserved"}
	}
	return out
}

func flags(fs ...[]Flag) []Flag {
	var out []Flag
	for _, f := range fs {
		out = append(out, f...)
	}
	return out
}

func single(id uint8, kind DecoderKind, access Access, o DataObject) RegisterSpec {
	return RegisterSpec{ID: id, DataObjects: []DataObject{o}, Access: access, Kind: kind}
}

func pair(id uint8, kind DecoderKind, access Access, hi, lo DataObject) RegisterSpec {
	return RegisterSpec{ID: id, DataObjects: []DataObject{hi, lo}, Access: access, Kind: kind}
}

// specTable follows the data-id overview of OpenTherm protocol v2.2.
// Ids 113, 114, 128, 200, 202, 204 and 220 show up on real installations
// but are undocumented; they take the placeholder path.
var specTable = []RegisterSpec{
	{
		ID: 0,
		DataObjects: []DataObject{
			obj("Master_status", "Master Status flags"),
			obj("Slave_status", "Slave Status flags"),
		},
		Access: ReadOnly,
		Kind:   Flags8Flags8,
		HighFlags: flags(
			[]Flag{heat("CH_enable"), on("DHW_enable"), on("Cooling_enable"), on("OTC_active"), on("CH2_enable")},
			reserved(3),
		),
		LowFlags: flags(
			[]Flag{on("Fault"), on("CH_mode"), on("DHW_mode"), heat("Flame_status"),
				on("Cooling_status"), on("CH2_mode"), on("diagnostic")},
			reserved(1),
		),
	},
	single(1, Fixed8_8, WriteOnly, temp("TSet", "Control setpoint ie CH water temperature setpoint (°C)")),
	{
		ID: 2,
		DataObjects: []DataObject{
			obj("M_Config", "Master Configuration Flags"),
			obj("M_MemberIDcode", "Master MemberID Code"),
		},
		Access:    WriteOnly,
		Kind:      Flags8U8,
		HighFlags: reserved(8),
	},
	{
		ID: 3,
		DataObjects: []DataObject{
			obj("S_Config", "Slave Configuration Flags"),
			obj("S_MemberIDcode", "Slave MemberID Code"),
		},
		Access: ReadOnly,
		Kind:   Flags8U8,
		HighFlags: flags(
			[]Flag{on("DHW_present"), on("Control_type"), on("Cooling_config"), on("DHW_config"),
				on("Master_low__off_and_pump_control"), on("CH2_present")},
			reserved(2),
		),
	},
	pair(4, U8U8Pair, WriteOnly, obj("Command_H", "Remote Command High"), obj("Command_L", "Remote Command Low")),
	{
		ID: 5,
		DataObjects: []DataObject{
			obj("ASF_flags", "Application-specific fault flags"),
			obj("OEM_fault_code", "OEM fault code"),
		},
		Access: ReadOnly,
		Kind:   Flags8U8,
		HighFlags: flags(
			[]Flag{on("Service_request"), on("Lockout_request"), on("Low_water_press"), on("Gas_flame_fault"),
				on("Air_pressure_fault"), on("Water_over_temp")},
			reserved(2),
		),
	},
	{
		ID: 6,
		DataObjects: []DataObject{
			obj("RBP_transfer_enable", "Remote boiler parameter transfer-enable flags"),
			obj("RBP_rw", "Remote boiler parameter read/write flags"),
		},
		Access:    ReadOnly,
		Kind:      Flags8Flags8,
		HighFlags: flags([]Flag{on("DHW_setpoint_transfer"), on("max_CHsetpoint_transfer")}, reserved(6)),
		LowFlags:  flags([]Flag{on("DHW_setpoint_rw"), on("max_CHsetpoint_rw")}, reserved(6)),
	},
	single(7, Fixed8_8, WriteOnly, percent("Cooling_control", "Cooling control signal (%)")),
	single(8, Fixed8_8, WriteOnly, temp("TsetCH2", "Control setpoint for 2e CH circuit (°C)")),
	single(9, Fixed8_8, ReadOnly, temp("TrOverride", "Remote override room setpoint")),
	pair(10, U8U8Pair, ReadOnly,
		obj("TSP_H", "HNumber of Transparent-Slave-Parameters supported by slave"),
		obj("TSP_L", "LNumber of Transparent-Slave-Parameters supported by slave")),
	pair(11, U8U8Pair, ReadWrite,
		obj("TSP_index", "Index number"),
		obj("TSP_value", "Value of referred-to transparent slave parameter")),
	pair(12, U8U8Pair, ReadOnly,
		obj("FHB_size_H", "HSize of Fault-History-Buffer supported by slave"),
		obj("FHB_size_L", "LSize of Fault-History-Buffer supported by slave")),
	pair(13, U8U8Pair, ReadOnly,
		obj("FHB_index", "Index number"),
		obj("FHB_value", "Value of referred-to fault-history buffer entry.")),
	single(14, Fixed8_8, WriteOnly, percent("Max_rel_mod_level_setting", "Maximum relative modulation level setting (%)")),
	pair(15, U8U8Pair, ReadOnly,
		DataObject{Name: "Max_Capacity", Description: "Maximum boiler capacity (kW)", Unit: unitKW, DeviceClass: classPower},
		DataObject{Name: "Min_Mod_Level", Description: "Minimum boiler modulation level (%)", Unit: unitPercent, DeviceClass: classPowerFactor}),
	single(16, Fixed8_8, WriteOnly, temp("TrSet", "Room Setpoint (°C)")),
	single(17, Fixed8_8, ReadOnly, percent("Rel_mod_level", "Relative Modulation Level (%)")),
	single(18, Fixed8_8, ReadOnly,
		DataObject{Name: "CH_pressure", Description: "Water pressure in CH circuit (bar)", Unit: unitBar, DeviceClass: classPressure}),
	single(19, Fixed8_8, ReadOnly,
		DataObject{Name: "DHW_flow_rate", Description: "Water flow rate in DHW circuit (litres/minute)", Unit: unitFlowRate, DeviceClass: classFlowRate}),
	{
		ID: 20,
		DataObjects: []DataObject{
			obj("Day_of_week", "Day of Week"),
			obj("Hours", "Time of Day hours"),
			obj("Minutes", "Time of Day minutes"),
		},
		Access: ReadWrite,
		Kind:   DayTime,
	},
	pair(21, U8U8Pair, ReadWrite, obj("Month", "Calendar month"), obj("Day_of_Month", "Calendar day of month")),
	single(22, U16, ReadWrite, obj("Year", "Calendar year")),
	single(23, Fixed8_8, WriteOnly, temp("TrSetCH2", "Room Setpoint for 2nd CH circuit (°C)")),
	single(24, Fixed8_8, WriteOnly, temp("Tr", "Room temperature (°C)")),
	single(25, Fixed8_8, ReadOnly, temp("Tboiler", "Boiler flow water temperature (°C)")),
	single(26, Fixed8_8, ReadOnly, temp("Tdhw", "DHW temperature (°C)")),
	single(27, Fixed8_8, ReadOnly, temp("Toutside", "Outside temperature (°C)")),
	single(28, Fixed8_8, ReadOnly, temp("Tret", "Return water temperature (°C)")),
	single(29, Fixed8_8, ReadOnly, temp("Tstorage", "Solar storage temperature (°C)")),
	single(30, Fixed8_8, ReadOnly, temp("Tcollector", "Solar collector temperature (°C)")),
	single(31, Fixed8_8, ReadOnly, temp("TflowCH2", "Flow water temperature CH2 circuit (°C)")),
	single(32, Fixed8_8, ReadOnly, temp("Tdhw2", "Domestic hot water temperature 2 (°C)")),
	single(33, S16, ReadOnly, temp("Texhaust", "Boiler exhaust temperature (°C)")),
	pair(48, S8S8Pair, ReadOnly,
		temp("TdhwSet_UB", "DHW setpoint upper bound for adjustment (°C)"),
		temp("TdhwSet_LB", "DHW setpoint lower bound for adjustment (°C)")),
	pair(49, S8S8Pair, ReadOnly,
		temp("MaxTSet_UB", "Max CH water setpoint upper bound for adjustment (°C)"),
		temp("MaxTSet_LB", "Max CH water setpoint lower bound for adjustment (°C)")),
	pair(50, S8S8Pair, ReadOnly,
		obj("Hcratio_UB", "OTC heat curve ratio upper bound for adjustment"),
		obj("Hcratio_LB", "OTC heat curve ratio lower bound for adjustment")),
	single(56, Fixed8_8, ReadWrite, temp("TdhwSet", "DHW setpoint (°C) (Remote parameter 1)")),
	single(57, Fixed8_8, ReadWrite, temp("MaxTSet", "Max CH water setpoint (°C) (Remote parameters 2)")),
	single(58, Fixed8_8, ReadWrite, temp("Hcratio", "OTC heat curve ratio (°C) (Remote parameter 3)")),
	{
		ID: 100,
		DataObjects: []DataObject{
			obj("Remote_override_function", "Function of manual and program changes in master and remote room setpoint."),
			obj("Remote_override_flags", "Manual and program change priority flags."),
		},
		Access:   ReadOnly,
		Kind:     RemoteOverride,
		LowFlags: flags([]Flag{on("Manual_change_priority"), on("Program_change_priority")}, reserved(6)),
	},
	single(115, U16, ReadOnly, obj("OEM diagnostic code", "OEM-specific diagnostic/service code")),
	single(116, U16, ReadWrite, obj("Burner starts", "Number of starts burner")),
	single(117, U16, ReadWrite, obj("CH pump starts", "Number of starts CH pump")),
	single(118, U16, ReadWrite, obj("DHW pump/valve starts", "Number of starts DHW pump/valve")),
	single(119, U16, ReadWrite, obj("DHW burner starts", "Number of starts burner during DHW mode")),
	single(120, U16, ReadWrite, obj("Burner operation hours", "Number of hours that burner is in operation (i.e. flame on)")),
	single(121, U16, ReadWrite, obj("CH pump operation hours", "Number of hours that CH pump has been running")),
	single(122, U16, ReadWrite, obj("DHW pump/valve operation hours",
		"Number of hours that DHW pump has been running or DHW valve has been opened")),
	single(123, U16, ReadWrite, obj("DHW burner operation hours", "Number of hours that burner is in operation during DHW mode")),
	single(124, Fixed8_8, WriteOnly, obj("OpenTherm version Master",
		"The implemented version of the OpenTherm Protocol Specification in the master.")),
	single(125, Fixed8_8, ReadOnly, obj("OpenTherm version Slave",
		"The implemented version of the OpenTherm Protocol Specification in the slave.")),
	pair(126, U8U8Pair, WriteOnly, obj("Master_version", "Master product version number"), obj("Master_type", "Master product version type")),
	pair(127, U8U8Pair, ReadOnly, obj("Slave_version", "Slave product version number"), obj("Slave_type", "Slave product version type")),
}
