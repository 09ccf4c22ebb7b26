package domain

// CatalogEntry describes one exported metric and the reading it is taken from.
type CatalogEntry struct {
	Name  string
	Help  string
	Field Field
	// Push marks entries forwarded to the time-series sink.
	Push bool
	// Required marks entries every DSMR v5 meter reports, single-phase ones
	// included. Strict mapping rejects telegrams missing any of them.
	Required bool
}

// catalog is the single table of exported metrics. Adding a metric means adding
// a line here. L2 and L3 entries stay on single-phase meters so the exposed
// series set never depends on the hardware; their gauges just stay at 0.
var catalog = []CatalogEntry{
	{Name: "p1_message_header", Help: "Message header count", Field: P1MessageHeader, Required: true},
	{Name: "electricity_used_tariff_1", Help: "Electricity used tariff 1 (kWh)", Field: ElectricityUsedTariff1, Push: true, Required: true},
	{Name: "electricity_used_tariff_2", Help: "Electricity used tariff 2 (kWh)", Field: ElectricityUsedTariff2, Push: true, Required: true},
	{Name: "electricity_delivered_tariff_1", Help: "Electricity delivered tariff 1 (kWh)", Field: ElectricityDeliveredTariff1, Push: true, Required: true},
	{Name: "electricity_delivered_tariff_2", Help: "Electricity delivered tariff 2 (kWh)", Field: ElectricityDeliveredTariff2, Push: true, Required: true},
	{Name: "electricity_active_tariff", Help: "Electricity active tariff", Field: ElectricityActiveTariff, Push: true, Required: true},
	{Name: "current_electricity_usage", Help: "Current electricity usage (kW)", Field: CurrentElectricityUsage, Push: true, Required: true},
	{Name: "current_electricity_delivery", Help: "Current electricity delivery (kW)", Field: CurrentElectricityDelivery, Push: true, Required: true},
	{Name: "long_power_failure_count", Help: "Long power failure count", Field: LongPowerFailureCount, Push: true, Required: true},
	{Name: "short_power_failure_count", Help: "Short power failure count", Field: ShortPowerFailureCount, Required: true},
	{Name: "voltage_sag_l1_count", Help: "Voltage sag L1 count", Field: VoltageSagL1Count, Push: true, Required: true},
	{Name: "voltage_sag_l2_count", Help: "Voltage sag L2 count, 0 on single-phase meters", Field: VoltageSagL2Count, Push: true},
	{Name: "voltage_sag_l3_count", Help: "Voltage sag L3 count, 0 on single-phase meters", Field: VoltageSagL3Count, Push: true},
	{Name: "voltage_swell_l1_count", Help: "Voltage swell L1 count", Field: VoltageSwellL1Count, Push: true, Required: true},
	{Name: "voltage_swell_l2_count", Help: "Voltage swell L2 count, 0 on single-phase meters", Field: VoltageSwellL2Count, Push: true},
	{Name: "voltage_swell_l3_count", Help: "Voltage swell L3 count, 0 on single-phase meters", Field: VoltageSwellL3Count, Push: true},
	{Name: "instantaneous_voltage_l1", Help: "Instantaneous voltage L1 (V)", Field: InstantaneousVoltageL1, Required: true},
	{Name: "instantaneous_current_l1", Help: "Instantaneous current L1 (A)", Field: InstantaneousCurrentL1, Required: true},
	{Name: "instantaneous_active_power_l1_positive", Help: "Instantaneous active power l1 positive (kW)", Field: InstantaneousActivePowerL1Positive, Push: true, Required: true},
	{Name: "instantaneous_active_power_l2_positive", Help: "Instantaneous active power l2 positive (kW), 0 on single-phase meters", Field: InstantaneousActivePowerL2Positive, Push: true},
	{Name: "instantaneous_active_power_l3_positive", Help: "Instantaneous active power l3 positive (kW), 0 on single-phase meters", Field: InstantaneousActivePowerL3Positive, Push: true},
	{Name: "instantaneous_active_power_l1_negative", Help: "Instantaneous active power l1 negative (kW)", Field: InstantaneousActivePowerL1Negative, Push: true, Required: true},
	{Name: "instantaneous_active_power_l2_negative", Help: "Instantaneous active power l2 negative (kW), 0 on single-phase meters", Field: InstantaneousActivePowerL2Negative, Push: true},
	{Name: "instantaneous_active_power_l3_negative", Help: "Instantaneous active power l3 negative (kW), 0 on single-phase meters", Field: InstantaneousActivePowerL3Negative, Push: true},
	{Name: "hourly_gas_meter_reading", Help: "Hourly gas meter reading (m3)", Field: HourlyGasMeterReading, Push: true, Required: true},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, e := range catalog {
		if _, dup := idx[e.Name]; dup {
			panic("duplicate catalog metric " + e.Name)
		}
		idx[e.Name] = i
	}
	return idx
}()

// Catalog returns a copy of the exported metric table in declaration order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// LookupMetric resolves a catalog entry by metric name.
func LookupMetric(name string) (CatalogEntry, bool) {
	i, ok := catalogIndex[name]
	if !ok {
		return CatalogEntry{}, false
	}
	return catalog[i], true
}

// CatalogSize is the number of exported metrics.
func CatalogSize() int { return len(catalog) }
