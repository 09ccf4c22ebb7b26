package domain

import (
	"slices"
	"time"
)

// Field identifies a reading inside a telegram.
type Field string

const (
	P1MessageHeader                    Field = "P1_MESSAGE_HEADER"
	P1MessageTimestamp                 Field = "P1_MESSAGE_TIMESTAMP"
	EquipmentIdentifier                Field = "EQUIPMENT_IDENTIFIER"
	ElectricityUsedTariff1             Field = "ELECTRICITY_USED_TARIFF_1"
	ElectricityUsedTariff2             Field = "ELECTRICITY_USED_TARIFF_2"
	ElectricityDeliveredTariff1        Field = "ELECTRICITY_DELIVERED_TARIFF_1"
	ElectricityDeliveredTariff2        Field = "ELECTRICITY_DELIVERED_TARIFF_2"
	ElectricityActiveTariff            Field = "ELECTRICITY_ACTIVE_TARIFF"
	CurrentElectricityUsage            Field = "CURRENT_ELECTRICITY_USAGE"
	CurrentElectricityDelivery         Field = "CURRENT_ELECTRICITY_DELIVERY"
	LongPowerFailureCount              Field = "LONG_POWER_FAILURE_COUNT"
	ShortPowerFailureCount             Field = "SHORT_POWER_FAILURE_COUNT"
	PowerEventFailureLog               Field = "POWER_EVENT_FAILURE_LOG"
	VoltageSagL1Count                  Field = "VOLTAGE_SAG_L1_COUNT"
	VoltageSagL2Count                  Field = "VOLTAGE_SAG_L2_COUNT"
	VoltageSagL3Count                  Field = "VOLTAGE_SAG_L3_COUNT"
	VoltageSwellL1Count                Field = "VOLTAGE_SWELL_L1_COUNT"
	VoltageSwellL2Count                Field = "VOLTAGE_SWELL_L2_COUNT"
	VoltageSwellL3Count                Field = "VOLTAGE_SWELL_L3_COUNT"
	TextMessage                        Field = "TEXT_MESSAGE"
	InstantaneousVoltageL1             Field = "INSTANTANEOUS_VOLTAGE_L1"
	InstantaneousVoltageL2             Field = "INSTANTANEOUS_VOLTAGE_L2"
	InstantaneousVoltageL3             Field = "INSTANTANEOUS_VOLTAGE_L3"
	InstantaneousCurrentL1             Field = "INSTANTANEOUS_CURRENT_L1"
	InstantaneousCurrentL2             Field = "INSTANTANEOUS_CURRENT_L2"
	InstantaneousCurrentL3             Field = "INSTANTANEOUS_CURRENT_L3"
	InstantaneousActivePowerL1Positive Field = "INSTANTANEOUS_ACTIVE_POWER_L1_POSITIVE"
	InstantaneousActivePowerL2Positive Field = "INSTANTANEOUS_ACTIVE_POWER_L2_POSITIVE"
	InstantaneousActivePowerL3Positive Field = "INSTANTANEOUS_ACTIVE_POWER_L3_POSITIVE"
	InstantaneousActivePowerL1Negative Field = "INSTANTANEOUS_ACTIVE_POWER_L1_NEGATIVE"
	InstantaneousActivePowerL2Negative Field = "INSTANTANEOUS_ACTIVE_POWER_L2_NEGATIVE"
	InstantaneousActivePowerL3Negative Field = "INSTANTANEOUS_ACTIVE_POWER_L3_NEGATIVE"
	DeviceType                         Field = "DEVICE_TYPE"
	EquipmentIdentifierGas             Field = "EQUIPMENT_IDENTIFIER_GAS"
	HourlyGasMeterReading              Field = "HOURLY_GAS_METER_READING"
)

// Unit is the physical unit a meter attaches to a reading.
type Unit string

const (
	UnitNone       Unit = ""
	UnitKWh        Unit = "kWh"
	UnitKW         Unit = "kW"
	UnitVolt       Unit = "V"
	UnitAmpere     Unit = "A"
	UnitCubicMetre Unit = "m3"
	UnitSecond     Unit = "s"
)

// PowerFailureEvent is one entry of the long power failure log.
type PowerFailureEvent struct {
	EndedAt  time.Time
	Duration time.Duration
}

// Reading is a decoded value with its unit. Value is kept as the meter sent it;
// numeric coercion happens when readings are mapped to metrics.
type Reading struct {
	Value     string
	Unit      Unit
	Timestamp time.Time
	Events    []PowerFailureEvent
}

// Telegram is an immutable snapshot of every reading decoded from one frame.
type Telegram struct {
	header     string
	receivedAt time.Time
	readings   map[Field]Reading
}

// NewTelegram copies readings into a new Telegram.
func NewTelegram(header string, receivedAt time.Time, readings map[Field]Reading) Telegram {
	cp := make(map[Field]Reading, len(readings))
	for f, r := range readings {
		if len(r.Events) > 0 {
			r.Events = slices.Clone(r.Events)
		}
		cp[f] = r
	}
	return Telegram{header: header, receivedAt: receivedAt, readings: cp}
}

// Header returns the meter identification line without the leading slash.
func (t Telegram) Header() string { return t.header }

// ReceivedAt is the wall-clock time the frame trailer was read.
func (t Telegram) ReceivedAt() time.Time { return t.receivedAt }

// Get returns the reading for f.
func (t Telegram) Get(f Field) (Reading, bool) {
	r, ok := t.readings[f]
	return r, ok
}

// Len reports how many readings the telegram carries.
func (t Telegram) Len() int { return len(t.readings) }

// Fields lists the fields present in the telegram in lexical order.
func (t Telegram) Fields() []Field {
	out := make([]Field, 0, len(t.readings))
	for f := range t.readings {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
