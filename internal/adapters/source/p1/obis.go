package p1

import "github.com/vshulcz/dsmr-exporter/internal/domain"

type valueKind int

const (
	kindCosem      valueKind = iota // (value[*unit])
	kindTimestamp                   // (YYMMDDhhmmssX)
	kindMBus                        // (YYMMDDhhmmssX)(value*unit)
	kindFailureLog                  // (n)(buffer)(ts)(dur*s)...
)

type obisSpec struct {
	field domain.Field
	kind  valueKind
}

// v5Objects is the DSMR 5 object list.
var v5Objects = map[string]obisSpec{
	"1-3:0.2.8":   {domain.P1MessageHeader, kindCosem},
	"0-0:1.0.0":   {domain.P1MessageTimestamp, kindTimestamp},
	"0-0:96.1.1":  {domain.EquipmentIdentifier, kindCosem},
	"1-0:1.8.1":   {domain.ElectricityUsedTariff1, kindCosem},
	"1-0:1.8.2":   {domain.ElectricityUsedTariff2, kindCosem},
	"1-0:2.8.1":   {domain.ElectricityDeliveredTariff1, kindCosem},
	"1-0:2.8.2":   {domain.ElectricityDeliveredTariff2, kindCosem},
	"0-0:96.14.0": {domain.ElectricityActiveTariff, kindCosem},
	"1-0:1.7.0":   {domain.CurrentElectricityUsage, kindCosem},
	"1-0:2.7.0":   {domain.CurrentElectricityDelivery, kindCosem},
	"0-0:96.7.21": {domain.ShortPowerFailureCount, kindCosem},
	"0-0:96.7.9":  {domain.LongPowerFailureCount, kindCosem},
	"1-0:99.97.0": {domain.PowerEventFailureLog, kindFailureLog},
	"1-0:32.32.0": {domain.VoltageSagL1Count, kindCosem},
	"1-0:52.32.0": {domain.VoltageSagL2Count, kindCosem},
	"1-0:72.32.0": {domain.VoltageSagL3Count, kindCosem},
	"1-0:32.36.0": {domain.VoltageSwellL1Count, kindCosem},
	"1-0:52.36.0": {domain.VoltageSwellL2Count, kindCosem},
	"1-0:72.36.0": {domain.VoltageSwellL3Count, kindCosem},
	"0-0:96.13.0": {domain.TextMessage, kindCosem},
	"1-0:32.7.0":  {domain.InstantaneousVoltageL1, kindCosem},
	"1-0:52.7.0":  {domain.InstantaneousVoltageL2, kindCosem},
	"1-0:72.7.0":  {domain.InstantaneousVoltageL3, kindCosem},
	"1-0:31.7.0":  {domain.InstantaneousCurrentL1, kindCosem},
	"1-0:51.7.0":  {domain.InstantaneousCurrentL2, kindCosem},
	"1-0:71.7.0":  {domain.InstantaneousCurrentL3, kindCosem},
	"1-0:21.7.0":  {domain.InstantaneousActivePowerL1Positive, kindCosem},
	"1-0:41.7.0":  {domain.InstantaneousActivePowerL2Positive, kindCosem},
	"1-0:61.7.0":  {domain.InstantaneousActivePowerL3Positive, kindCosem},
	"1-0:22.7.0":  {domain.InstantaneousActivePowerL1Negative, kindCosem},
	"1-0:42.7.0":  {domain.InstantaneousActivePowerL2Negative, kindCosem},
	"1-0:62.7.0":  {domain.InstantaneousActivePowerL3Negative, kindCosem},
	"0-1:24.1.0":  {domain.DeviceType, kindCosem},
	"0-1:96.1.0":  {domain.EquipmentIdentifierGas, kindCosem},
	"0-1:24.2.1":  {domain.HourlyGasMeterReading, kindMBus},
}
