package mapper

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

func fullTelegram() domain.Telegram {
	readings := make(map[domain.Field]domain.Reading)
	for i, e := range domain.Catalog() {
		readings[e.Field] = domain.Reading{Value: strconv.FormatFloat(float64(i)+0.5, 'f', 3, 64)}
	}
	return domain.NewTelegram("/ISK5\\2M550T-1012", time.Now(), readings)
}

func TestMap_IdentityLaw(t *testing.T) {
	t.Parallel()
	tg := fullTelegram()

	for _, strict := range []bool{false, true} {
		res, err := New(strict).Map(tg)
		require.NoError(t, err)
		assert.Empty(t, res.Missing)
		assert.Empty(t, res.Unparseable)

		cat := domain.Catalog()
		require.Len(t, res.Samples, len(cat))
		for i, s := range res.Samples {
			assert.Equal(t, cat[i].Name, s.Name)
			assert.Equal(t, cat[i].Field, s.Field)
			r, _ := tg.Get(s.Field)
			want, _ := strconv.ParseFloat(r.Value, 64)
			assert.Equal(t, want, s.Value)
		}
	}
}

func TestMap_MissingField(t *testing.T) {
	t.Parallel()
	tg := domain.NewTelegram("", time.Now(), map[domain.Field]domain.Reading{
		domain.ElectricityUsedTariff1: {Value: "122.976"},
		domain.LongPowerFailureCount:  {Value: "2"},
	})

	t.Run("lenient", func(t *testing.T) {
		res, err := New(false).Map(tg)
		require.NoError(t, err)
		require.Len(t, res.Samples, 2)
		assert.Equal(t, "electricity_used_tariff_1", res.Samples[0].Name)
		assert.Equal(t, 122.976, res.Samples[0].Value)
		assert.Equal(t, "long_power_failure_count", res.Samples[1].Name)
		assert.Len(t, res.Missing, domain.CatalogSize()-2)
		assert.Contains(t, res.Missing, domain.HourlyGasMeterReading)

		dropped := res.Dropped()
		require.Len(t, dropped, 1)
		assert.ErrorIs(t, dropped[0], domain.ErrIncompleteTelegram)
	})

	t.Run("strict", func(t *testing.T) {
		_, err := New(true).Map(tg)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIncompleteTelegram)
		var inc *domain.IncompleteTelegramError
		require.True(t, errors.As(err, &inc))
		assert.Contains(t, inc.Missing, domain.HourlyGasMeterReading)
		assert.NotContains(t, inc.Missing, domain.VoltageSagL2Count)
	})
}

func TestMap_StrictIgnoresOptionalPhases(t *testing.T) {
	t.Parallel()
	readings := make(map[domain.Field]domain.Reading)
	for _, e := range domain.Catalog() {
		if e.Required {
			readings[e.Field] = domain.Reading{Value: "1"}
		}
	}
	tg := domain.NewTelegram("/KFM5KAIFA-METER", time.Now(), readings)

	res, err := New(true).Map(tg)
	require.NoError(t, err)
	assert.Len(t, res.Samples, len(readings))
	assert.Contains(t, res.Missing, domain.InstantaneousActivePowerL3Negative)

	delete(readings, domain.InstantaneousVoltageL1)
	_, err = New(true).Map(domain.NewTelegram("/KFM5KAIFA-METER", time.Now(), readings))
	var inc *domain.IncompleteTelegramError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, []domain.Field{domain.InstantaneousVoltageL1}, inc.Missing)
}

func TestMap_UnparseableReading(t *testing.T) {
	t.Parallel()
	tg := domain.NewTelegram("", time.Now(), map[domain.Field]domain.Reading{
		domain.ElectricityUsedTariff1:  {Value: "122.976"},
		domain.CurrentElectricityUsage: {Value: "n/a"},
	})

	res, err := New(false).Map(tg)
	require.NoError(t, err)
	require.Len(t, res.Samples, 1)
	assert.Equal(t, "electricity_used_tariff_1", res.Samples[0].Name)

	require.Len(t, res.Unparseable, 1)
	assert.ErrorIs(t, res.Unparseable[0], domain.ErrUnparseableReading)
	var ue *domain.UnparseableReadingError
	require.True(t, errors.As(res.Unparseable[0], &ue))
	assert.Equal(t, domain.CurrentElectricityUsage, ue.Field)
	assert.Equal(t, "n/a", ue.Raw)
}

func TestMap_NoUnitConversion(t *testing.T) {
	t.Parallel()
	tg := domain.NewTelegram("", time.Now(), map[domain.Field]domain.Reading{
		domain.HourlyGasMeterReading: {Value: "00012.345", Unit: domain.UnitCubicMetre},
	})
	res, err := New(false).Map(tg)
	require.NoError(t, err)
	require.Len(t, res.Samples, 1)
	assert.Equal(t, 12.345, res.Samples[0].Value)
}

func TestPushSamples(t *testing.T) {
	t.Parallel()
	in := []domain.MetricSample{
		{Name: "p1_message_header", Field: domain.P1MessageHeader, Value: 50},
		{Name: "electricity_used_tariff_1", Field: domain.ElectricityUsedTariff1, Value: 1},
		{Name: "short_power_failure_count", Field: domain.ShortPowerFailureCount, Value: 3},
		{Name: "hourly_gas_meter_reading", Field: domain.HourlyGasMeterReading, Value: 2},
	}
	out := PushSamples(in)
	require.Len(t, out, 2)
	assert.Equal(t, "electricity_used_tariff_1", out[0].Name)
	assert.Equal(t, "hourly_gas_meter_reading", out[1].Name)
}
