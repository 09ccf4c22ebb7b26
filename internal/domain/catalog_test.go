package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_NamesAreExpositionSafe(t *testing.T) {
	for _, e := range Catalog() {
		assert.Equal(t, strings.ToLower(string(e.Field)), e.Name, "metric name derives from field")
		assert.NotEmpty(t, e.Help, e.Name)
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	c := Catalog()
	require.NotEmpty(t, c)
	c[0].Name = "mutated"

	again := Catalog()
	assert.Equal(t, "p1_message_header", again[0].Name)
	assert.Len(t, again, CatalogSize())
}

func TestLookupMetric(t *testing.T) {
	e, ok := LookupMetric("hourly_gas_meter_reading")
	require.True(t, ok)
	assert.Equal(t, HourlyGasMeterReading, e.Field)
	assert.True(t, e.Push)

	_, ok = LookupMetric("not_a_metric")
	assert.False(t, ok)
}

func TestCatalog_PhaseL2L3AreOptional(t *testing.T) {
	required := 0
	for _, e := range Catalog() {
		phase := strings.Contains(e.Name, "_l2_") || strings.Contains(e.Name, "_l3_")
		assert.Equal(t, !phase, e.Required, e.Name)
		if phase {
			assert.Contains(t, e.Help, "single-phase", e.Name)
		} else {
			required++
		}
	}
	assert.Equal(t, 17, required)
}

func TestCatalog_PushAllowListIsSubset(t *testing.T) {
	push := 0
	for _, e := range Catalog() {
		if e.Push {
			push++
		}
	}
	assert.Equal(t, 21, push)
	assert.Less(t, push, CatalogSize())
}
