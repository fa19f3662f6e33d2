package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validStop() map[string]any {
	return map[string]any{
		"id":                 "s1",
		"name":               "Hauptbahnhof",
		"city":               "wue",
		"stopId":             "WUE1",
		"walkingTimeMinutes": float64(5),
		"visible":            true,
		"position":           float64(0),
	}
}

func validAppConfig() map[string]any {
	return map[string]any{
		"stops":                  []any{validStop()},
		"darkMode":               false,
		"refreshIntervalSeconds": float64(60),
		"maxDeparturesShown":     float64(10),
		"language":               "de",
	}
}

func validExport() map[string]any {
	return map[string]any{
		"schemaVersion":   "1.0.0",
		"exportTimestamp": "2024-03-01T12:00:00.000Z",
		"exportedBy":      "departure-monitor",
		"metadata": map[string]any{
			"stopCount": float64(1),
			"language":  "de",
			"source":    "departure-monitor",
		},
		"config": validAppConfig(),
		"exportSettings": map[string]any{
			"includeStops":    true,
			"includeSettings": true,
			"includeMetadata": true,
		},
	}
}

func TestPrimitiveGuards(t *testing.T) {
	assert.True(t, IsValidObject(map[string]any{}))
	assert.False(t, IsValidObject([]any{}))
	assert.False(t, IsValidObject(nil))

	assert.True(t, IsValidString("x"))
	assert.False(t, IsValidString("   "))
	assert.False(t, IsValidString(1.0))

	assert.True(t, IsValidNumber(1.5))
	assert.True(t, IsValidNumber(3))
	assert.False(t, IsValidNumber(math.NaN()))
	assert.False(t, IsValidNumber(math.Inf(1)))
	assert.False(t, IsValidNumber("5"))

	assert.True(t, IsValidNumberInRange(60.0, 0, 60))
	assert.False(t, IsValidNumberInRange(60.5, 0, 60))

	assert.True(t, IsNonNegativeInteger(0.0))
	assert.False(t, IsNonNegativeInteger(1.5))
	assert.False(t, IsNonNegativeInteger(-1.0))

	assert.True(t, IsValidBoolean(false))
	assert.False(t, IsValidBoolean("true"))

	assert.True(t, IsValidArray([]any{}))
	assert.False(t, IsValidArray(map[string]any{}))
}

func TestIsValidTimestamp(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "canonical", value: "2024-03-01T12:00:00.000Z", want: true},
		{name: "missing milliseconds", value: "2024-03-01T12:00:00Z", want: false},
		{name: "offset instead of Z", value: "2024-03-01T12:00:00.000+00:00", want: false},
		{name: "date only", value: "2024-03-01", want: false},
		{name: "impossible date", value: "2024-02-30T12:00:00.000Z", want: false},
		{name: "not a string", value: 1709294400000.0, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidTimestamp(tc.value))
		})
	}
}

func TestFormatTimestampRoundTrips(t *testing.T) {
	ts := FormatTimestamp(time.Date(2024, 3, 1, 13, 0, 0, 123456789, time.FixedZone("CET", 3600)))

	assert.Equal(t, "2024-03-01T12:00:00.123Z", ts)
	assert.True(t, IsValidTimestamp(ts))
}

func TestEnumGuards(t *testing.T) {
	assert.True(t, IsValidCity("wue"))
	assert.False(t, IsValidCity("WUE"))
	assert.True(t, IsValidLanguage("en"))
	assert.False(t, IsValidLanguage(nil))
	assert.True(t, IsValidSchemaVersion("1.0.0"))
	assert.False(t, IsValidSchemaVersion("9.9.9"))
}

func TestContainsSQLInjection(t *testing.T) {
	hostile := []string{
		"x'; DROP TABLE stops",
		"' OR '1'='1",
		"name -- comment",
		"a /* b */",
		"1 UNION SELECT password",
		"1 union all select *",
	}
	for _, s := range hostile {
		assert.True(t, ContainsSQLInjection(s), s)
	}

	for _, s := range []string{"Hauptbahnhof", "Sanderring-Süd", "de:09663:1"} {
		assert.False(t, ContainsSQLInjection(s), s)
	}
}

func TestStopConfigGuards(t *testing.T) {
	assert.True(t, IsValidStopConfig(validStop()))

	missing := validStop()
	delete(missing, "position")
	assert.False(t, IsValidStopConfig(missing))
	assert.True(t, IsValidPartialStopConfig(missing))

	badWalk := validStop()
	badWalk["walkingTimeMinutes"] = float64(61)
	assert.False(t, IsValidPartialStopConfig(badWalk))

	injected := validStop()
	injected["id"] = "s1' OR '1'='1"
	assert.False(t, IsValidStopConfig(injected))

	scripted := validStop()
	scripted["name"] = "<script>alert(1)</script>"
	assert.False(t, IsValidStopConfig(scripted))

	assert.True(t, IsValidPartialStopConfig(map[string]any{}))
	assert.False(t, IsValidPartialStopConfig("stop"))
}

func TestAppConfigGuards(t *testing.T) {
	assert.True(t, IsValidAppConfig(validAppConfig()))

	partial := map[string]any{"darkMode": true}
	assert.True(t, IsValidPartialAppConfig(partial))
	assert.False(t, IsValidAppConfig(partial))

	badRefresh := validAppConfig()
	badRefresh["refreshIntervalSeconds"] = float64(5)
	assert.False(t, IsValidPartialAppConfig(badRefresh))

	tooMany := validAppConfig()
	stops := make([]any, 51)
	for i := range stops {
		stops[i] = validStop()
	}
	tooMany["stops"] = stops
	assert.False(t, IsValidAppConfig(tooMany))
}

func TestIsValidConfigExport(t *testing.T) {
	assert.True(t, IsValidConfigExport(validExport()))

	testCases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{name: "unsupported version", mutate: func(e map[string]any) { e["schemaVersion"] = "9.9.9" }},
		{name: "non-canonical timestamp", mutate: func(e map[string]any) { e["exportTimestamp"] = "yesterday" }},
		{name: "missing metadata", mutate: func(e map[string]any) { delete(e, "metadata") }},
		{name: "missing export settings", mutate: func(e map[string]any) { delete(e, "exportSettings") }},
		{name: "exportedBy not a string", mutate: func(e map[string]any) { e["exportedBy"] = 1.0 }},
		{name: "config not an object", mutate: func(e map[string]any) { e["config"] = []any{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExport()
			tc.mutate(e)
			assert.False(t, IsValidConfigExport(e))
		})
	}
}
