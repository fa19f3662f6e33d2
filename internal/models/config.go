package models

// City identifies one of the transit networks the departure monitor can query.
type City string

const (
	CityWuerzburg City = "wue"
	CityMunich    City = "muc"
)

// SupportedCities lists every City accepted in a stop configuration.
var SupportedCities = []City{CityWuerzburg, CityMunich}

func (c City) IsValid() bool {
	for _, supported := range SupportedCities {
		if c == supported {
			return true
		}
	}
	return false
}

// Language is the UI language of the departure monitor.
type Language string

const (
	LanguageGerman  Language = "de"
	LanguageEnglish Language = "en"
)

// SupportedLanguages lists every Language accepted in the global settings.
var SupportedLanguages = []Language{LanguageGerman, LanguageEnglish}

func (l Language) IsValid() bool {
	for _, supported := range SupportedLanguages {
		if l == supported {
			return true
		}
	}
	return false
}

// Limits enforced on stops and global settings.
const (
	MaxStops = 50

	MaxStopNameLength = 255

	MinWalkingTimeMinutes     = 0
	MaxWalkingTimeMinutes     = 60
	UnusualWalkingTimeMinutes = 30

	MinRefreshIntervalSeconds         = 10
	MaxRefreshIntervalSeconds         = 3600
	PerformanceRefreshIntervalSeconds = 30

	MinDeparturesShown     = 1
	MaxDeparturesShown     = 50
	UnusualDeparturesShown = 20
)

// StopConfig is one monitored transit stop.
type StopConfig struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	City               City    `json:"city"`
	StopID             string  `json:"stopId"`
	WalkingTimeMinutes float64 `json:"walkingTimeMinutes"`
	Visible            bool    `json:"visible"`
	Position           int     `json:"position"`
}

// AppConfig is the live application configuration: the ordered stop list plus
// the global display settings.
type AppConfig struct {
	Stops                  []StopConfig `json:"stops"`
	DarkMode               bool         `json:"darkMode"`
	RefreshIntervalSeconds float64      `json:"refreshIntervalSeconds"`
	MaxDeparturesShown     float64      `json:"maxDeparturesShown"`
	Language               Language     `json:"language"`
}

// DefaultAppConfig returns the configuration of a fresh installation.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Stops:                  []StopConfig{},
		DarkMode:               false,
		RefreshIntervalSeconds: 60,
		MaxDeparturesShown:     10,
		Language:               LanguageGerman,
	}
}

// Clone returns a deep copy so callers can hand out snapshots without sharing
// the stop slice.
func (c AppConfig) Clone() AppConfig {
	out := c
	if c.Stops != nil {
		out.Stops = make([]StopConfig, len(c.Stops))
		copy(out.Stops, c.Stops)
	}
	return out
}

// StopByID returns the stop with the given id, if present.
func (c AppConfig) StopByID(id string) (StopConfig, bool) {
	for _, stop := range c.Stops {
		if stop.ID == id {
			return stop, true
		}
	}
	return StopConfig{}, false
}
