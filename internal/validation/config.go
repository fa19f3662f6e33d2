package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

const (
	configPath = "config"
	stopsPath  = "config.stops"
)

var stopFields = []string{"id", "name", "city", "stopId", "walkingTimeMinutes", "visible", "position"}

func (v *Validator) validateAppConfig(r *report, value any, ctx Context) {
	config, ok := value.(map[string]any)
	if !ok {
		r.invalidType(configPath, value, "object")
		return
	}

	if stops, present := config["stops"]; present {
		v.validateStops(r, stops, ctx)
	} else {
		r.missing(stopsPath)
	}

	validateSettings(r, config)
}

func (v *Validator) validateStops(r *report, value any, ctx Context) {
	stops, ok := value.([]any)
	if !ok {
		r.add(models.ErrorInvalidStopConfig, models.MessageInvalidStop, stopsPath, value, "array")
		return
	}

	if len(stops) > models.MaxStops {
		r.add(models.ErrorValueOutOfRange, models.MessageTooManyStops, stopsPath, len(stops),
			fmt.Sprintf("at most %d stops", models.MaxStops))
	}

	seen := make(map[string]bool, len(stops))
	for i, entry := range stops {
		path := models.IndexPath(stopsPath, i)
		stop, ok := entry.(map[string]any)
		if !ok {
			if ctx.DeepValidation {
				r.add(models.ErrorInvalidStopConfig, models.MessageInvalidStop, path, entry, "object")
			}
			continue
		}

		if ctx.DeepValidation {
			validateStop(r, stop, path)
		}

		if ctx.CheckDuplicates {
			if id, ok := stop["id"].(string); ok {
				if seen[id] {
					r.add(models.ErrorDuplicateStop, models.MessageDuplicateStop, models.JoinPath(path, "id"), id, "unique id")
				}
				seen[id] = true
			}
		}

		if ctx.ValidateReferences && v.references != nil {
			if stopID, ok := stop["stopId"].(string); ok && stopID != "" && !v.references.Has(stopID) {
				r.add(models.ErrorInvalidReference, models.MessageUnknownStopReference,
					models.JoinPath(path, "stopId"), stopID, "known transit stop id")
			}
		}
	}
}

// validateStop reports every missing field, then checks each present field
// on its own.
func validateStop(r *report, stop map[string]any, path string) {
	for _, field := range stopFields {
		if _, present := stop[field]; !present {
			r.missing(models.JoinPath(path, field))
		}
	}

	if value, present := stop["id"]; present {
		checkIdentifier(r, models.JoinPath(path, "id"), value, 0)
	}
	if value, present := stop["name"]; present {
		checkIdentifier(r, models.JoinPath(path, "name"), value, models.MaxStopNameLength)
	}
	if value, present := stop["stopId"]; present {
		checkIdentifier(r, models.JoinPath(path, "stopId"), value, 0)
	}

	if value, present := stop["city"]; present {
		field := models.JoinPath(path, "city")
		if city, ok := value.(string); !ok {
			r.invalidType(field, value, "string")
		} else if !models.City(city).IsValid() {
			r.add(models.ErrorInvalidStopConfig, models.MessageInvalidCity, field, city, citiesExpected())
		}
	}

	if value, present := stop["walkingTimeMinutes"]; present {
		field := models.JoinPath(path, "walkingTimeMinutes")
		minutes, ok := utils.AsNumber(value)
		switch {
		case !ok:
			r.invalidType(field, value, "number")
		case minutes < models.MinWalkingTimeMinutes || minutes > models.MaxWalkingTimeMinutes:
			r.outOfRange(field, minutes, rangeExpected(models.MinWalkingTimeMinutes, models.MaxWalkingTimeMinutes))
		case minutes > models.UnusualWalkingTimeMinutes && minutes < models.MaxWalkingTimeMinutes:
			r.warn(models.WarningUnusualConfiguration, models.MessageUnusualWalkingTime, field, minutes,
				fmt.Sprintf("at most %d", models.UnusualWalkingTimeMinutes), models.RecommendationWalkingTime)
		}
	}

	if value, present := stop["visible"]; present && !utils.IsValidBoolean(value) {
		r.invalidType(models.JoinPath(path, "visible"), value, "boolean")
	}

	if value, present := stop["position"]; present {
		field := models.JoinPath(path, "position")
		position, ok := utils.AsNumber(value)
		switch {
		case !ok:
			r.invalidType(field, value, "non-negative integer")
		case position < 0:
			r.outOfRange(field, position, "non-negative integer")
		case position != math.Trunc(position):
			r.invalidType(field, position, "non-negative integer")
		}
	}
}

// checkIdentifier validates a stop string field. maxLen 0 means unbounded.
func checkIdentifier(r *report, field string, value any, maxLen int) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		r.invalidType(field, value, "non-empty string")
		return
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		r.outOfRange(field, s, fmt.Sprintf("at most %d characters", maxLen))
	}
	if utils.ContainsSQLInjection(s) {
		r.add(models.ErrorInvalidDataType, models.MessageSQLInjectionPattern, field, s, "plain text")
	}
}

func validateSettings(r *report, config map[string]any) {
	if value, present := config[models.SettingDarkMode]; !present {
		r.missing(models.JoinPath(configPath, models.SettingDarkMode))
	} else if !utils.IsValidBoolean(value) {
		r.invalidType(models.JoinPath(configPath, models.SettingDarkMode), value, "boolean")
	}

	if value, present := config[models.SettingRefreshIntervalSeconds]; !present {
		r.missing(models.JoinPath(configPath, models.SettingRefreshIntervalSeconds))
	} else {
		field := models.JoinPath(configPath, models.SettingRefreshIntervalSeconds)
		seconds, ok := utils.AsNumber(value)
		switch {
		case !ok:
			r.invalidType(field, value, "number")
		case seconds < models.MinRefreshIntervalSeconds || seconds > models.MaxRefreshIntervalSeconds:
			r.outOfRange(field, seconds, rangeExpected(models.MinRefreshIntervalSeconds, models.MaxRefreshIntervalSeconds))
		case seconds < models.PerformanceRefreshIntervalSeconds:
			r.warn(models.WarningPerformanceImpact, models.MessageFastRefresh, field, seconds,
				fmt.Sprintf("at least %d", models.PerformanceRefreshIntervalSeconds), models.RecommendationRefresh)
		}
	}

	if value, present := config[models.SettingMaxDeparturesShown]; !present {
		r.missing(models.JoinPath(configPath, models.SettingMaxDeparturesShown))
	} else {
		field := models.JoinPath(configPath, models.SettingMaxDeparturesShown)
		count, ok := utils.AsNumber(value)
		switch {
		case !ok:
			r.invalidType(field, value, "number")
		case count < models.MinDeparturesShown || count > models.MaxDeparturesShown:
			r.outOfRange(field, count, rangeExpected(models.MinDeparturesShown, models.MaxDeparturesShown))
		case count > models.UnusualDeparturesShown:
			r.warn(models.WarningUnusualConfiguration, models.MessageManyDepartures, field, count,
				fmt.Sprintf("at most %d", models.UnusualDeparturesShown), models.RecommendationDepartures)
		}
	}

	if value, present := config[models.SettingLanguage]; !present {
		r.missing(models.JoinPath(configPath, models.SettingLanguage))
	} else {
		field := models.JoinPath(configPath, models.SettingLanguage)
		if lang, ok := value.(string); !ok {
			r.invalidType(field, value, "string")
		} else if !models.Language(lang).IsValid() {
			r.add(models.ErrorInvalidSettings, models.MessageInvalidLanguage, field, lang, languagesExpected())
		}
	}
}

func rangeExpected(min, max int) string {
	return fmt.Sprintf("number in [%d, %d]", min, max)
}

func citiesExpected() string {
	names := make([]string, len(models.SupportedCities))
	for i, c := range models.SupportedCities {
		names[i] = string(c)
	}
	return "one of " + strings.Join(names, ", ")
}

func languagesExpected() string {
	names := make([]string, len(models.SupportedLanguages))
	for i, l := range models.SupportedLanguages {
		names[i] = string(l)
	}
	return "one of " + strings.Join(names, ", ")
}
