package models

import "strconv"

// Translation keys for the messages attached to errors and warnings. The core
// only emits keys; rendering text is the translator's job.
const (
	MessageSecurityPattern      = "import.validation.security_pattern"
	MessageSQLInjectionPattern  = "import.validation.sql_injection_pattern"
	MessageNotAnExport          = "import.validation.not_an_export"
	MessageUnsupportedVersion   = "import.validation.unsupported_version"
	MessageOutdatedVersion      = "import.validation.outdated_version"
	MessageMissingField         = "import.validation.missing_field"
	MessageInvalidType          = "import.validation.invalid_type"
	MessageOutOfRange           = "import.validation.out_of_range"
	MessageInvalidStop          = "import.validation.invalid_stop"
	MessageInvalidCity          = "import.validation.invalid_city"
	MessageInvalidLanguage      = "import.validation.invalid_language"
	MessageDuplicateStop        = "import.validation.duplicate_stop"
	MessageTooManyStops         = "import.validation.too_many_stops"
	MessageUnknownStopReference = "import.validation.unknown_stop_reference"
	MessageInconsistentMetadata = "import.validation.inconsistent_metadata"
	MessageMissingExportOptions = "import.validation.missing_export_settings"
	MessageUnusualWalkingTime   = "import.validation.unusual_walking_time"
	MessageFastRefresh          = "import.validation.fast_refresh"
	MessageManyDepartures       = "import.validation.many_departures"
	MessageFileEmpty            = "import.file.empty"
	MessageFileTooLarge         = "import.file.too_large"
	MessageFileType             = "import.file.invalid_type"
	MessageFileEncoding         = "import.file.invalid_encoding"
	MessageInvalidJSON          = "import.file.invalid_json"
	MessageReadFailed           = "import.file.read_failed"

	RecommendationUpdateExport   = "import.recommendation.reexport"
	RecommendationWalkingTime    = "import.recommendation.check_walking_time"
	RecommendationRefresh        = "import.recommendation.increase_refresh"
	RecommendationDepartures     = "import.recommendation.reduce_departures"
	RecommendationExportSettings = "import.recommendation.add_export_settings"

	ConflictPositionDescription = "import.conflict.position"
	ConflictPositionResolution  = "import.conflict.position_resolution"
)

// MessageKeys lists every key above. Used to verify translation catalogs.
var MessageKeys = []string{
	MessageSecurityPattern, MessageSQLInjectionPattern, MessageNotAnExport,
	MessageUnsupportedVersion, MessageOutdatedVersion, MessageMissingField,
	MessageInvalidType, MessageOutOfRange, MessageInvalidStop, MessageInvalidCity,
	MessageInvalidLanguage, MessageDuplicateStop, MessageTooManyStops,
	MessageUnknownStopReference, MessageInconsistentMetadata, MessageMissingExportOptions,
	MessageUnusualWalkingTime, MessageFastRefresh, MessageManyDepartures,
	MessageFileEmpty, MessageFileTooLarge, MessageFileType, MessageFileEncoding,
	MessageInvalidJSON, MessageReadFailed,
	RecommendationUpdateExport, RecommendationWalkingTime, RecommendationRefresh,
	RecommendationDepartures, RecommendationExportSettings,
	ConflictPositionDescription, ConflictPositionResolution,
}

// ExcerptLimit bounds the length of offending values copied into errors.
const ExcerptLimit = 50

// Excerpt truncates s to ExcerptLimit runes so attack strings are never
// reflected in full.
func Excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= ExcerptLimit {
		return s
	}
	return string(runes[:ExcerptLimit-3]) + "..."
}

// JoinPath appends a key to a dotted field path.
func JoinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// IndexPath appends an array index to a dotted field path.
func IndexPath(path string, index int) string {
	return path + "[" + strconv.Itoa(index) + "]"
}
