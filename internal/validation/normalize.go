package validation

// NormalizeStops returns a copy of input in which every stop object missing
// "visible" gets true and every stop missing "position" gets its index. The
// envelope, config object, stop list and touched stops are copied; input is
// never modified. Inputs of any other shape are returned unchanged.
func NormalizeStops(input any) any {
	envelope, ok := input.(map[string]any)
	if !ok {
		return input
	}
	config, ok := envelope["config"].(map[string]any)
	if !ok {
		return input
	}
	stops, ok := config["stops"].([]any)
	if !ok {
		return input
	}

	normalized := make([]any, len(stops))
	for i, entry := range stops {
		stop, ok := entry.(map[string]any)
		if !ok {
			normalized[i] = entry
			continue
		}
		_, hasVisible := stop["visible"]
		_, hasPosition := stop["position"]
		if hasVisible && hasPosition {
			normalized[i] = stop
			continue
		}

		copied := shallowCopy(stop)
		if !hasVisible {
			copied["visible"] = true
		}
		if !hasPosition {
			copied["position"] = float64(i)
		}
		normalized[i] = copied
	}

	newConfig := shallowCopy(config)
	newConfig["stops"] = normalized
	newEnvelope := shallowCopy(envelope)
	newEnvelope["config"] = newConfig
	return newEnvelope
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
