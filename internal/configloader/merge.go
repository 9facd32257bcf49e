package configloader

import "github.com/yaklabco/textsheets/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Sheets: merged by id; an override sheet replaces the base sheet with
//     the same id in place, new sheets are appended
//   - Documents: merged by name the same way
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		result.LogFormat = override.LogFormat
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.MaxLookupDepth != 0 {
		result.MaxLookupDepth = override.MaxLookupDepth
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// false is the zero value, so a later layer can only switch it on.
	if override.ShowHidden {
		result.ShowHidden = true
	}

	result.Sheets = mergeKeyed(base.Sheets, override.Sheets, func(s config.SheetConfig) string { return s.ID })
	result.Documents = mergeKeyed(base.Documents, override.Documents, func(d config.DocumentConfig) string { return d.Name })

	return &result
}

// mergeKeyed merges two ordered lists by key. Base order is kept; override
// entries replace same-key base entries and everything else is appended.
// Only base keys are matched, so duplicate keys within override survive for
// validation to report.
func mergeKeyed[T any](base, override []T, key func(T) string) []T {
	if base == nil && override == nil {
		return nil
	}

	result := make([]T, 0, len(base)+len(override))
	result = append(result, base...)

	index := make(map[string]int, len(result))
	for idx, item := range result {
		if k := key(item); k != "" {
			index[k] = idx
		}
	}

	for _, item := range override {
		k := key(item)
		if idx, ok := index[k]; ok && k != "" {
			result[idx] = item
			continue
		}
		result = append(result, item)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
