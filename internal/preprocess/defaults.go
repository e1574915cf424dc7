// internal/preprocess/defaults.go
package preprocess

// FillDefaults fills missing numeric and categorical fields with defaults.
//
// For every key in either default table, a missing key or an explicit nil in
// the raw input takes the default; any other provided value is copied
// unchanged. Keys in raw that belong to neither table (patient_id and
// friends) are carried through untouched. Pure and total: never fails.
func FillDefaults(
	raw map[string]interface{},
	numericDefaults map[string]float64,
	categoricalDefaults map[string]interface{},
) map[string]interface{} {
	filled := make(map[string]interface{}, len(raw)+len(numericDefaults)+len(categoricalDefaults))
	for k, v := range raw {
		filled[k] = v
	}

	for key, def := range numericDefaults {
		if v, ok := filled[key]; !ok || v == nil {
			filled[key] = def
		}
	}

	for key, def := range categoricalDefaults {
		if v, ok := filled[key]; !ok || v == nil {
			filled[key] = def
		}
	}

	return filled
}
