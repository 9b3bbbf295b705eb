package config

var Presets = map[string]map[string]*Config{
	"lorenz": {
		"classic": {
			Model: "lorenz", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 100, Threshold: 20, Range: 5, Detail: true,
		},
		"slow": {
			Model: "lorenz", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 1000, Threshold: 20, Range: 5, Detail: true,
		},
	},
	"panxuzhou": {
		"classic": {
			Model: "panxuzhou", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 100, Threshold: 20, Range: 5, Detail: true,
		},
	},
	"rikitake": {
		"classic": {
			Model: "rikitake", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 100, Threshold: 20, Range: 5, Detail: true,
		},
		"fast": {
			Model: "rikitake", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 10, Threshold: 10, Range: 5, Detail: false,
		},
	},
	"rossler": {
		// Gates 5 and 6 fire rarely here: z hugs zero for long stretches.
		"classic": {
			Model: "rossler", Dt: 0.01, CalibSteps: 100000,
			PeriodMs: 100, Threshold: 10, Range: 5, Detail: true,
		},
	},
}

func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	out := *cfg
	if out.MaxOutput == 0 {
		out.MaxOutput = DefaultMaxOutput
	}
	return &out
}

func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
