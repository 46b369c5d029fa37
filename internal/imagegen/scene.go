package imagegen

import "strings"

type sceneAxis struct {
	key     string
	format  string
	phrases map[string]string
	value   func(SceneSettings) string
}

// sceneAxes maps each scene setting to its phrase table. Values missing from
// a table are interpolated verbatim.
var sceneAxes = []sceneAxis{
	{
		key:    "pose",
		format: "Model in %s pose. ",
		phrases: map[string]string{
			"frontal":    "full frontal view",
			"lateral":    "side profile view",
			"3-4":        "3/4 angle view",
			"costas":     "back view",
			"sentado":    "seated pose",
			"caminhando": "walking pose",
		},
		value: func(s SceneSettings) string { return s.Pose },
	},
	{
		key:    "scenario",
		format: "Shot in %s. ",
		phrases: map[string]string{
			"studio":           "professional studio setting",
			"rua":              "urban street environment",
			"praia":            "beach setting with sand",
			"parque":           "outdoor park environment",
			"indoor":           "indoor home setting",
			"white-background": "clean white background",
		},
		value: func(s SceneSettings) string { return s.Scenario },
	},
	{
		key:    "lighting",
		format: "With %s. ",
		phrases: map[string]string{
			"studio":      "professional studio lighting",
			"natural":     "natural daylight",
			"dramatica":   "dramatic high-contrast lighting",
			"golden-hour": "warm golden hour lighting",
			"soft":        "soft diffused lighting",
		},
		value: func(s SceneSettings) string { return s.Lighting },
	},
	{
		key:    "style",
		format: "%s photography. ",
		phrases: map[string]string{
			"editorial":    "editorial magazine style",
			"comercial":    "commercial catalog style",
			"casual":       "casual lifestyle style",
			"lifestyle":    "natural lifestyle photography",
			"high-fashion": "high fashion runway style",
		},
		value: func(s SceneSettings) string { return s.Style },
	},
}

// ScenePhrase resolves a single scene value for the named axis.
func ScenePhrase(axis, value string) string {
	value = strings.TrimSpace(value)
	for _, a := range sceneAxes {
		if a.key != axis {
			continue
		}
		if phrase, ok := a.phrases[value]; ok {
			return phrase
		}
		return value
	}
	return value
}
