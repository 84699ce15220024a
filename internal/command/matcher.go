package command

import "strings"

type phrase struct {
	text   string
	action Action
}

// Longer category phrases come first so an utterance like "turn off
// sidewalk alerts" never falls through to a bare camera command.
var phrases = []phrase{
	{"disable sidewalk", ActionDisableSidewalk},
	{"turn off sidewalk", ActionDisableSidewalk},
	{"enable sidewalk", ActionEnableSidewalk},
	{"turn on sidewalk", ActionEnableSidewalk},
	{"stop", ActionStopCamera},
	{"start", ActionStartCamera},
}

// Match maps a recognized utterance to an action, first match wins.
// Further phrases in the same utterance are ignored.
func Match(text string) (Action, bool) {
	lowered := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lowered, p.text) {
			return p.action, true
		}
	}
	return "", false
}
