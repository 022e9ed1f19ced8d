package session

import "strings"

// actionRules is the ordered keyword table used to derive follow-up
// suggestions from an assistant reply. First occurrence of each keyword
// attaches one action; scan order is fixed so the result is deterministic.
var actionRules = []struct {
	keyword string
	label   string
	path    string
}{
	{"about", "About me", "/about"},
	{"project", "View projects", "/projects"},
	{"contact", "Get in touch", "/contact"},
	{"blog", "Read the blog", "/blog"},
}

// deriveActions scans reply text for topic keywords and returns one
// navigate action per matched topic. Matching is case-insensitive
// substring; best-effort UX sugar, not exact intent detection.
func deriveActions(reply string) []ChatAction {
	lower := strings.ToLower(reply)

	var actions []ChatAction
	for _, r := range actionRules {
		if !strings.Contains(lower, r.keyword) {
			continue
		}
		actions = append(actions, ChatAction{
			Type:  ActionNavigate,
			Label: r.label,
			Data:  r.path,
		})
	}

	return actions
}
