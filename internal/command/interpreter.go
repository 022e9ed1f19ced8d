// Package command resolves a small fixed set of navigation phrases
// without touching the network.
package command

import (
	"fmt"
	"log/slog"
	"strings"
)

// triggers are the phrases that mark an utterance as a navigation request.
var triggers = []string{"navigate to", "go to"}

// destinations is the ordered rule table; the first keyword contained in
// the utterance wins, so precedence is declared here rather than emergent
// from a conditional chain.
var destinations = []struct {
	keyword string
	name    string
	path    string
}{
	{"project", "projects", "/projects"},
	{"about", "about", "/about"},
	{"contact", "contact", "/contact"},
	{"blog", "blog", "/blog"},
	{"home", "home", "/"},
}

type Interpreter struct {
	navigate func(path string)
	announce func(text string)
	log      *slog.Logger
}

func New(navigate, announce func(string), log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	return &Interpreter{
		navigate: navigate,
		announce: announce,
		log:      log,
	}
}

// Process matches text against the rule table. On a match it performs the
// navigation side effect, announces it, and returns a confirmation naming
// the destination. ok is false when the caller should fall through to the
// completion service.
func (i *Interpreter) Process(text string) (reply string, ok bool) {
	lower := strings.ToLower(text)

	if !containsAny(lower, triggers) {
		return "", false
	}

	for _, d := range destinations {
		if !strings.Contains(lower, d.keyword) {
			continue
		}

		i.log.Info("navigation command", "destination", d.name)
		if i.navigate != nil {
			i.navigate(d.path)
		}
		if i.announce != nil {
			i.announce(fmt.Sprintf("Navigating to the %s page.", d.name))
		}
		return fmt.Sprintf("Sure, taking you to the %s page.", d.name), true
	}

	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
