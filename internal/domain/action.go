package domain

import (
	"strconv"
	"strings"
)

// ActionType identifies what a UI control asks for
type ActionType int

const (
	ActionNoop ActionType = iota
	ActionPage
	ActionRandom
	ActionReroll
)

// Selector picks the random-search flavour
type Selector string

const (
	SelectGenre   Selector = "genre"
	SelectCartoon Selector = "cartoon"
	SelectAnime   Selector = "anime"
)

const (
	tokenNoop   = "noop"
	tokenPage   = "page"
	tokenRandom = "random"
	tokenReroll = "reroll"
	tokenSep    = ":"
)

// Action is the decoded form of a control's action token.
//
// Wire format:
//
//	page:<list-id>:<index>
//	random:<kind>:genre:<genre-id> | random:<kind>:cartoon | random:<kind>:anime
//	reroll:<random token>
//	noop
type Action struct {
	Type ActionType

	// Page
	ListID string
	Index  int

	// Random / Reroll
	Kind     MediaKind
	Selector Selector
	GenreID  int
}

// NoopAction returns the action carried by inert controls
func NoopAction() Action {
	return Action{Type: ActionNoop}
}

// PageAction returns the action that shows page index of a list
func PageAction(listID string, index int) Action {
	return Action{Type: ActionPage, ListID: listID, Index: index}
}

// RandomAction returns the action that samples a random title
func RandomAction(kind MediaKind, sel Selector, genreID int) Action {
	a := Action{Type: ActionRandom, Kind: kind, Selector: sel}
	if sel == SelectGenre {
		a.GenreID = genreID
	}
	return a
}

// Reroll wraps a random action so it can be replayed for a fresh sample
func (a Action) Reroll() Action {
	a.Type = ActionReroll
	return a
}

// Random unwraps a reroll back into the random action it replays
func (a Action) Random() Action {
	if a.Type == ActionReroll {
		a.Type = ActionRandom
	}
	return a
}

// Encode renders the action as a token string
func (a Action) Encode() string {
	switch a.Type {
	case ActionPage:
		return strings.Join([]string{tokenPage, a.ListID, strconv.Itoa(a.Index)}, tokenSep)
	case ActionRandom:
		parts := []string{tokenRandom, string(a.Kind), string(a.Selector)}
		if a.Selector == SelectGenre {
			parts = append(parts, strconv.Itoa(a.GenreID))
		}
		return strings.Join(parts, tokenSep)
	case ActionReroll:
		return tokenReroll + tokenSep + a.Random().Encode()
	default:
		return tokenNoop
	}
}

// String implements fmt.Stringer
func (a Action) String() string {
	return a.Encode()
}

// ParseAction decodes a token. Anything malformed yields ok == false.
func ParseAction(token string) (Action, bool) {
	head, rest, _ := strings.Cut(token, tokenSep)
	switch head {
	case tokenNoop:
		if token != tokenNoop {
			return Action{}, false
		}
		return NoopAction(), true
	case tokenPage:
		return parsePage(rest)
	case tokenRandom:
		return parseRandom(rest)
	case tokenReroll:
		inner, ok := ParseAction(rest)
		if !ok || inner.Type != ActionRandom {
			return Action{}, false
		}
		return inner.Reroll(), true
	default:
		return Action{}, false
	}
}

func parsePage(rest string) (Action, bool) {
	parts := strings.Split(rest, tokenSep)
	if len(parts) != 2 || parts[0] == "" {
		return Action{}, false
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Action{}, false
	}
	return PageAction(parts[0], index), true
}

func parseRandom(rest string) (Action, bool) {
	parts := strings.Split(rest, tokenSep)
	if len(parts) < 2 {
		return Action{}, false
	}
	kind, ok := ParseMediaKind(parts[0])
	if !ok {
		return Action{}, false
	}

	switch Selector(parts[1]) {
	case SelectGenre:
		if len(parts) != 3 {
			return Action{}, false
		}
		genreID, err := strconv.Atoi(parts[2])
		if err != nil || genreID <= 0 {
			return Action{}, false
		}
		return RandomAction(kind, SelectGenre, genreID), true
	case SelectCartoon, SelectAnime:
		if len(parts) != 2 {
			return Action{}, false
		}
		return RandomAction(kind, Selector(parts[1]), 0), true
	default:
		return Action{}, false
	}
}
