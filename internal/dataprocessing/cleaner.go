package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"bangreport/pkg/contracts/domain"
)

// DateKeyFormat is the canonical date representation used for join keys
const DateKeyFormat = "2006-01-02"

var (
	// Layouts carrying their own year, tried in order.
	datedLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"1/2/2006",
		"1/2/06",
		"20060102",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
	}

	// Layouts without a year; the season year is applied.
	yearlessLayouts = []string{
		"Jan 2",
		"January 2",
		"1/2",
	}

	doubleheaderSuffix = regexp.MustCompile(`\s*\((\d)\)\s*$`)

	weekdays = map[string]bool{}

	nameSuffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true}
)

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		weekdays[name] = true
		weekdays[name[:3]] = true
	}
	weekdays["tues"] = true
	weekdays["thur"] = true
	weekdays["thurs"] = true
}

// foldSpaces turns every Unicode space (NBSP included) into a single ASCII
// space and trims the ends.
func foldSpaces(raw string) string {
	return strings.Join(strings.FieldsFunc(raw, unicode.IsSpace), " ")
}

// NormalizeDate parses the date formats found across the inputs. Formats
// without a year take year. The bool is false when nothing matched.
func NormalizeDate(raw string, year int) (time.Time, bool) {
	s := foldSpaces(raw)
	if s == "" {
		return time.Time{}, false
	}

	s = doubleheaderSuffix.ReplaceAllString(s, "")
	if i := strings.Index(s, ","); i > 0 && weekdays[strings.ToLower(strings.TrimSpace(s[:i]))] {
		s = strings.TrimSpace(s[i+1:])
	}

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t.Year(), t.Month(), t.Day()), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(year, t.Month(), t.Day()), true
		}
	}

	return time.Time{}, false
}

// GameNumber returns the doubleheader game number from a "(1)"/"(2)" date
// suffix, or 0 when the date has none.
func GameNumber(raw string) int {
	m := doubleheaderSuffix.FindStringSubmatch(foldSpaces(raw))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func dateOnly(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a normalized date as a join key
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}

// foldAccents strips combining marks: "José" becomes "Jose".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// swapLastFirst turns "Altuve, Jose" into "Jose Altuve"
func swapLastFirst(s string) string {
	last, first, ok := strings.Cut(s, ",")
	if !ok {
		return s
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// NormalizeName produces the comparison key for a player name. Accents,
// "Last, First" order, generational suffixes and punctuation are removed
// and the result is lowercased.
func NormalizeName(raw string) string {
	s := swapLastFirst(foldAccents(raw))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '.' || r == '\'' || r == '’' || r == '*' || r == '#' || r == '+':
			// dropped without a gap so "C.J." and "CJ" agree
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !nameSuffixes[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// CleanDisplayName tidies a name for presentation without changing its
// spelling: "Correa, Carlos" becomes "Carlos Correa".
func CleanDisplayName(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "*#+")
	return strings.Join(strings.Fields(swapLastFirst(s)), " ")
}

// DisplayName derives a player name from a game-log file name:
// "jose_altuve" becomes "Jose Altuve".
func DisplayName(fileBase string) string {
	s := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(fileBase)
	// Casers hold state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// ParseHomeAway reads a venue marker. "@" and "away" mean away; an empty
// marker, "vs" or "home" mean home. Anything else is unknown.
func ParseHomeAway(marker string) domain.HomeAway {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "@", "away", "a", "at", "road", "r":
		return domain.Away
	case "", "vs", "vs.", "home", "h":
		return domain.Home
	default:
		return domain.Unknown
	}
}

// MatchKind records how a raw name was resolved
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchAlias
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchAlias:
		return "alias"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// NameMatcher resolves raw names from any source to the normalized keys of
// a known roster.
type NameMatcher struct {
	known   map[string]bool
	byLast  map[string][]string
	aliases map[string]string
}

// NewNameMatcher builds a matcher over the roster names. Alias keys and
// values may be written in any form NormalizeName accepts.
func NewNameMatcher(roster []string, aliases map[string]string) *NameMatcher {
	m := &NameMatcher{
		known:   make(map[string]bool, len(roster)),
		byLast:  make(map[string][]string),
		aliases: make(map[string]string, len(aliases)),
	}

	for _, name := range roster {
		key := NormalizeName(name)
		if key == "" || m.known[key] {
			continue
		}
		m.known[key] = true
		last := lastToken(key)
		m.byLast[last] = append(m.byLast[last], key)
	}

	for from, to := range aliases {
		m.aliases[NormalizeName(from)] = NormalizeName(to)
	}

	return m
}

// Match resolves raw to a roster key. Aliases are consulted first, then the
// exact normalized key, then a fuzzy match on last name and first initial
// that is accepted only when exactly one roster player qualifies.
func (m *NameMatcher) Match(raw string) (string, MatchKind) {
	key := NormalizeName(raw)
	if key == "" {
		return "", MatchNone
	}

	if target, ok := m.aliases[key]; ok && m.known[target] {
		return target, MatchAlias
	}
	if m.known[key] {
		return key, MatchExact
	}

	tokens := strings.Fields(key)
	candidates := m.byLast[tokens[len(tokens)-1]]
	if len(tokens) > 1 {
		initial := []rune(tokens[0])[0]
		var filtered []string
		for _, c := range candidates {
			if []rune(c)[0] == initial {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 1 {
		return candidates[0], MatchFuzzy
	}

	return "", MatchNone
}

func lastToken(key string) string {
	if i := strings.LastIndex(key, " "); i >= 0 {
		return key[i+1:]
	}
	return key
}
