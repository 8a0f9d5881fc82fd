package rxregex

import (
	"errors"
	"fmt"
)

// ErrUnknownFlag indicates a flag letter outside {i, x, u, g} was used on a
// rule or context regex. Fatal at parse time; never raised at request time.
var ErrUnknownFlag = errors.New("unknown flag")

// Flags holds the flag letters parsed from a rule or context regex.
// Flags are single-letter tokens, in the style of the original source's
// PCRE_CASELESS/PCRE_EXTENDED/PCRE_UCP/"replace_all" bits: i, x, u, g.
type Flags struct {
	CaseInsensitive bool // i
	Extended        bool // x: unescaped whitespace and '#' comments stripped before compiling
	Unicode         bool // u: the match subject is NFC-normalized before matching (see Regex.Subject); compilation is unchanged
	Global          bool // g: not a regexp-engine flag, consulted by the substitution routine
}

// ParseFlags consumes a run of flag letters and returns the flags they
// represent. An unrecognized letter is a fatal configuration error, matching
// the original parser's "Unknown flag %c" behavior.
func ParseFlags(letters string) (Flags, error) {
	var f Flags
	for _, c := range letters {
		switch c {
		case 'i':
			f.CaseInsensitive = true
		case 'x':
			f.Extended = true
		case 'u':
			f.Unicode = true
		case 'g':
			f.Global = true
		default:
			return Flags{}, fmt.Errorf("%w: %q", ErrUnknownFlag, c)
		}
	}
	return f, nil
}
