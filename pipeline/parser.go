package pipeline

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ParseArgs holds the outcome of command parsing: the matched command name
// and its raw positional values. The format stage coerces Vals in place.
type ParseArgs struct {
	// Name is the command that matched one of the parser's targets.
	Name string
	// Vals are the arguments following the command name. Before
	// formatting every element is a string; afterwards elements carry
	// their coerced types.
	Vals []any

	formatted bool
}

// Formatted reports whether the values have been run through the
// registration's argument specs.
func (a *ParseArgs) Formatted() bool { return a.formatted }

// bannedToken rejects characters that would make command splitting
// ambiguous: quotes, brackets, backslash, alphanumerics and control
// whitespace. Plain space stays legal, it is the usual sep token.
var bannedToken = regexp.MustCompile(`['"\\()\[\]{}a-zA-Z0-9\r\n\t]`)

// CmdParser is the structured form of the first pipeline stage: it extracts
// a command name and arguments from message text. A command is introduced
// by any of the start tokens and its parts are separated by any of the sep
// tokens, e.g. start="." sep=" " parses ".roll 2 6".
type CmdParser struct {
	starts     []string
	seps       []string
	targets    []string
	formatters []*ArgFormatter

	startRe *regexp.Regexp
	sepRe   *regexp.Regexp
}

// NewCmdParser validates the token sets and compiles the parser. Start and
// sep tokens must be non-empty, disjoint, and free of quotes, brackets,
// backslashes, alphanumerics and control whitespace. Targets are the
// command names
// this parser accepts; formatters, when given, are applied positionally to
// the arguments by the format stage.
func NewCmdParser(start, sep []string, targets []string, formatters ...*ArgFormatter) (*CmdParser, error) {
	if len(start) == 0 || len(sep) == 0 {
		return nil, fmt.Errorf("cmd parser needs at least one start and one sep token")
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("cmd parser needs at least one target command name")
	}
	joined := strings.Join(start, "") + strings.Join(sep, "")
	if bannedToken.MatchString(joined) {
		return nil, fmt.Errorf("unsupported character in cmd start/sep tokens %q", joined)
	}
	for _, s := range start {
		if slices.Contains(sep, s) {
			return nil, fmt.Errorf("cmd start token %q also used as sep token", s)
		}
	}
	return &CmdParser{
		starts:     start,
		seps:       sep,
		targets:    targets,
		formatters: formatters,
		startRe:    tokenAlternation(start),
		sepRe:      tokenAlternation(sep),
	}, nil
}

func tokenAlternation(tokens []string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Parse extracts the first command matching one of the parser's targets
// from the message text. A nil result with nil error means the text is not
// one of this parser's commands (silent rejection); a *ParseError means the
// text tried to be a command but was malformed.
func (p *CmdParser) Parse(text string) (*ParseArgs, error) {
	text = strings.Trim(text, " \r\n")
	pieces := p.startRe.Split(text, -1)
	if len(pieces) < 2 {
		// No start token present at all.
		return nil, nil
	}
	// pieces[0] is whatever preceded the first start token; the command
	// must open the text.
	if strings.TrimSpace(pieces[0]) != "" {
		return nil, nil
	}
	sawCommand := false
	for _, piece := range pieces[1:] {
		parts := splitNonEmpty(p.sepRe, piece)
		if len(parts) == 0 {
			continue
		}
		sawCommand = true
		if slices.Contains(p.targets, parts[0]) {
			vals := make([]any, 0, len(parts)-1)
			for _, v := range parts[1:] {
				vals = append(vals, v)
			}
			return &ParseArgs{Name: parts[0], Vals: vals}, nil
		}
	}
	if !sawCommand {
		return nil, &ParseError{Input: text, Reason: "start token with no command name"}
	}
	// Commands were present but none we recognize.
	return nil, nil
}

// Format coerces the parsed values against the parser's argument specs.
// Surplus unformatted values are trimmed to the formatter count. A nil formatter
// slot leaves that position untouched.
func (p *CmdParser) Format(args *ParseArgs) error {
	if args.formatted || len(p.formatters) == 0 {
		return nil
	}
	for i, f := range p.formatters {
		if f == nil {
			continue
		}
		if err := f.format(args, i); err != nil {
			return err
		}
	}
	if len(args.Vals) > len(p.formatters) {
		args.Vals = args.Vals[:len(p.formatters)]
	}
	args.formatted = true
	return nil
}

func splitNonEmpty(re *regexp.Regexp, s string) []string {
	var out []string
	for _, part := range re.Split(s, -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
