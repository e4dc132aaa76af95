// Package itinerary implements the extraction core: parsing assistant
// messages into normalized itinerary records, detecting save offers and
// confirmations, locating summary messages and resolving date ranges.
package itinerary

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"koatrip-agent/internal/domain"
	"koatrip-agent/internal/logger"
)

const maxHighlights = 5

// step mirrors one entry of the structured itinerary schema. Only the fields
// the parser classifies on are decoded.
type step struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	ETA   string `json:"eta"`
}

type structuredItinerary struct {
	Destination string            `json:"destination"`
	Dates       *domain.TripDates `json:"dates"`
	Budget      any               `json:"budget"`
	Steps       []*step           `json:"steps"`
}

// PatternSet is the ordered rule table driving the loose-text path. For each
// field the first pattern whose capture group matches wins. Callers may
// supply their own set (e.g. for another locale); the parser falls back to
// DefaultPatterns.
type PatternSet struct {
	Destination     []*regexp.Regexp
	DateRange       []*regexp.Regexp
	Transport       []*regexp.Regexp
	Accommodation   []*regexp.Regexp
	Budget          []*regexp.Regexp
	HighlightsLabel *regexp.Regexp
	HighlightsEnd   *regexp.Regexp
}

// DefaultPatterns returns the built-in Spanish/English rule table.
func DefaultPatterns() *PatternSet {
	return &PatternSet{
		Destination: []*regexp.Regexp{
			// "RESUMEN DE TU VIAJE A Lisboa (3 días)"
			regexp.MustCompile(`(?i)VIAJE\s+A\s+([^(\n]+)`),
			// "Destino: Lisboa, Portugal"
			regexp.MustCompile(`(?i)Destino[^:]*:\s*([^|\n]+)`),
		},
		DateRange: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d{1,2}[-/]\d{1,2}\s+\w+)`),
			regexp.MustCompile(`(?i)(\w+\s+\d{1,2}\s+de\s+\w+\s+a\s+\w+\s+\d{1,2}(?:\s+de\s+\w+)?)`),
			regexp.MustCompile(`(?i)fechas[^:]*:\s*([^|\n]+)`),
			regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\w+\s+a\s+\d{1,2}\s+de\s+\w+)`),
		},
		Transport:     labeledPatterns("Transporte", "Transport", "Vuelos", "Flights"),
		Accommodation: labeledPatterns("Alojamiento", "Accommodation", "Hotel"),
		Budget: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Presupuesto\s*(?:total|estimado)?[^:]*:\s*([^\n]+)`),
			regexp.MustCompile(`(~?\s*\d+[€$]\s*[-–]\s*\d+[€$][^\n]*)`),
			regexp.MustCompile(`(?i)Total[^:]*:\s*([^\n]*\d+[€$][^\n]*)`),
		},
		HighlightsLabel: regexp.MustCompile(`(?i)Highlights?[^:]*:`),
		HighlightsEnd:   regexp.MustCompile(`\n[A-Z💰]|\n\*\*|\n##|(?i:Presupuesto)`),
	}
}

// labeledPatterns builds "Label...: value" extractors for a keyword set.
func labeledPatterns(keywords ...string) []*regexp.Regexp {
	return lo.Map(keywords, func(kw string, _ int) *regexp.Regexp {
		return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw) + `[^:]*:\s*([^\n]+)`)
	})
}

// Parser converts assistant messages into normalized itinerary records.
type Parser struct {
	patterns *PatternSet
	log      *logger.Logger
}

type Option func(*Parser)

// WithPatterns replaces the built-in loose-text rule table.
func WithPatterns(ps *PatternSet) Option {
	return func(p *Parser) {
		if ps != nil {
			p.patterns = ps
		}
	}
}

// NewParser creates a Parser. A nil logger is replaced with a no-op one.
func NewParser(log *logger.Logger, opts ...Option) *Parser {
	if log == nil {
		log = logger.Nop()
	}
	p := &Parser{patterns: DefaultPatterns(), log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts one assistant message into a normalized itinerary record.
// Strict JSON conforming to the itinerary schema is preferred; anything else
// is treated as Markdown/prose and run through the pattern tables. Returns
// nil only when no destination can be determined either way; it never
// propagates internal failures.
func (p *Parser) Parse(content string) *domain.ParsedItinerary {
	if it, err := p.parseStructured(content); err == nil {
		return it
	} else {
		p.log.Debug("itinerary is not structured JSON, falling back to loose text", "err", err)
	}
	return p.parseLoose(content)
}

var errNotObject = jsonShapeError("document is not a JSON object")

type jsonShapeError string

func (e jsonShapeError) Error() string { return string(e) }

// parseStructured handles the schema-conforming JSON path. Any JSON object
// takes this path, even one without a steps sequence; the pattern tables
// never run over JSON text. Steps are stable-sorted by eta; the earliest
// transit step becomes transport, the earliest accommodation step becomes
// accommodation, everything else lands in highlights in sorted order.
func (p *Parser) parseStructured(content string) (*domain.ParsedItinerary, error) {
	if !strings.HasPrefix(strings.TrimSpace(content), "{") {
		return nil, errNotObject
	}
	var raw structuredItinerary
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, err
	}

	steps := lo.Filter(raw.Steps, func(s *step, _ int) bool { return s != nil })
	sort.SliceStable(steps, func(i, j int) bool {
		return stepTime(steps[i]).Before(stepTime(steps[j]))
	})

	var transport, accommodation string
	highlights := make([]string, 0, len(steps))
	for _, s := range steps {
		switch s.Type {
		case "transit":
			if transport == "" {
				transport = s.Title
			}
		case "accommodation":
			if accommodation == "" {
				accommodation = s.Title
			}
		default:
			highlights = append(highlights, s.Title)
		}
	}

	return &domain.ParsedItinerary{
		Destination:   raw.Destination,
		Dates:         raw.Dates,
		Transport:     transport,
		Accommodation: accommodation,
		Highlights:    highlights,
		Budget:        budgetString(raw.Budget),
	}, nil
}

// parseLoose extracts each field independently via the pattern tables.
func (p *Parser) parseLoose(content string) *domain.ParsedItinerary {
	destination := firstMatch(content, p.patterns.Destination)
	if destination == "" {
		p.log.Debug("no destination found in loose text")
		return nil
	}
	return &domain.ParsedItinerary{
		Destination:   destination,
		DateRange:     firstMatch(content, p.patterns.DateRange),
		Transport:     beforePeriod(firstMatch(content, p.patterns.Transport)),
		Accommodation: beforePeriod(firstMatch(content, p.patterns.Accommodation)),
		Highlights:    p.extractHighlights(content),
		Budget:        firstMatch(content, p.patterns.Budget),
	}
}

// extractHighlights captures the section after a "Highlights" label, running
// until the next capitalized or markdown heading line, a "Presupuesto"
// label, or end of text. List markers are stripped; bold lines and entries
// of three characters or fewer are dropped; at most five entries survive.
func (p *Parser) extractHighlights(content string) []string {
	loc := p.patterns.HighlightsLabel.FindStringIndex(content)
	if loc == nil {
		return nil
	}
	section := content[loc[1]:]
	if end := p.patterns.HighlightsEnd.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	var highlights []string
	for _, line := range strings.Split(section, "\n") {
		cleaned := strings.TrimSpace(listMarkerRe.ReplaceAllString(line, ""))
		if cleaned == "" || len([]rune(cleaned)) <= 3 || strings.HasPrefix(cleaned, "**") {
			continue
		}
		highlights = append(highlights, cleaned)
		if len(highlights) == maxHighlights {
			break
		}
	}
	return highlights
}

var listMarkerRe = regexp.MustCompile(`^[-*•]\s*`)

func firstMatch(content string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func beforePeriod(s string) string {
	head, _, _ := strings.Cut(s, ".")
	return head
}

// etaLayouts covers the date-time shapes models actually emit for eta.
var etaLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// stepTime parses a step's eta; unparseable values sort first.
func stepTime(s *step) time.Time {
	for _, layout := range etaLayouts {
		if t, err := time.Parse(layout, s.ETA); err == nil {
			return t
		}
	}
	return time.Time{}
}

// budgetString renders the top-level budget verbatim: the schema says
// integer, but loose model output occasionally sends a string.
func budgetString(v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case string:
		return b
	case float64:
		return strconv.FormatFloat(b, 'f', -1, 64)
	case json.Number:
		return b.String()
	default:
		return ""
	}
}
