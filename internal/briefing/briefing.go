// Package briefing turns a rotation selection into display cards.
package briefing

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/matheuskafuri/folio/internal/browser"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/rotation"
)

// Briefing is one rendered view of the catalog for one day.
type Briefing struct {
	Date      string
	DateLabel string
	Greeting  string
	View      rotation.View
	Scanned   int
	Selected  int
	Themes    []string
	Cards     []Card
}

// Card is a single selected record ready for display.
type Card struct {
	Record      catalog.Record
	Index       int
	ReadingTime int
	Excerpt     string
	Link        string
}

// GenerateOpts holds options for Generate.
type GenerateOpts struct {
	Records []catalog.Record
	Engine  rotation.Engine
	View    rotation.View
	Count   int // featured view only; 0 uses the engine default
	SiteURL string
}

// Generate runs the engine for the requested view and builds the cards.
func Generate(opts GenerateOpts) *Briefing {
	var sel rotation.Selection
	if opts.View == rotation.ViewFeatured {
		sel = opts.Engine.Featured(opts.Records, opts.Count)
	} else {
		sel = opts.Engine.Select(opts.View, opts.Records)
	}
	return FromSelection(sel, opts.Records, opts.SiteURL)
}

// FromSelection builds a briefing for an already computed selection.
// all is the full catalog the selection was drawn from.
func FromSelection(sel rotation.Selection, all []catalog.Record, siteURL string) *Briefing {
	b := &Briefing{
		Date:     sel.Date,
		View:     sel.View,
		Scanned:  len(all),
		Selected: len(sel.Records),
	}
	if day, err := time.Parse("2006-01-02", sel.Date); err == nil {
		b.DateLabel = day.Format("Mon, Jan 2")
	}

	for i, r := range sel.Records {
		link, err := browser.RecordURL(siteURL, r)
		if err != nil {
			link = ""
		}
		b.Cards = append(b.Cards, Card{
			Record:      r,
			Index:       i + 1,
			ReadingTime: estimateReadTime(r.Summary),
			Excerpt:     Excerpt(r.Summary),
			Link:        link,
		})
	}

	if t := themes(sel.Records, all); t != "" {
		b.Themes = strings.Split(t, ", ")
	}
	return b
}

// Selection returns the engine output the briefing was built from.
func (b *Briefing) Selection() rotation.Selection {
	records := make([]catalog.Record, len(b.Cards))
	for i, c := range b.Cards {
		records[i] = c.Record
	}
	return rotation.Selection{Date: b.Date, View: b.View, Records: records}
}

// WithGreeting sets the greeting for the given local time.
func (b *Briefing) WithGreeting(now time.Time) *Briefing {
	b.Greeting = greeting(now)
	return b
}

// Excerpt returns the first sentence of a summary, or its first 150 runes.
func Excerpt(summary string) string {
	if summary == "" {
		return ""
	}
	for i, c := range summary {
		if c == '.' && i > 20 {
			return summary[:i+1]
		}
	}
	runes := []rune(summary)
	if len(runes) > 150 {
		return string(runes[:150]) + "..."
	}
	return summary
}

// estimateReadTime assumes the full piece is ~3x the summary, read at 200 WPM.
func estimateReadTime(summary string) int {
	minutes := len(strings.Fields(summary)) * 3 / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func greeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// themes ranks tags and title words of the selection by TF-IDF against the
// whole catalog and returns the top three.
func themes(selected, all []catalog.Record) string {
	df := map[string]int{}
	for _, r := range all {
		seen := map[string]bool{}
		for _, w := range terms(r) {
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	tf := map[string]int{}
	for _, r := range selected {
		for _, w := range terms(r) {
			tf[w]++
		}
	}

	totalDocs := len(all)
	if totalDocs == 0 {
		totalDocs = 1
	}

	type scored struct {
		term  string
		score float64
	}
	var ranked []scored
	for term, freq := range tf {
		if freq < 2 {
			continue
		}
		docFreq := df[term]
		if docFreq == 0 {
			docFreq = 1
		}
		// +1 keeps terms present in every record from scoring zero
		idf := math.Log(float64(totalDocs)/float64(docFreq)) + 1
		ranked = append(ranked, scored{term, float64(freq) * idf})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	parts := make([]string, len(ranked))
	for i, s := range ranked {
		parts[i] = s.term
	}
	return strings.Join(parts, ", ")
}

// terms returns a record's lowercased tags plus its meaningful title words.
func terms(r catalog.Record) []string {
	var out []string
	for _, tag := range r.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			out = append(out, tag)
		}
	}
	for _, word := range strings.Fields(strings.ToLower(r.Title)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) < 4 || stopWords[word] {
			continue
		}
		out = append(out, word)
	}
	return out
}

var stopWords = map[string]bool{
	"with": true, "from": true, "this": true, "that": true, "into": true,
	"over": true, "about": true, "your": true, "their": true, "using": true,
	"application": true, "app": true, "project": true, "website": true,
	"case": true, "study": true, "building": true, "built": true,
}
