// Package scoring grades free-text evidence against a question's baseline
// evidence requirement.
//
// The scorer is a pure function of its two inputs. It blends four signals:
// overlap with the baseline's meaningful words, overlap on audit vocabulary,
// evidence length and documentation-quality phrases. Conformity buckets also
// require minimum raw counts, so one inflated signal cannot reach Full.
package scoring

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Conformity is the tri-state outcome of scoring.
type Conformity string

const (
	ConformityFull    Conformity = "Full Conformity"
	ConformityPartial Conformity = "Partial Conformity"
	ConformityNone    Conformity = "No Conformity"
)

// Conformities lists the buckets from best to worst.
var Conformities = []Conformity{ConformityFull, ConformityPartial, ConformityNone}

const (
	minEvidenceLength = 10

	overlapWeight = 0.3
	auditWeight   = 0.4
	lengthWeight  = 0.2
	qualityWeight = 0.1

	minBaselineWords      = 5
	minBaselineAuditTerms = 2
	fullLengthChars       = 200
	fullQualityHits       = 3
)

// threshold is one conformity bucket's entry requirements. All four must hold.
type threshold struct {
	conformity   Conformity
	minScore     float64
	minLength    int
	minAudit     int
	minWordMatch int
}

// thresholds are evaluated strictest first.
var thresholds = []threshold{
	{ConformityFull, 0.8, 100, 3, 5},
	{ConformityPartial, 0.6, 50, 2, 3},
}

// Result is the outcome of scoring one piece of evidence.
type Result struct {
	Score         float64    `json:"score"`
	Conformity    Conformity `json:"conformity"`
	Justification string     `json:"justification"`
	// MatchedTerms are audit terms present in both evidence and baseline.
	MatchedTerms []string `json:"matched_terms"`
	// AuditTerms are all audit terms found in the evidence.
	AuditTerms   []string `json:"audit_terms"`
	WordOverlap  int      `json:"word_overlap"`
	AuditOverlap int      `json:"audit_overlap"`
	Length       int      `json:"length"`
	Insufficient bool     `json:"insufficient"`
}

// Scorer grades evidence. The zero value is ready to use.
type Scorer struct{}

// New returns a Scorer; it holds no state and is safe for concurrent use.
func New() *Scorer { return &Scorer{} }

// Score grades evidence against baseline. It never fails; an empty baseline
// only lowers the achievable score.
func (Scorer) Score(evidence, baseline string) Result {
	trimmed := strings.TrimSpace(evidence)
	lower := strings.ToLower(trimmed)
	length := utf8.RuneCountInString(trimmed)

	evidenceWords := meaningfulWords(lower)
	baselineWords := meaningfulWords(strings.ToLower(baseline))
	evidenceAudit := auditTerms(evidenceWords)
	baselineAudit := auditTerms(baselineWords)

	matched := intersect(evidenceAudit, baselineAudit)
	res := Result{
		MatchedTerms: sortedKeys(matched),
		AuditTerms:   sortedKeys(evidenceAudit),
		WordOverlap:  len(intersect(evidenceWords, baselineWords)),
		AuditOverlap: len(matched),
		Length:       length,
		Insufficient: isInsufficient(lower, length),
	}

	if !res.Insufficient {
		overlap := ratio(res.WordOverlap, max(len(baselineWords), minBaselineWords)) * overlapWeight
		audit := ratio(res.AuditOverlap, max(len(baselineAudit), minBaselineAuditTerms)) * auditWeight
		size := ratio(length, fullLengthChars) * lengthWeight
		quality := ratio(qualityHits(lower), fullQualityHits) * qualityWeight
		res.Score = overlap + audit + size + quality
	}

	res.Conformity = classify(res)
	res.Justification = justify(res)
	return res
}

func classify(r Result) Conformity {
	for _, t := range thresholds {
		if r.Score >= t.minScore &&
			r.Length >= t.minLength &&
			r.AuditOverlap >= t.minAudit &&
			r.WordOverlap >= t.minWordMatch {
			return t.conformity
		}
	}
	return ConformityNone
}

func justify(r Result) string {
	switch {
	case r.Conformity == ConformityFull:
		return fmt.Sprintf("Evidence comprehensively demonstrates compliance with baseline requirements. "+
			"Contains %d key audit elements, %d relevant terms, and substantial documentation (%d characters).",
			r.AuditOverlap, r.WordOverlap, r.Length)
	case r.Conformity == ConformityPartial:
		return fmt.Sprintf("Evidence shows partial compliance with baseline requirements. "+
			"Contains %d audit elements and %d relevant terms. Additional documentation needed for full compliance.",
			r.AuditOverlap, r.WordOverlap)
	case r.Insufficient:
		return "Insufficient evidence provided. Simple affirmative/negative responses do not demonstrate compliance. " +
			"Please provide detailed documentation, screenshots, policies, or other substantive evidence " +
			"as specified in baseline requirements."
	default:
		return fmt.Sprintf("Evidence does not adequately demonstrate compliance with baseline requirements. "+
			"Missing key audit elements and insufficient detail. Found %d audit terms and %d relevant terms, "+
			"but requires more comprehensive documentation.",
			r.AuditOverlap, r.WordOverlap)
	}
}

func isInsufficient(lower string, length int) bool {
	if length < minEvidenceLength {
		return true
	}
	_, bare := bareResponses[lower]
	return bare
}

// meaningfulWords splits on anything that is not a letter or digit and keeps
// tokens longer than three runes.
func meaningfulWords(lower string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(tok) > 3 {
			words[tok] = struct{}{}
		}
	}
	return words
}

func auditTerms(words map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range words {
		if IsAuditKeyword(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

func qualityHits(lower string) int {
	n := 0
	for _, indicator := range qualityIndicators {
		if strings.Contains(lower, indicator) {
			n++
		}
	}
	return n
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return min(float64(n)/float64(d), 1)
}
