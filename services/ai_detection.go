package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"thesis-verification-api/config"
)

// AIConclusion is the ordinal band of an AI-authorship probability.
type AIConclusion int

const (
	AIConclusionVeryLow AIConclusion = iota
	AIConclusionLow
	AIConclusionLowModerate
	AIConclusionModerate
	AIConclusionHigh
)

var aiConclusionNames = [...]string{"VERY_LOW", "LOW", "LOW_MODERATE", "MODERATE", "HIGH"}

var aiConclusionLabels = [...]string{
	"VERY LOW PROBABILITY: Content appears to be primarily human-authored",
	"LOW PROBABILITY: Few indicators detected, likely human-authored with minimal AI assistance",
	"LOW-MODERATE PROBABILITY: Some patterns suggest potential AI assistance, but inconclusive",
	"MODERATE PROBABILITY: Multiple indicators suggest possible AI assistance in content generation",
	"HIGH PROBABILITY: Strong indicators suggest this content was likely generated with AI assistance",
}

func (c AIConclusion) String() string {
	if c < AIConclusionVeryLow || c > AIConclusionHigh {
		return "UNKNOWN"
	}
	return aiConclusionNames[c]
}

// Label is the human-readable description of the band.
func (c AIConclusion) Label() string {
	if c < AIConclusionVeryLow || c > AIConclusionHigh {
		return ""
	}
	return aiConclusionLabels[c]
}

// MarshalText encodes the band by name.
func (c AIConclusion) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ConclusionForProbability bands a probability at 80/60/40/20.
func ConclusionForProbability(p float64) AIConclusion {
	switch {
	case p >= 80:
		return AIConclusionHigh
	case p >= 60:
		return AIConclusionModerate
	case p >= 40:
		return AIConclusionLowModerate
	case p >= 20:
		return AIConclusionLow
	default:
		return AIConclusionVeryLow
	}
}

// AISubScores are the five independent analyses, each in [0, 100].
type AISubScores struct {
	Vocabulary   float64 `json:"vocabulary"`
	Style        float64 `json:"style"`
	Structure    float64 `json:"structure"`
	Consistency  float64 `json:"consistency"`
	Authenticity float64 `json:"authenticity"`
}

// AIDetectionResult is a best-effort estimate, never a verdict.
type AIDetectionResult struct {
	ProbabilityPct   float64      `json:"probability_pct"`
	Conclusion       AIConclusion `json:"conclusion"`
	ConclusionLabel  string       `json:"conclusion_label"`
	Indicators       []string     `json:"indicators"`
	SubScores        AISubScores  `json:"sub_scores"`
	RawScore         float64      `json:"raw_score"`
	ConfidenceFactor float64      `json:"confidence_factor"`
	SampleLength     int          `json:"sample_length"`
	Insufficient     bool         `json:"insufficient_text,omitempty"`
}

const (
	aiMinTextLength   = 100
	aiSampleThreshold = 10000
	aiSampleHead      = 5000
	aiSampleHalfWin   = 1000

	weightVocabulary   = 0.25
	weightStyle        = 0.30
	weightStructure    = 0.20
	weightConsistency  = 0.15
	weightAuthenticity = 0.10
)

var aiPhrases = []string{
	"as an ai", "i'm an ai", "artificial intelligence", "machine learning model",
	"trained on data", "large language model", "neural network", "deep learning",
	"in conclusion, it is evident that", "furthermore, it should be noted that",
	"it is worth noting that", "it is important to acknowledge that",
	"in this regard, it can be observed", "moreover, it is crucial to understand",
	"additionally, it should be emphasized", "consequently, it becomes apparent",
	"undeniably", "unequivocally", "indubitably", "irrefutably",
	"seamlessly integrated", "cutting-edge technology", "paradigm shift",
	"holistic approach", "comprehensive analysis", "multifaceted approach",
	"robust methodology", "innovative framework", "state-of-the-art",
	"unprecedented", "revolutionary breakthrough", "groundbreaking research",
}

var aiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(furthermore|moreover|additionally|consequently)\s+,?\s*it\s+(is|should|can|must)\b`),
	regexp.MustCompile(`(?i)\bin\s+conclusion\s*,?\s*(it\s+is\s+evident|we\s+can\s+see|it\s+becomes\s+clear)\b`),
	regexp.MustCompile(`(?i)\bit\s+is\s+(worth\s+noting|important\s+to\s+acknowledge|crucial\s+to\s+understand)\s+that\b`),
	regexp.MustCompile(`(?i)\b(comprehensive|robust|innovative|cutting-edge|state-of-the-art|groundbreaking)\s+(analysis|approach|methodology|framework|research|solution)\b`),
	regexp.MustCompile(`(?i)\b(seamlessly|effortlessly|inherently|fundamentally|intrinsically)\s+(integrated|connected|linked|established)\b`),
}

var (
	complexWords   = []string{"utilize", "facilitate", "demonstrate", "comprehensive", "substantial", "significant", "innovative", "substantial", "extensive", "inherent"}
	transitions    = []string{"furthermore", "moreover", "additionally", "consequently", "therefore", "however"}
	genericPhrases = []string{"it is important to note", "it should be mentioned", "one must consider", "it is worth highlighting", "it cannot be denied"}
	superlatives   = []string{"revolutionary", "groundbreaking", "unprecedented", "extraordinary", "remarkable", "exceptional", "outstanding", "phenomenal"}

	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n\n+`)
	yearPattern    = regexp.MustCompile(`\b\d{4}\b`)
	decimalPattern = regexp.MustCompile(`\d+\.\d+`)
	acronymPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)
)

// AnalyzeAIContent estimates the probability that the text was produced with
// AI assistance. Safe for concurrent use.
func AnalyzeAIContent(documentText, title, abstractText string) AIDetectionResult {
	full := combineTextSources(documentText, title, abstractText)
	length := len([]rune(full))

	if len([]rune(strings.TrimSpace(full))) < aiMinTextLength {
		config.Logger().Debugw("text too short for ai detection", "length", length)
		return AIDetectionResult{
			Conclusion:       AIConclusionVeryLow,
			ConclusionLabel:  "Insufficient text for analysis",
			Indicators:       []string{},
			ConfidenceFactor: 1,
			SampleLength:     length,
			Insufficient:     true,
		}
	}

	var indicators []string
	sub := AISubScores{
		Vocabulary:   analyzeVocabulary(full, &indicators),
		Style:        analyzeStyle(full, &indicators),
		Structure:    analyzeStructure(full, &indicators),
		Consistency:  analyzeConsistency(full, &indicators),
		Authenticity: analyzeAuthenticity(full, title, &indicators),
	}

	raw := sub.Vocabulary*weightVocabulary +
		sub.Style*weightStyle +
		sub.Structure*weightStructure +
		sub.Consistency*weightConsistency +
		sub.Authenticity*weightAuthenticity

	factor := confidenceFactor(length)
	prob := clampPct(raw * factor)
	conclusion := ConclusionForProbability(prob)

	if indicators == nil {
		indicators = []string{}
	}
	config.Logger().Debugw("ai detection completed",
		"probability", math.Round(prob),
		"indicators", len(indicators),
		"sample_length", length,
	)

	return AIDetectionResult{
		ProbabilityPct:   prob,
		Conclusion:       conclusion,
		ConclusionLabel:  conclusion.Label(),
		Indicators:       indicators,
		SubScores:        sub,
		RawScore:         raw,
		ConfidenceFactor: factor,
		SampleLength:     length,
	}
}

// combineTextSources concatenates title, abstract and a bounded sample of the
// document. Long documents contribute their first 5000 characters plus a
// 2000-character window around the midpoint.
func combineTextSources(documentText, title, abstractText string) string {
	var b strings.Builder
	if strings.TrimSpace(title) != "" {
		b.WriteString(title)
		b.WriteByte(' ')
	}
	if strings.TrimSpace(abstractText) != "" {
		b.WriteString(abstractText)
		b.WriteByte(' ')
	}
	if strings.TrimSpace(documentText) == "" {
		return b.String()
	}

	runes := []rune(documentText)
	if len(runes) <= aiSampleThreshold {
		b.WriteString(documentText)
		return b.String()
	}
	b.WriteString(string(runes[:aiSampleHead]))
	mid := len(runes) / 2
	midStart, midEnd := mid-aiSampleHalfWin, mid+aiSampleHalfWin
	if midStart > aiSampleHead && midEnd < len(runes) {
		b.WriteByte(' ')
		b.WriteString(string(runes[midStart:midEnd]))
	}
	return b.String()
}

func analyzeVocabulary(text string, indicators *[]string) float64 {
	score := 0.0
	lower := strings.ToLower(text)

	for _, phrase := range aiPhrases {
		if !strings.Contains(lower, phrase) {
			continue
		}
		*indicators = append(*indicators, fmt.Sprintf("AI phrase detected: '%s'", phrase))
		// Phrases containing "ai" or "artificial" are treated as explicit self-reference.
		if strings.Contains(phrase, "ai") || strings.Contains(phrase, "artificial") {
			score += 30
		} else {
			score += 5
		}
	}

	for _, p := range aiPatterns {
		if p.MatchString(text) {
			score += 8
			*indicators = append(*indicators, "AI writing pattern detected")
		}
	}

	complexCount := 0
	for _, w := range complexWords {
		complexCount += strings.Count(lower, w)
	}
	if total := len(strings.Fields(text)); total > 0 {
		ratio := float64(complexCount) / float64(total)
		if ratio > 0.05 {
			score += ratio * 200
			*indicators = append(*indicators, fmt.Sprintf("High complexity vocabulary ratio: %.1f%%", ratio*100))
		}
	}

	return math.Min(100, score)
}

func analyzeStyle(text string, indicators *[]string) float64 {
	score := 0.0
	sentences := splitSentences(text)

	if len(sentences) > 5 {
		var lengths []int
		for _, s := range sentences {
			trimmed := strings.TrimSpace(s)
			if len([]rune(trimmed)) > 10 {
				lengths = append(lengths, len(strings.Fields(trimmed)))
			}
		}
		if len(lengths) > 3 {
			avg := meanInts(lengths)
			if sampleVariance(lengths, avg) < 10 && avg > 15 {
				score += 25
				*indicators = append(*indicators, fmt.Sprintf("Uniform sentence lengths detected (avg: %.1f words)", avg))
			}
			if avg > 25 {
				score += 15
				*indicators = append(*indicators, fmt.Sprintf("Excessively long sentences (avg: %.1f words)", avg))
			}
		}
	}

	lower := strings.ToLower(text)
	transitionCount := 0
	for _, t := range transitions {
		transitionCount += strings.Count(lower, t)
	}
	if len(sentences) > 0 {
		ratio := float64(transitionCount) / float64(len(sentences))
		if ratio > 0.3 {
			score += 20
			*indicators = append(*indicators, fmt.Sprintf("Excessive transition word usage: %.1f%%", ratio*100))
		}
	}

	if hasUniformPunctuation(text) {
		score += 10
		*indicators = append(*indicators, "Suspiciously uniform punctuation patterns")
	}

	return math.Min(100, score)
}

func analyzeStructure(text string, indicators *[]string) float64 {
	score := 0.0

	paragraphs := paragraphSplit.Split(text, -1)
	if len(paragraphs) > 3 {
		similarStarts := 0
		for i := 1; i < len(paragraphs); i++ {
			if len([]rune(strings.TrimSpace(paragraphs[i]))) <= 50 {
				continue
			}
			prev := strings.ToLower(firstWords(paragraphs[i-1], 3))
			cur := strings.ToLower(firstWords(paragraphs[i], 3))
			if prev == "" || cur == "" {
				continue
			}
			for _, lead := range []string{"the", "in", "this"} {
				if strings.HasPrefix(prev, lead) && strings.HasPrefix(cur, lead) {
					similarStarts++
					break
				}
			}
		}
		if float64(similarStarts) > float64(len(paragraphs))*0.4 {
			score += 15
			*indicators = append(*indicators, "Repetitive paragraph structure detected")
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "in conclusion") &&
		(strings.Contains(lower, "it is evident") ||
			strings.Contains(lower, "we can conclude") ||
			strings.Contains(lower, "it becomes clear")) {
		score += 12
		*indicators = append(*indicators, "Formulaic conclusion structure detected")
	}

	return math.Min(100, score)
}

func analyzeConsistency(text string, indicators *[]string) float64 {
	score := 0.0

	sentences := splitSentences(text)
	if len(sentences) > 10 {
		abrupt := 0
		limit := len(sentences)
		if limit > 20 {
			limit = 20
		}
		for i := 1; i < limit; i++ {
			if hasAbruptTopicChange(sentences[i-1], sentences[i]) {
				abrupt++
			}
		}
		if abrupt > 3 {
			score += 10
			*indicators = append(*indicators, "Potential topic inconsistencies detected")
		}
	}

	lower := strings.ToLower(text)
	generic := 0
	for _, p := range genericPhrases {
		if strings.Contains(lower, p) {
			generic++
		}
	}
	if generic > 2 {
		score += float64(generic) * 5
		*indicators = append(*indicators, fmt.Sprintf("Multiple generic filler phrases detected (%d instances)", generic))
	}

	return math.Min(100, score)
}

func analyzeAuthenticity(text, title string, indicators *[]string) float64 {
	score := 0.0

	if !containsSpecificDetails(text) {
		score += 15
		*indicators = append(*indicators, "Lack of specific technical details or examples")
	}

	if strings.TrimSpace(title) != "" && !contentRelevantToTitle(text, title) {
		score += 10
		*indicators = append(*indicators, "Content may not fully align with stated title")
	}

	lower := strings.ToLower(text)
	count := 0
	for _, s := range superlatives {
		count += strings.Count(lower, s)
	}
	if count > 2 {
		score += float64(count) * 3
		*indicators = append(*indicators, fmt.Sprintf("Excessive use of superlative language (%d instances)", count))
	}

	return math.Min(100, score)
}

func confidenceFactor(length int) float64 {
	switch {
	case length < 500:
		return 0.7
	case length < 1000:
		return 0.85
	case length > 5000:
		return 1.1
	default:
		return 1
	}
}

// splitSentences splits on runs of terminal punctuation and drops trailing
// empty pieces.
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func sampleVariance(values []int, mean float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func hasUniformPunctuation(text string) bool {
	periods := strings.Count(text, ".")
	commas := strings.Count(text, ",")
	diff := periods - commas
	if diff < 0 {
		diff = -diff
	}
	return periods > 5 && commas > 5 && diff < 2
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func hasAbruptTopicChange(s1, s2 string) bool {
	w1 := strings.Fields(strings.ToLower(s1))
	w2 := strings.Fields(strings.ToLower(s2))
	if len(w1) < 3 || len(w2) < 3 {
		return false
	}
	set := make(map[string]struct{}, len(w1))
	for _, w := range w1 {
		set[w] = struct{}{}
	}
	shared := make(map[string]struct{})
	for _, w := range w2 {
		if _, ok := set[w]; ok {
			shared[w] = struct{}{}
		}
	}
	minLen := len(w1)
	if len(w2) < minLen {
		minLen = len(w2)
	}
	return float64(len(shared))/float64(minLen) < 0.1
}

func containsSpecificDetails(text string) bool {
	return yearPattern.MatchString(text) ||
		decimalPattern.MatchString(text) ||
		acronymPattern.MatchString(text) ||
		strings.Contains(text, "%") ||
		strings.Contains(text, "algorithm") ||
		strings.Contains(text, "methodology") ||
		strings.Contains(text, "experiment") ||
		strings.Contains(text, "results") ||
		strings.Contains(text, "analysis")
}

// contentRelevantToTitle requires at least half of the title words to appear
// in the text. Only words longer than three characters can count as present.
func contentRelevantToTitle(text, title string) bool {
	words := strings.Fields(strings.ToLower(title))
	if len(words) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	relevant := 0
	for _, w := range words {
		if len(w) > 3 && strings.Contains(lower, w) {
			relevant++
		}
	}
	return float64(relevant)/float64(len(words)) >= 0.5
}
