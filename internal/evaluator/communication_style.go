package evaluator

import (
	"fmt"
	"strings"
)

// CommunicationStyle scores the register of a response: professional
// language, clarity of sentence structure, tone, and adaptation to the
// customer's own phrasing.
//
// Point budget: professionalism 0-3, clarity 0-2, tone 0-3, adaptability
// 0-2, for a 0-10 total.
type CommunicationStyle struct {
	weight float64
}

func NewCommunicationStyle(weight float64) *CommunicationStyle {
	return &CommunicationStyle{weight: weight}
}

func (e *CommunicationStyle) Name() string    { return NameCommunicationStyle }
func (e *CommunicationStyle) Weight() float64 { return e.weight }

var businessLanguage = []string{
	"we recommend", "we suggest", "we provide", "our team", "please",
	"available", "typically", "would like to", "happy to", "let me",
	"i can", "we can", "feel free",
}

var unprofessionalLanguage = []string{
	"lol", "omg", "wtf", "gonna", "wanna", "dunno", "yeah whatever",
	"!!!!", "????",
}

var toneIndicators = []string{
	"understand", "appreciate", "recommend", "suggest", "glad",
	"happy to", "look forward", "thank",
}

func (e *CommunicationStyle) Evaluate(in *Input) (*Result, error) {
	if in == nil {
		return nil, fmt.Errorf("evaluator: %s: nil input", e.Name())
	}
	if strings.TrimSpace(in.Response) == "" {
		return &Result{Score: 0, Explanation: "empty response"}, nil
	}

	professionalism := e.scoreProfessionalism(in.Response)
	clarity := e.scoreClarity(in.Response)
	tone := e.scoreTone(in.Response)
	adaptability := e.scoreAdaptability(in)

	return &Result{
		Score: clampScore(professionalism + clarity + tone + adaptability),
		SubMetrics: map[string]float64{
			"professionalism": professionalism,
			"clarity":         clarity,
			"tone":            tone,
			"adaptability":    adaptability,
		},
	}, nil
}

func (e *CommunicationStyle) scoreProfessionalism(text string) float64 {
	business := countAny(text, businessLanguage)
	unprofessional := countAny(text, unprofessionalLanguage)
	switch {
	case unprofessional == 0 && business >= 3:
		return 3.0
	case unprofessional == 0 && business >= 1:
		return 2.0
	case unprofessional <= 1 && business >= 1:
		return 1.0
	default:
		return 0.0
	}
}

func (e *CommunicationStyle) scoreClarity(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0.0
	}
	totalWords := 0
	longWords := 0
	for _, s := range sentences {
		for _, w := range strings.Fields(s) {
			totalWords++
			if len(w) >= 12 {
				longWords++
			}
		}
	}
	if totalWords == 0 {
		return 0.0
	}
	avgLen := float64(totalWords) / float64(len(sentences))
	complexRatio := float64(longWords) / float64(totalWords)
	switch {
	case avgLen >= 8 && avgLen <= 25 && complexRatio < 0.08:
		return 2.0
	case avgLen <= 35 && complexRatio < 0.15:
		return 1.0
	default:
		return 0.0
	}
}

func (e *CommunicationStyle) scoreTone(text string) float64 {
	hits := countAny(text, toneIndicators)
	unprofessional := countAny(text, unprofessionalLanguage)
	switch {
	case hits >= 2 && unprofessional == 0:
		return 3.0
	case hits >= 1 && unprofessional == 0:
		return 2.0
	case unprofessional == 0:
		return 1.0
	default:
		return 0.0
	}
}

// scoreAdaptability rewards echoing the customer's own vocabulary.
func (e *CommunicationStyle) scoreAdaptability(in *Input) float64 {
	query := in.LastUserMessage()
	if query == "" {
		return 1.0
	}
	coverage := termCoverage(in.Response, query)
	switch {
	case coverage >= 0.5:
		return 2.0
	case coverage >= 0.3:
		return 1.5
	case coverage >= 0.15:
		return 1.0
	default:
		return 0.0
	}
}
