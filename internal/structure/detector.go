// Package structure detects poorly formed questions from their grammatical analysis.
package structure

import (
	"context"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/analyzer"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/metrics"
)

// Analyzer parses text into tokens and noun chunks.
type Analyzer interface {
	Parse(ctx context.Context, text string) (*analyzer.Analysis, error)
}

// Detector classifies questions as well or poorly formed.
type Detector struct {
	analyzer Analyzer
}

func NewDetector(a Analyzer) *Detector {
	return &Detector{analyzer: a}
}

// IsPoorlyFormed reports whether message lacks a verb, a subject (explicit or implied) or a
// noun phrase. Analysis failures count as poorly formed.
func (d *Detector) IsPoorlyFormed(ctx context.Context, message string) bool {
	start := time.Now()
	a, err := d.analyzer.Parse(ctx, message)
	if err != nil {
		metrics.ClassifierFailuresTotal.WithLabelValues("structure").Inc()
		log.Warnf("[Structure] analysis failed, treating question as poorly formed, error: %v", err)
		return true
	}
	poor := !WellFormed(a)
	log.Debugf("[Structure] question analyzed, poorly_formed: %t, took: %s", poor, time.Since(start))
	return poor
}

// WellFormed applies the grammatical checks to an analysis.
func WellFormed(a *analyzer.Analysis) bool {
	if a == nil {
		return false
	}
	var hasVerb, hasSubject, hasImplicitSubject, hasNounPhrase bool
	for _, t := range a.Tokens {
		switch t.POS {
		case "VERB", "AUX":
			hasVerb = true
		case "PRON", "ADV":
			hasImplicitSubject = true
		}
		switch t.Dep {
		case "nsubj", "nsubj:pass":
			hasSubject = true
		case "mark", "advmod", "dobj", "iobj", "prep":
			hasImplicitSubject = true
		}
	}
	for _, c := range a.NounChunks {
		if c.RootPOS == "NOUN" {
			hasNounPhrase = true
			break
		}
	}
	return hasVerb && (hasSubject || hasImplicitSubject) && hasNounPhrase
}
