// Package moderation decides whether a message contains harmful content.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/metrics"
)

// Category is one moderation category as reported by the provider.
type Category struct {
	Name    string
	Flagged bool
}

// Classification is the raw moderation result. Categories keep the provider's order.
type Classification struct {
	Flagged    bool
	Categories []Category
}

// Moderator classifies text against a content policy.
type Moderator interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Verdict is the harmful-content decision for one message.
type Verdict struct {
	Flagged bool
	Reason  string
}

// Detector turns moderation results into verdicts.
type Detector struct {
	moderator  Moderator
	failClosed bool
}

// NewDetector creates a Detector. With failClosed set, a moderation failure flags the message
// instead of letting it through.
func NewDetector(moderator Moderator, failClosed bool) *Detector {
	return &Detector{moderator: moderator, failClosed: failClosed}
}

// Detect never returns an error; moderation failures are folded into the verdict.
func (d *Detector) Detect(ctx context.Context, message string) Verdict {
	result, err := d.moderator.Classify(ctx, message)
	if err != nil {
		metrics.ClassifierFailuresTotal.WithLabelValues("moderation").Inc()
		log.Warnf("[Moderation] moderation check failed, fail_closed: %t, error: %v", d.failClosed, err)
		return d.Unavailable(err)
	}
	if !result.Flagged {
		return Verdict{}
	}

	var flagged []string
	for _, c := range result.Categories {
		if c.Flagged {
			flagged = append(flagged, c.Name)
		}
	}
	return Verdict{
		Flagged: true,
		Reason:  "Message contains harmful content: " + strings.Join(flagged, ", "),
	}
}

// Unavailable is the verdict for a message whose moderation check failed or never ran.
func (d *Detector) Unavailable(err error) Verdict {
	return Verdict{
		Flagged: d.failClosed,
		Reason:  fmt.Sprintf("Error checking content moderation: %v", err),
	}
}
