package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

// SentimentClassifier classifies message text using Amazon Comprehend's
// sentiment detection.
type SentimentClassifier struct {
	client *comprehend.Client
	logger *slog.Logger
}

// NewSentimentClassifier creates a Comprehend-backed classifier.
func NewSentimentClassifier(cfg aws.Config, logger *slog.Logger) *SentimentClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SentimentClassifier{
		client: comprehend.NewFromConfig(cfg),
		logger: logger.With("component", "sentiment"),
	}
}

// Classify returns the detected sentiment as a lowercase label. An
// unrecognized sentiment yields an empty label without an error.
func (c *SentimentClassifier) Classify(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	out, err := c.client.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCodeEn,
	})
	if err != nil {
		return "", fmt.Errorf("detect sentiment: %w", err)
	}

	label := sentimentLabel(out.Sentiment)
	c.logger.DebugContext(ctx, "Sentiment detected", "label", label)
	return label, nil
}

// sentimentLabel maps a Comprehend sentiment type to the persisted label.
func sentimentLabel(s types.SentimentType) string {
	switch s {
	case types.SentimentTypePositive:
		return "positive"
	case types.SentimentTypeNegative:
		return "negative"
	case types.SentimentTypeNeutral:
		return "neutral"
	case types.SentimentTypeMixed:
		return "mixed"
	default:
		return ""
	}
}
