// Package enrich provides message enrichment backed by AWS: sentiment
// classification via Amazon Comprehend and English-to-Korean translation via
// Amazon Translate. Both are best-effort from the pipeline's perspective; an
// enrichment failure never drops a message.
package enrich

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Classifier maps message text to an optional classification label. An empty
// label with a nil error means "no signal".
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Translator maps message text to translated text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// NewAWSConfig loads the shared AWS configuration from the environment,
// optionally overriding the region.
func NewAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return cfg, nil
}
