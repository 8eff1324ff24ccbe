package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// KoreanTranslator translates English message text to Korean using Amazon
// Translate.
type KoreanTranslator struct {
	client *translate.Client
	logger *slog.Logger
}

// NewKoreanTranslator creates a Translate-backed translator.
func NewKoreanTranslator(cfg aws.Config, logger *slog.Logger) *KoreanTranslator {
	if logger == nil {
		logger = slog.Default()
	}
	return &KoreanTranslator{
		client: translate.NewFromConfig(cfg),
		logger: logger.With("component", "translator"),
	}
}

// Translate returns the Korean translation of text.
func (t *KoreanTranslator) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String("en"),
		TargetLanguageCode: aws.String("ko"),
	})
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}

	translated := aws.ToString(out.TranslatedText)
	t.logger.DebugContext(ctx, "Text translated", "chars", len(translated))
	return translated, nil
}
