package translator

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/translate"
	"github.com/aws/aws-sdk-go/service/translate/translateiface"
	"github.com/vpnhouse/songbook/pkg/xaws"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"go.uber.org/zap"
)

// AWS translates text with Amazon Translate.
type AWS struct {
	client translateiface.TranslateAPI
}

func New(client translateiface.TranslateAPI) *AWS {
	return &AWS{client: client}
}

func NewWithSession(sess *session.Session) *AWS {
	return New(translate.New(sess))
}

func (t *AWS) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := t.client.TextWithContext(ctx, &translate.TextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(target),
	})
	if err != nil {
		fields := []zap.Field{zap.String("source", source), zap.String("target", target)}
		switch xaws.ErrorCode(err) {
		case translate.ErrCodeUnsupportedLanguagePairException,
			translate.ErrCodeDetectedLanguageLowConfidenceException,
			translate.ErrCodeTextSizeLimitExceededException:
			return "", xerror.WInvalidArgument("translator", "text can not be translated", err, fields...)
		case translate.ErrCodeTooManyRequestsException,
			translate.ErrCodeServiceUnavailableException:
			return "", xerror.EUnavailable("translation service is unavailable", err, fields...)
		}
		return "", xerror.EUpstreamError("translation failed", err, fields...)
	}

	return aws.StringValue(out.TranslatedText), nil
}

// Noop returns the text untouched, used when translation is disabled.
type Noop struct{}

func (Noop) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
