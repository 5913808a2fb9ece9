// Package generator turns composer input into review text.
package generator

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/readinglog/internal/domain"
	domainerrors "github.com/listenupapp/readinglog/internal/errors"
	"github.com/listenupapp/readinglog/internal/logger"
)

// Generator produces review text from composer input.
type Generator interface {
	Generate(ctx context.Context, in domain.ReviewInput) (string, error)
}

// TemplateGenerator fills a fixed template after a simulated delay.
type TemplateGenerator struct {
	latency time.Duration
	logger  *slog.Logger
}

// NewTemplateGenerator creates a generator that waits latency before answering.
func NewTemplateGenerator(latency time.Duration, log *slog.Logger) *TemplateGenerator {
	return &TemplateGenerator{
		latency: latency,
		logger:  logger.OrDiscard(log),
	}
}

// Generate implements Generator. It returns a CANCELED error when ctx ends
// before the delay elapses.
func (g *TemplateGenerator) Generate(ctx context.Context, in domain.ReviewInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domainerrors.FromContext(err)
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			g.logger.Debug("review generation abandoned")
			return "", domainerrors.FromContext(ctx.Err())
		}
	}

	return Compose(in), nil
}

// Compose fills the review template. The same input always yields the same text.
func Compose(in domain.ReviewInput) string {
	var sb strings.Builder

	sb.WriteString("이 책을 읽으면서 ")
	sb.WriteString(emotionClause(in.Emotions))
	sb.WriteString(" ")
	sb.WriteString(in.Thoughts)
	sb.WriteString("\n\n")

	if in.Quote != "" {
		sb.WriteString(`특히 인상 깊었던 부분은 "`)
		sb.WriteString(in.Quote)
		sb.WriteString(`"이었는데, 이를 통해 새로운 시각을 얻을 수 있었다.`)
	} else {
		sb.WriteString("작가의 독특한 관점을 통해 새로운 시각을 얻을 수 있었다.")
	}
	sb.WriteString("\n\n")

	if in.Rating != nil {
		sb.WriteString("전반적으로 ")
		sb.WriteString(FormatRating(*in.Rating))
		sb.WriteString("점을 주고 싶은 작품이며, 다른 사람들에게도 추천하고 싶다.")
	} else {
		sb.WriteString("전반적으로 다른 사람들에게도 추천하고 싶은 작품이다.")
	}
	sb.WriteString("\n\n")

	if in.IsIntermediate {
		sb.WriteString("아직 완독하지는 않았지만, ")
	}
	sb.WriteString("읽기 전 vs 읽은 후의 생각 변화가 있어서 의미 있는 독서 경험이었다.")

	return sb.String()
}

func emotionClause(emotions []domain.Emotion) string {
	if len(emotions) == 0 {
		return "다양한 감정을 느꼈다."
	}
	labels := make([]string, len(emotions))
	for i, e := range emotions {
		labels[i] = string(e)
	}
	return strings.Join(labels, ", ") + " 감정을 느꼈다."
}

// FormatRating renders a rating without trailing zeros: 4 -> "4", 4.5 -> "4.5".
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
