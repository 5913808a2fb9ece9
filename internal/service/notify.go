package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listenupapp/readinglog/internal/domain"
)

// Notifier delivers user-facing notifications. Notify is fire-and-forget
// and must not block.
type Notifier interface {
	Notify(n domain.Notification)
}

// EventEmitter broadcasts shelf and review changes.
type EventEmitter interface {
	Emit(event any)
}

// SearchIndexer keeps the full-text index in sync with the shelf.
// Index failures are logged and never fail the mutation that caused them.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	IndexReview(ctx context.Context, review *domain.Review, book *domain.Book) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

// Notify implements Notifier.
func (NoopNotifier) Notify(domain.Notification) {}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(any) {}

// NoopSearchIndexer is a no-op implementation for tests and when search is disabled.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// IndexReview is a no-op.
func (NoopSearchIndexer) IndexReview(context.Context, *domain.Review, *domain.Book) error {
	return nil
}

// Notification titles.
const (
	TitleNoResults       = "검색 결과가 없습니다"
	TitleInvalidPage     = "잘못된 페이지 번호"
	TitleProgressUpdated = "진행률이 업데이트되었어요! 📖"
	TitleCompleted       = "완독 완료! 🎉"
	TitleMissingContent  = "내용을 입력해주세요"
	TitleReviewGenerated = "AI 독후감이 생성되었어요! ✨"
	TitleReviewSaved     = "독후감이 저장되었어요! 📚"
	TitleMissingFields   = "필수 정보를 입력해주세요"
	TitleBookAdded       = "책이 서재에 추가되었습니다! 📚"
	TitleStorageFailed   = "저장하지 못했어요"
)

func newNotification(title, description string, variant domain.Variant) domain.Notification {
	return domain.Notification{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		Title:       title,
		Description: description,
		Variant:     variant,
	}
}

// NoResultsNotification is shown when a catalog search finds nothing.
func NoResultsNotification() domain.Notification {
	return newNotification(TitleNoResults, "다른 키워드로 검색해보세요", domain.VariantDefault)
}

func invalidPageNotification(totalPages int) domain.Notification {
	return newNotification(TitleInvalidPage,
		fmt.Sprintf("0부터 %d 사이의 숫자를 입력해주세요", totalPages),
		domain.VariantDestructive)
}

func progressNotification(b *domain.Book) domain.Notification {
	return newNotification(TitleProgressUpdated,
		fmt.Sprintf("%q %d페이지까지 읽었어요", b.Title, b.CurrentPage),
		domain.VariantDefault)
}

func completedNotification(b *domain.Book) domain.Notification {
	return newNotification(TitleCompleted,
		fmt.Sprintf("%q를 완독하셨네요! 축하드려요", b.Title),
		domain.VariantSuccess)
}

func missingContentNotification() domain.Notification {
	return newNotification(TitleMissingContent,
		"AI가 요약할 수 있도록 간단한 느낌이라도 적어주세요!",
		domain.VariantDestructive)
}

func generatedNotification() domain.Notification {
	return newNotification(TitleReviewGenerated,
		"마음에 들지 않으면 수정하거나 다시 생성할 수 있어요",
		domain.VariantSuccess)
}

func reviewSavedNotification(b *domain.Book) domain.Notification {
	return newNotification(TitleReviewSaved,
		fmt.Sprintf("%q의 독후감이 내 서재에 추가되었습니다", b.Title),
		domain.VariantSuccess)
}

func missingFieldsNotification() domain.Notification {
	return newNotification(TitleMissingFields,
		"책 제목과 저자는 반드시 입력해야 합니다",
		domain.VariantDestructive)
}

func bookAddedNotification(b *domain.Book) domain.Notification {
	return newNotification(TitleBookAdded,
		fmt.Sprintf("%q이(가) 읽고 싶은 책 목록에 추가되었어요", b.Title),
		domain.VariantSuccess)
}

func storageFailedNotification() domain.Notification {
	return newNotification(TitleStorageFailed,
		"잠시 후 다시 시도해주세요",
		domain.VariantDestructive)
}
