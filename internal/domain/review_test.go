package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleEmotion(t *testing.T) {
	selected := []Emotion{EmotionJoy}

	added := ToggleEmotion(selected, EmotionMoved)
	assert.Equal(t, []Emotion{EmotionJoy, EmotionMoved}, added)
	assert.Equal(t, []Emotion{EmotionJoy}, selected, "input must not change")

	removed := ToggleEmotion(added, EmotionJoy)
	assert.Equal(t, []Emotion{EmotionMoved}, removed)

	// Toggling twice is the identity.
	assert.Equal(t, selected, ToggleEmotion(ToggleEmotion(selected, EmotionSad), EmotionSad))
}

func TestToggleEmotion_NoLimit(t *testing.T) {
	var selected []Emotion
	for _, e := range Emotions() {
		selected = ToggleEmotion(selected, e)
	}
	assert.Len(t, selected, 8)
}

func TestEmotion_IsValid(t *testing.T) {
	assert.True(t, EmotionThrilled.IsValid())
	assert.False(t, Emotion("🙂 괜찮았어요").IsValid())
}

func TestReviewInput_HasContent(t *testing.T) {
	assert.False(t, ReviewInput{Thoughts: "  \n"}.HasContent())
	assert.True(t, ReviewInput{Thoughts: "좋았다"}.HasContent())
	assert.True(t, ReviewInput{Emotions: []Emotion{EmotionSad}}.HasContent())
}

func TestReviewTypeFor(t *testing.T) {
	reading := &Book{Status: StatusReading}
	done := &Book{Status: StatusCompleted}

	assert.Equal(t, ReviewInterim, ReviewTypeFor(reading, true))
	assert.Equal(t, ReviewComplete, ReviewTypeFor(reading, false))
	assert.Equal(t, ReviewComplete, ReviewTypeFor(done, true))
}

func TestVibeFor(t *testing.T) {
	assert.Equal(t, VibeWarm, VibeFor(EmotionMoved))
	assert.Equal(t, VibeThinker, VibeFor(EmotionThoughtful))
	assert.Equal(t, VibeSentimental, VibeFor(""))
}

func TestCategories(t *testing.T) {
	assert.Contains(t, Categories(), "경제/경영")
	assert.True(t, IsKnownCategory(DefaultCategory))
	assert.False(t, IsKnownCategory("만화"))
}

func TestReviewDraft_InputCopiesRating(t *testing.T) {
	rating := 4.5
	d := &ReviewDraft{Thoughts: "x", Rating: &rating}

	in := d.Input()
	*in.Rating = 1

	assert.Equal(t, 4.5, *d.Rating)
	assert.Nil(t, (&ReviewDraft{}).Input().Rating, "an unrated draft stays unrated")
}
