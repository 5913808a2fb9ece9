package domain

import "slices"

// Emotion is a tag from the fixed review vocabulary.
type Emotion string

// The emotion vocabulary, in display order.
const (
	EmotionJoy        Emotion = "😊 즐거웠어요"
	EmotionSad        Emotion = "😢 슬펐어요"
	EmotionAngry      Emotion = "😡 화났어요"
	EmotionThoughtful Emotion = "🤔 생각하게 됐어요"
	EmotionMoved      Emotion = "💝 감동받았어요"
	EmotionBored      Emotion = "😴 지루했어요"
	EmotionThrilled   Emotion = "🔥 흥미진진했어요"
	EmotionSurprised  Emotion = "😱 놀랐어요"
)

var emotionVocabulary = []Emotion{
	EmotionJoy,
	EmotionSad,
	EmotionAngry,
	EmotionThoughtful,
	EmotionMoved,
	EmotionBored,
	EmotionThrilled,
	EmotionSurprised,
}

// Emotions returns a copy of the vocabulary.
func Emotions() []Emotion {
	return slices.Clone(emotionVocabulary)
}

// IsValid reports whether e belongs to the vocabulary.
func (e Emotion) IsValid() bool {
	return slices.Contains(emotionVocabulary, e)
}

// ToggleEmotion adds tag when absent and removes it when present.
// The input slice is not modified. There is no selection limit.
func ToggleEmotion(selected []Emotion, tag Emotion) []Emotion {
	if i := slices.Index(selected, tag); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), tag)
}
