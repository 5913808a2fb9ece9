package domain

// HistoryEntry is a point-in-time progress snapshot, appended on every progress change.
type HistoryEntry struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Page     int    `json:"page"`
	Progress int    `json:"progress"` // percent
}

// ChartPoint is one chart-ready sample of a book's reading history.
type ChartPoint struct {
	Date     string `json:"date"`
	Page     int    `json:"page"`
	Progress int    `json:"progress"`
}

// BookStats are the derived figures shown next to a book's progress chart.
type BookStats struct {
	// EstimatedCompletionWeeks is nil when the weekly average is zero.
	EstimatedCompletionWeeks *int `json:"estimatedCompletionWeeks"`
	ProgressPercent          int  `json:"progressPercent"`
	WeeklyAverage            int  `json:"weeklyAverage"`
	RemainingPages           int  `json:"remainingPages"`
}

// StatusCounts tallies shelf books per status.
type StatusCounts struct {
	WantToRead int `json:"wantToRead"`
	Reading    int `json:"reading"`
	Completed  int `json:"completed"`
}

// Total returns the number of books on the shelf.
func (c StatusCounts) Total() int {
	return c.WantToRead + c.Reading + c.Completed
}

// MonthCount is the number of books completed in a YYYY-MM month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Dashboard aggregates the whole shelf.
type Dashboard struct {
	BooksPerMonth      []MonthCount `json:"booksPerMonth"`
	Counts             StatusCounts `json:"counts"`
	TotalPagesRead     int          `json:"totalPagesRead"`
	CompletedPages     int          `json:"completedPages"`
	AverageRating      float64      `json:"averageRating"`
	RatedBooks         int          `json:"ratedBooks"`
	YearlyGoal         int          `json:"yearlyGoal"`
	GoalCompletionRate float64      `json:"goalCompletionRate"`
	RemainingToGoal    int          `json:"remainingToGoal"`
	CurrentStreak      int          `json:"currentStreak"`
	LongestStreak      int          `json:"longestStreak"`
	HasRating          bool         `json:"hasRating"`
}

// EmotionCount is how often an emotion was tagged across reviews.
type EmotionCount struct {
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
}

// ReviewSummary aggregates saved reviews.
type ReviewSummary struct {
	EmotionCounts []EmotionCount `json:"emotionCounts"`
	TopEmotion    Emotion        `json:"topEmotion,omitempty"`
	Vibe          string         `json:"vibe"`
	Count         int            `json:"count"`
	AverageRating float64        `json:"averageRating"`
	HasRating     bool           `json:"hasRating"`
}

// Reader labels keyed by the dominant emotion of a reader's reviews.
const (
	VibeSentimental = "감성적인 독서가 🌸"
	VibeThinker     = "깊이 있는 사색가 📚"
	VibePassionate  = "열정적인 리더 🔥"
	VibeWarm        = "따뜻한 감성의 소유자 💝"
	VibeCurious     = "호기심 많은 탐험가 🌟"
)

// VibeFor maps a dominant emotion to a reader label. An empty emotion
// yields the sentimental label.
func VibeFor(e Emotion) string {
	switch e {
	case EmotionThoughtful, EmotionBored:
		return VibeThinker
	case EmotionThrilled, EmotionAngry:
		return VibePassionate
	case EmotionMoved:
		return VibeWarm
	case EmotionSurprised:
		return VibeCurious
	default:
		return VibeSentimental
	}
}
