package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/readinglog/internal/domain"
	"github.com/listenupapp/readinglog/internal/generator"
	"github.com/listenupapp/readinglog/internal/service"
)

// emotionAliases lets the vocabulary be typed without emoji.
var emotionAliases = map[string]domain.Emotion{
	"joy":        domain.EmotionJoy,
	"sad":        domain.EmotionSad,
	"angry":      domain.EmotionAngry,
	"thoughtful": domain.EmotionThoughtful,
	"moved":      domain.EmotionMoved,
	"bored":      domain.EmotionBored,
	"thrilled":   domain.EmotionThrilled,
	"surprised":  domain.EmotionSurprised,
}

func parseEmotion(s string) domain.Emotion {
	if e, ok := emotionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e
	}
	return domain.Emotion(s)
}

// reviewInputFlags are the composer fields. Unset flags keep the draft's value.
type reviewInputFlags struct {
	thoughts string
	quote    string
	emotions []string
	rating   float64
	interim  bool
}

func (f *reviewInputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.thoughts, "thoughts", "t", "", "your thoughts")
	cmd.Flags().StringVarP(&f.quote, "quote", "q", "", "a memorable quote")
	cmd.Flags().StringArrayVarP(&f.emotions, "emotion", "e", nil,
		"toggle an emotion (joy, sad, angry, thoughtful, moved, bored, thrilled, surprised); repeatable")
	cmd.Flags().Float64VarP(&f.rating, "rating", "r", 0, "rating from 0 to 5 in steps of 0.5; unset leaves the book unrated")
	cmd.Flags().BoolVar(&f.interim, "interim", false, "write a mid-read review")
}

func (f *reviewInputFlags) anySet(cmd *cobra.Command) bool {
	for _, name := range []string{"thoughts", "quote", "emotion", "rating", "interim"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// input overlays the set flags on the saved draft.
func (f *reviewInputFlags) input(cmd *cobra.Command, c *cli, draft *domain.ReviewDraft) (domain.ReviewInput, error) {
	var in domain.ReviewInput
	if draft != nil {
		in = draft.Input()
	}
	if cmd.Flags().Changed("thoughts") {
		in.Thoughts = f.thoughts
	}
	if cmd.Flags().Changed("quote") {
		in.Quote = f.quote
	}
	if cmd.Flags().Changed("rating") {
		rating := f.rating
		in.Rating = &rating
	}
	if cmd.Flags().Changed("interim") {
		in.IsIntermediate = f.interim
	}
	for _, raw := range f.emotions {
		toggled, err := c.app.review.ToggleEmotion(in.Emotions, parseEmotion(raw))
		if err != nil {
			return domain.ReviewInput{}, err
		}
		in.Emotions = toggled
	}
	return in, nil
}

func reviewCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write, generate, and list reviews",
	}
	cmd.AddCommand(
		reviewDraftCmd(c),
		reviewGenerateCmd(c),
		reviewSaveCmd(c),
		reviewListCmd(c),
		reviewSummaryCmd(c),
		reviewEmotionsCmd(),
	)
	return cmd
}

func reviewDraftCmd(c *cli) *cobra.Command {
	var f reviewInputFlags

	cmd := &cobra.Command{
		Use:   "draft <book-id>",
		Short: "Show or update the review draft of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := c.app.review.LoadDraft(ctx, args[0])
			if err != nil {
				return err
			}

			if f.anySet(cmd) {
				in, err := f.input(cmd, c, draft)
				if err != nil {
					return err
				}
				next := &domain.ReviewDraft{
					Thoughts:       in.Thoughts,
					Quote:          in.Quote,
					Emotions:       in.Emotions,
					Rating:         in.Rating,
					IsIntermediate: in.IsIntermediate,
				}
				if draft != nil {
					next.Generated = draft.Generated
				}
				if err := c.app.review.SaveDraft(ctx, args[0], next); err != nil {
					return err
				}
				draft = next
			}

			printDraft(cmd, draft)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func printDraft(cmd *cobra.Command, d *domain.ReviewDraft) {
	out := cmd.OutOrStdout()
	if d == nil {
		fmt.Fprintln(out, "작성 중인 독후감이 없어요.")
		return
	}
	fmt.Fprintf(out, "thoughts: %s\n", d.Thoughts)
	if d.Quote != "" {
		fmt.Fprintf(out, "quote:    %s\n", d.Quote)
	}
	for _, e := range d.Emotions {
		fmt.Fprintf(out, "emotion:  %s\n", e)
	}
	rating := "-"
	if d.Rating != nil {
		rating = generator.FormatRating(*d.Rating)
	}
	fmt.Fprintf(out, "rating:   %s  interim: %t\n", rating, d.IsIntermediate)
	if d.Generated != "" {
		fmt.Fprintf(out, "\n%s\n", d.Generated)
	}
}

func reviewGenerateCmd(c *cli) *cobra.Command {
	var f reviewInputFlags

	cmd := &cobra.Command{
		Use:   "generate <book-id>",
		Short: "Generate review text from your thoughts and emotions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := c.app.review.LoadDraft(ctx, args[0])
			if err != nil {
				return err
			}
			in, err := f.input(cmd, c, draft)
			if err != nil {
				return err
			}

			text, err := c.app.review.GenerateReview(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func reviewSaveCmd(c *cli) *cobra.Command {
	var f reviewInputFlags
	var text string

	cmd := &cobra.Command{
		Use:   "save <book-id>",
		Short: "Save a review; generated text from the draft is used when present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := c.app.review.LoadDraft(ctx, args[0])
			if err != nil {
				return err
			}
			in, err := f.input(cmd, c, draft)
			if err != nil {
				return err
			}

			sub := service.ReviewSubmission{ReviewInput: in, Generated: text}
			if !cmd.Flags().Changed("text") && draft != nil {
				sub.Generated = draft.Generated
			}

			review, err := c.app.review.SaveReview(ctx, args[0], sub)
			if err != nil {
				return err
			}
			printReview(cmd.OutOrStdout(), *review)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&text, "text", "", "review text; overrides generated text")
	return cmd
}

func reviewListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <book-id>",
		Short: "List the saved reviews of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviews, err := c.app.review.ListReviews(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reviews) == 0 {
				fmt.Fprintln(out, "아직 독후감이 없어요.")
				return nil
			}
			for i, r := range reviews {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printReview(out, r)
			}
			return nil
		},
	}
}

func reviewSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarize every saved review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.app.review.Summary(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", s.Vibe)
			fmt.Fprintf(out, "독후감 %d편", s.Count)
			if s.HasRating {
				fmt.Fprintf(out, " · 평균 별점 %.1f", s.AverageRating)
			}
			fmt.Fprintln(out)
			for _, ec := range s.EmotionCounts {
				fmt.Fprintf(out, "  %s %d\n", ec.Emotion, ec.Count)
			}
			return nil
		},
	}
}

func reviewEmotionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotions",
		Short: "List the emotion vocabulary and its aliases",
		Args:  cobra.NoArgs,
		// No store access.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			byEmotion := make(map[domain.Emotion]string, len(emotionAliases))
			for alias, e := range emotionAliases {
				byEmotion[e] = alias
			}
			for _, e := range domain.Emotions() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s\n", byEmotion[e], e)
			}
			return nil
		},
	}
}
