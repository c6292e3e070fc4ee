package content_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lacura/lacura-api/internal/app/content"
)

func baseRequest(typ content.Type) content.Request {
	return content.Request{
		Type:           typ,
		Topic:          "Stress Management",
		Tone:           content.ToneProfessional,
		PracticeType:   "Nutrition Coaching",
		TargetAudience: "busy professionals",
	}
}

func TestGenerateSocialPosts(t *testing.T) {
	out, err := content.Generate(baseRequest(content.TypeSocialPost))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	posts, ok := out.(content.SocialPosts)
	if !ok {
		t.Fatalf("expected SocialPosts, got %T", out)
	}

	if !strings.Contains(posts.LinkedIn, "Stress Management") {
		t.Errorf("expected the topic in the LinkedIn post, got %q", posts.LinkedIn)
	}
	if !strings.Contains(posts.Instagram, "#NutritionCoaching") {
		t.Errorf("expected the practice hashtag without spaces, got %q", posts.Instagram)
	}
	if posts.Twitter == "" {
		t.Error("expected a Twitter post")
	}
}

func TestGenerateSocialPostToneChangesCopy(t *testing.T) {
	professional := baseRequest(content.TypeSocialPost)
	friendly := baseRequest(content.TypeSocialPost)
	friendly.Tone = content.ToneFriendly

	a, err := content.Generate(professional)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := content.Generate(friendly)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if a.(content.SocialPosts).LinkedIn == b.(content.SocialPosts).LinkedIn {
		t.Error("expected different LinkedIn copy for different tones")
	}
}

func TestGenerateTwitterTruncatesLongTopics(t *testing.T) {
	req := baseRequest(content.TypeSocialPost)
	req.Topic = "An Extremely Long Topic Title That Does Not Fit"

	out, err := content.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tweet := out.(content.SocialPosts).Twitter
	if !strings.Contains(tweet, "...") {
		t.Errorf("expected the topic truncated with an ellipsis, got %q", tweet)
	}
	if strings.Contains(tweet, req.Topic) {
		t.Errorf("the full topic should not survive truncation, got %q", tweet)
	}
}

func TestGenerateNewsletterLengths(t *testing.T) {
	cases := []struct {
		length   content.Length
		words    int
		readTime int
	}{
		{content.LengthShort, 300, 2},
		{content.LengthMedium, 800, 4},
		{content.LengthLong, 1500, 8},
	}

	for _, tc := range cases {
		req := baseRequest(content.TypeNewsletter)
		req.Length = tc.length

		out, err := content.Generate(req)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		nl, ok := out.(content.Newsletter)
		if !ok {
			t.Fatalf("expected Newsletter, got %T", out)
		}
		if nl.WordCount != tc.words {
			t.Errorf("length %q: expected %d words, got %d", tc.length, tc.words, nl.WordCount)
		}
		if nl.EstimatedReadTime != tc.readTime {
			t.Errorf("length %q: expected read time %d, got %d", tc.length, tc.readTime, nl.EstimatedReadTime)
		}
	}
}

func TestGenerateEmailSequenceSchedule(t *testing.T) {
	out, err := content.Generate(baseRequest(content.TypeEmailSequence))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	seq, ok := out.([]content.SequenceEmail)
	if !ok {
		t.Fatalf("expected a sequence, got %T", out)
	}

	if len(seq) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(seq))
	}
	for i, day := range []int{0, 3, 7} {
		if seq[i].Day != day {
			t.Errorf("email %d: expected day %d, got %d", i, day, seq[i].Day)
		}
		if seq[i].Subject == "" || seq[i].Content == "" {
			t.Errorf("email %d: expected subject and content", i)
		}
	}
}

func TestGenerateBlogPost(t *testing.T) {
	req := baseRequest(content.TypeBlogPost)
	req.Length = content.LengthLong

	out, err := content.Generate(req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	post, ok := out.(content.BlogPost)
	if !ok {
		t.Fatalf("expected BlogPost, got %T", out)
	}
	if post.WordCount != 2500 {
		t.Errorf("expected 2500 words for a long post, got %d", post.WordCount)
	}
	if len(post.SEOKeywords) == 0 {
		t.Error("expected SEO keywords")
	}
	if !strings.Contains(post.Title, "Stress Management") {
		t.Errorf("expected the topic in the title, got %q", post.Title)
	}
}

func TestGenerateUnsupportedType(t *testing.T) {
	_, err := content.Generate(content.Request{Type: "podcast", Topic: "Sleep"})

	if !errors.Is(err, content.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestGenerateDefaultsToMediumLength(t *testing.T) {
	out, err := content.Generate(content.Request{
		Type:  content.TypeNewsletter,
		Topic: "Sleep Hygiene",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if nl := out.(content.Newsletter); nl.WordCount != 800 {
		t.Errorf("expected the medium 800-word default, got %d", nl.WordCount)
	}
}
