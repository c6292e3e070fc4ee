// Package content is the template engine behind /content/generate. It
// fills marketing copy skeletons from a handful of inputs; no language
// model is involved.
package content

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeSocialPost    Type = "social_post"
	TypeNewsletter    Type = "newsletter"
	TypeEmailSequence Type = "email_sequence"
	TypeBlogPost      Type = "blog_post"
)

type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneFriendly       Tone = "friendly"
	ToneAuthoritative  Tone = "authoritative"
	ToneConversational Tone = "conversational"
)

type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

type Request struct {
	Type           Type
	Topic          string
	Tone           Tone
	PracticeType   string
	TargetAudience string
	Length         Length
}

type SocialPosts struct {
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

type Newsletter struct {
	Subject           string `json:"subject"`
	Content           string `json:"content"`
	WordCount         int    `json:"wordCount"`
	EstimatedReadTime int    `json:"estimatedReadTime"`
}

type SequenceEmail struct {
	Day     int    `json:"day"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type BlogPost struct {
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	WordCount         int      `json:"wordCount"`
	EstimatedReadTime int      `json:"estimatedReadTime"`
	SEOKeywords       []string `json:"seoKeywords"`
}

var ErrUnsupportedType = fmt.Errorf("unsupported content type")

// Generate renders the template for the requested content type. The
// returned value's concrete type depends on req.Type.
func Generate(req Request) (any, error) {
	if req.Length == "" {
		req.Length = LengthMedium
	}
	switch req.Type {
	case TypeSocialPost:
		return SocialPosts{
			LinkedIn:  linkedInPost(req),
			Instagram: instagramPost(req),
			Twitter:   twitterPost(req),
		}, nil
	case TypeNewsletter:
		return newsletter(req), nil
	case TypeEmailSequence:
		return emailSequence(req), nil
	case TypeBlogPost:
		return blogPost(req), nil
	default:
		return nil, ErrUnsupportedType
	}
}

func hashtag(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func linkedInPost(req Request) string {
	topic, practice, audience := req.Topic, req.PracticeType, req.TargetAudience
	lowerTopic := strings.ToLower(topic)

	switch req.Tone {
	case ToneProfessional:
		return fmt.Sprintf("💡 %s - A key insight for %s in %s.\n\nAs a %s practitioner, I've seen how %s can transform lives. Here's what I've learned...\n\n#%s #Wellness #Health",
			topic, audience, practice, practice, lowerTopic, hashtag(practice))
	case ToneFriendly:
		return fmt.Sprintf("Hey %s! 👋\n\nI wanted to share something about %s that might help you on your wellness journey.\n\nIn my %s practice, I often see clients struggling with %s. Here's a simple approach that works...\n\nWhat's your experience with this? Drop a comment below! 💬",
			audience, topic, practice, lowerTopic)
	case ToneAuthoritative:
		return fmt.Sprintf("The Science Behind %s in %s\n\nResearch consistently shows that %s plays a crucial role in %s outcomes. Here's what the evidence tells us...\n\n#EvidenceBased #%s #Wellness",
			topic, practice, lowerTopic, practice, hashtag(practice))
	default:
		return fmt.Sprintf("Quick question: How do you handle %s in your daily routine?\n\nI ask because in my %s practice, this comes up ALL the time. And honestly, there's no one-size-fits-all answer...\n\nBut here's what I've found works for most %s...",
			lowerTopic, practice, audience)
	}
}

func instagramPost(req Request) string {
	return fmt.Sprintf("✨ %s ✨\n\nFor all my %s out there - this is something I see in my %s practice every day.\n\nSwipe to see how you can apply this to your wellness journey! 👆\n\n#%s #Wellness #SelfCare #%s",
		req.Topic, req.TargetAudience, req.PracticeType, hashtag(req.PracticeType), hashtag(req.Topic))
}

func twitterPost(req Request) string {
	short := req.Topic
	if len(short) > 20 {
		short = short[:17] + "..."
	}
	return fmt.Sprintf("%s - A game changer for %s in %s. Here's why it matters: [thread] #Wellness #%s",
		short, req.TargetAudience, req.PracticeType, hashtag(req.PracticeType))
}

func wordCount(l Length, short, medium, long int) int {
	switch l {
	case LengthShort:
		return short
	case LengthLong:
		return long
	default:
		return medium
	}
}

func readTime(words int) int {
	return (words + 199) / 200
}

func newsletter(req Request) Newsletter {
	words := wordCount(req.Length, 300, 800, 1500)
	return Newsletter{
		Subject: fmt.Sprintf("%s: What Every %s Should Know", req.Topic, req.TargetAudience),
		Content: fmt.Sprintf("# %s: A %s Perspective\n\nDear %s,\n\nIn my years of %s practice, I've learned that %s is one of the most important factors in achieving lasting wellness...\n\n## Why This Matters\n\n[Content would be generated based on topic and practice type]\n\n## Practical Steps\n\n1. [Step 1 based on topic]\n2. [Step 2 based on topic]\n3. [Step 3 based on topic]\n\n## Your Next Steps\n\n[Call to action based on practice type]\n\nWarmly,\n[Practitioner Name]",
			req.Topic, req.PracticeType, req.TargetAudience, req.PracticeType, strings.ToLower(req.Topic)),
		WordCount:         words,
		EstimatedReadTime: readTime(words),
	}
}

func emailSequence(req Request) []SequenceEmail {
	return []SequenceEmail{
		{
			Day:     0,
			Subject: fmt.Sprintf("Welcome! Let's talk about %s", req.Topic),
			Content: fmt.Sprintf("Hi there!\n\nThanks for your interest in %s. I wanted to share something important about %s...", req.PracticeType, strings.ToLower(req.Topic)),
		},
		{
			Day:     3,
			Subject: fmt.Sprintf("The %s challenge I see most often", req.Topic),
			Content: fmt.Sprintf("In my %s practice, I notice that %s often struggle with...", req.PracticeType, req.TargetAudience),
		},
		{
			Day:     7,
			Subject: fmt.Sprintf("Ready to take action on %s?", req.Topic),
			Content: fmt.Sprintf("It's been a week since we started talking about %s. Are you ready to...", req.Topic),
		},
	}
}

func blogPost(req Request) BlogPost {
	words := wordCount(req.Length, 500, 1200, 2500)
	return BlogPost{
		Title: fmt.Sprintf("%s: A Complete Guide for %s", req.Topic, req.TargetAudience),
		Content: fmt.Sprintf("# %s: A Complete Guide for %s\n\n## Introduction\n\n[Introduction based on topic and practice type]\n\n## The Problem\n\n[Problem description]\n\n## The Solution\n\n[Solution based on practice type]\n\n## Implementation\n\n[Step-by-step implementation]\n\n## Conclusion\n\n[Conclusion and call to action]",
			req.Topic, req.TargetAudience),
		WordCount:         words,
		EstimatedReadTime: readTime(words),
		SEOKeywords:       []string{req.Topic, req.PracticeType, req.TargetAudience, "wellness", "health"},
	}
}
