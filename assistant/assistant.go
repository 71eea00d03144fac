// Package assistant wraps the generative-text helper: search suggestions,
// chat, recommendations, previews and campus-hub icebreakers. Every call
// degrades to a fixed fallback instead of failing.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	FallbackChat           = "I'm having a little trouble connecting to the campus mainframe. Try again in a second!"
	FallbackCondition      = "Could not analyze condition via AI."
	FallbackRecommendation = "Standard Engineering Mathematics by K.A. Stroud. Essential for core logic building."
	FallbackPreview        = "Unable to retrieve preview. Please try a specific title."
	FallbackEBooks         = "1. MIT OpenCourseWare Lecture Notes\n2. Project Gutenberg Digital Archive\n3. Library Genesis Academic Collection"
	FallbackLibraries      = "Could not find nearby libraries at this time."
)

func FallbackIcebreaker(interest string) string {
	return fmt.Sprintf("Hey! I saw you're into %s too. Have you checked out any great books on it lately?", interest)
}

const assistantPersona = "You are a helpful, witty, and high-tech AI assistant for a campus book-sharing platform called Campus Shelf. Use student-friendly language."

// MinSuggestQuery 少于该字符数不请求联想
const MinSuggestQuery = 2

type Assistant struct {
	gen Generator
	log *zap.Logger
}

// New gen 为 nil 时所有能力直接返回兜底文案
func New(gen Generator, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{gen: gen, log: log}
}

func (a *Assistant) Enabled() bool { return a.gen != nil }

func (a *Assistant) text(ctx context.Context, capability string, p Prompt, fallback string) string {
	if a.gen == nil {
		return fallback
	}
	out, err := a.gen.Text(ctx, p)
	if err != nil {
		a.log.Warn("assistant fallback", zap.String("capability", capability), zap.Error(err))
		return fallback
	}
	return out
}

func (a *Assistant) SearchSuggestions(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if a.gen == nil || utf8.RuneCountInString(query) < MinSuggestQuery {
		return []string{}
	}
	items, err := a.gen.List(ctx, Prompt{
		Text: fmt.Sprintf("Provide 5 concise search suggestions for a book-sharing app based on this input: %q. Return only the titles as a list.", query),
	})
	if err != nil {
		a.log.Warn("assistant fallback", zap.String("capability", "suggestions"), zap.Error(err))
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}

func (a *Assistant) Chat(ctx context.Context, message, userContext string) string {
	if userContext == "" {
		userContext = "General student"
	}
	return a.text(ctx, "chat", Prompt{
		System: assistantPersona,
		Text: "You are the Campus Shelf AI Assistant. Help the user with:\n" +
			"1. Finding books or digital resources.\n" +
			"2. Troubleshooting issues with the \"Campus Shelf\" app (an exchange/donation platform).\n" +
			"3. General campus advice and book recommendations.\n" +
			"User context: " + userContext + ".\n" +
			"User message: " + message,
	}, FallbackChat)
}

func (a *Assistant) AnalyzeCondition(ctx context.Context, image []byte, mime string) string {
	if len(image) == 0 {
		return FallbackCondition
	}
	return a.text(ctx, "condition", Prompt{
		Text:      "Analyze this book's condition. Is the cover damaged? Are pages yellow? Give a 1-sentence summary.",
		Image:     image,
		ImageMIME: mime,
	}, FallbackCondition)
}

func (a *Assistant) Recommend(ctx context.Context, course, semester string) string {
	return a.text(ctx, "recommend", Prompt{
		Text: fmt.Sprintf("Suggest a must-read textbook for a student studying %s in Semester %s. Provide the book title, author, and a 1-sentence reason why it is essential.", course, semester),
	}, FallbackRecommendation)
}

func (a *Assistant) Preview(ctx context.Context, title string) string {
	return a.text(ctx, "preview", Prompt{
		Text: fmt.Sprintf("Provide a detailed 3-point summary/preview for the book titled %q. Include: 1. Main theme, 2. Key topics covered, 3. Target audience. Keep it concise.", title),
	}, FallbackPreview)
}

func (a *Assistant) EBooks(ctx context.Context, subject, semester string) string {
	return a.text(ctx, "ebooks", Prompt{
		Text: fmt.Sprintf("Act as a university digital librarian. Recommend 3 high-quality free/open-source PDF or E-Book resources for %q in Semester %s. Format: Resource Name (Source/Site).", subject, semester),
	}, FallbackEBooks)
}

func (a *Assistant) Icebreaker(ctx context.Context, branch, interest string) string {
	return a.text(ctx, "icebreaker", Prompt{
		Text: fmt.Sprintf("Give a one-sentence icebreaker for a student in %s to connect with someone interested in %s on a campus book-sharing app.", branch, interest),
	}, FallbackIcebreaker(interest))
}

type Link struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Libraries struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

var (
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	bareURL      = regexp.MustCompile(`https?://[^\s)\]]+`)
)

// ExtractLinks 从回复里提取 markdown 链接和裸 URL，按出现顺序去重
func ExtractLinks(text string) []Link {
	links := []Link{}
	seen := map[string]bool{}
	for _, m := range markdownLink.FindAllStringSubmatch(text, -1) {
		if !seen[m[2]] {
			seen[m[2]] = true
			links = append(links, Link{Title: m[1], URI: m[2]})
		}
	}
	for _, u := range bareURL.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;")
		if !seen[u] {
			seen[u] = true
			links = append(links, Link{Title: u, URI: u})
		}
	}
	return links
}

func (a *Assistant) NearbyLibraries(ctx context.Context, lat, lng float64) Libraries {
	fallback := Libraries{Text: FallbackLibraries, Links: []Link{}}
	if a.gen == nil {
		return fallback
	}
	out, err := a.gen.Text(ctx, Prompt{
		Text: fmt.Sprintf("Find the 5 nearest public or university libraries to latitude %.5f, longitude %.5f. List their names and provide Google Maps links for each.", lat, lng),
	})
	if err != nil {
		a.log.Warn("assistant fallback", zap.String("capability", "libraries"), zap.Error(err))
		return fallback
	}
	return Libraries{Text: out, Links: ExtractLinks(out)}
}
