package assistant

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// Prompt 一次生成请求；Image 非空时作为内联图片随文本发送
type Prompt struct {
	System    string
	Text      string
	Image     []byte
	ImageMIME string
}

// Generator 外部文本生成服务
type Generator interface {
	Text(ctx context.Context, p Prompt) (string, error)
	List(ctx context.Context, p Prompt) ([]string, error)
}

var ErrEmptyResponse = errors.New("empty model response")

var listNumbering = regexp.MustCompile(`^\d+\.\s*`)

// ParseList 优先按 JSON 字符串数组解析，失败则按行拆分并去掉序号
func ParseList(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items
	}
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(listNumbering.ReplaceAllString(strings.TrimSpace(line), "")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const DefaultModel = "gemini-3-flash-preview"

type GenAI struct {
	client *genai.Client
	model  string
}

func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GenAI{client: client, model: model}, nil
}

func (g *GenAI) contents(p Prompt) []*genai.Content {
	if len(p.Image) == 0 {
		return genai.Text(p.Text)
	}
	mime := p.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(p.Image, mime),
		genai.NewPartFromText(p.Text),
	}, genai.RoleUser)}
}

func (g *GenAI) generate(ctx context.Context, p Prompt, cfg *genai.GenerateContentConfig) (string, error) {
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, g.contents(p), cfg)
	if err != nil {
		return "", errors.Wrap(err, "genai generate")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GenAI) Text(ctx context.Context, p Prompt) (string, error) {
	return g.generate(ctx, p, &genai.GenerateContentConfig{})
}

func (g *GenAI) List(ctx context.Context, p Prompt) ([]string, error) {
	raw, err := g.generate(ctx, p, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return nil, err
	}
	return ParseList(raw), nil
}
