package openai

import (
    "context"
    "encoding/base64"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/sashabaranov/go-openai"

    domai "github.com/bryanwahyu/mediscribe/internal/domain/ai"
)

const maxTokens = 2048

// Client adapts the OpenAI chat API to the ai.Provider port. The same model
// handles both text and vision input; set VisionModel to route image calls to
// a different one.
type Client struct {
    *openai.Client
    Model       string
    VisionModel string
}

func NewClient(apiKey, model, visionModel string) *Client {
    return &Client{Client: openai.NewClient(apiKey), Model: model, VisionModel: visionModel}
}

func (c *Client) SummarizeText(ctx context.Context, promptText string) (string, error) {
    model := c.Model
    if model == "" {
        model = "gpt-4o-mini"
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleUser, Content: promptText},
        },
    }
    applyTokenLimit(&req, model)

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return "", wrapAPIError(err)
    }
    if len(resp.Choices) == 0 {
        return "", nil
    }
    return resp.Choices[0].Message.Content, nil
}

func (c *Client) SummarizeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
    model := c.VisionModel
    if model == "" {
        model = c.Model
    }
    if model == "" {
        model = "gpt-4o-mini"
    }

    dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {
                Role: openai.ChatMessageRoleUser,
                MultiContent: []openai.ChatMessagePart{
                    {Type: openai.ChatMessagePartTypeText, Text: instruction},
                    {
                        Type: openai.ChatMessagePartTypeImageURL,
                        ImageURL: &openai.ChatMessageImageURL{
                            URL:    dataURL,
                            Detail: openai.ImageURLDetailAuto,
                        },
                    },
                },
            },
        },
    }
    applyTokenLimit(&req, model)

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return "", wrapAPIError(err)
    }
    if len(resp.Choices) == 0 {
        return "", nil
    }
    return resp.Choices[0].Message.Content, nil
}

// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
func applyTokenLimit(req *openai.ChatCompletionRequest, model string) {
    if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }
}

func wrapAPIError(err error) error {
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
        return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
    }
    return fmt.Errorf("failed to create chat completion: %w", err)
}
