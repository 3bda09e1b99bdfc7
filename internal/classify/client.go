package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tweetstash/internal/domain"
)

// maxSubmittedTextLen bounds the text sent per bookmark; the service
// has a context budget and long posts add nothing to classification.
const maxSubmittedTextLen = 280

// Annotation is the per-bookmark output of the classification service.
type Annotation struct {
	ID             string `json:"id"`
	Theme          string `json:"theme"`
	Insight        string `json:"insight"`
	Action         string `json:"action"`
	IsLikelyThread bool   `json:"isLikelyThread"`
}

// BatchResult is the validated outcome of classifying one batch.
type BatchResult struct {
	Themes    []domain.Theme `json:"themes"`
	Bookmarks []Annotation   `json:"bookmarks"`
}

// Classifier classifies one batch of bookmarks. Implementations must
// not mutate anything beyond their own state: retries, pacing and
// merging are the orchestrator's job.
type Classifier interface {
	ClassifyBatch(ctx context.Context, batch []domain.Bookmark) (*BatchResult, error)
}

// Client turns batches of bookmarks into prompts, sends them through a
// TextGenerator and validates the response into a BatchResult.
type Client struct {
	gen     TextGenerator
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewClient creates a classification client. timeout bounds each
// outbound call; a timeout surfaces as a TransportError failure.
func NewClient(gen TextGenerator, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		gen:     gen,
		timeout: timeout,
		log:     logger.WithField("component", "classifier"),
	}
}

// submission is the trimmed-down view of a bookmark sent to the
// service: identity, bounded text, author and a reply-count signal for
// thread detection. Engagement counters and URLs stay local.
type submission struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Author  string `json:"author"`
	Replies int    `json:"replies"`
}

// ClassifyBatch submits one batch and returns a validated result or a
// *Failure. It never returns a partial success: a malformed payload
// fails the whole batch.
func (c *Client) ClassifyBatch(ctx context.Context, batch []domain.Bookmark) (*BatchResult, error) {
	log := c.log.WithField("batch_size", len(batch))

	prompt, err := buildPrompt(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		if _, ok := AsFailure(err); ok {
			return nil, err
		}
		return nil, newFailure(TransportError, err, "generator error: %v", err)
	}

	result, err := parseResponse(raw)
	if err != nil {
		log.WithError(err).Warn("Classification response failed validation")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"themes":      len(result.Themes),
		"annotations": len(result.Bookmarks),
	}).Debug("Batch classified")
	return result, nil
}

// buildPrompt assembles the instruction plus the JSON-encoded batch
// payload, mirroring the shape the service is asked to echo back.
func buildPrompt(batch []domain.Bookmark) (string, error) {
	subs := make([]submission, 0, len(batch))
	for _, b := range batch {
		text := b.Text
		if len(text) > maxSubmittedTextLen {
			text = text[:maxSubmittedTextLen]
		}
		subs = append(subs, submission{
			ID:      b.ID,
			Text:    text,
			Author:  b.Author,
			Replies: b.Engagement.Replies,
		})
	}

	payload, err := json.Marshal(subs)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze these %d Twitter bookmarks and categorize them into themes. For each bookmark, provide:\n", len(batch))
	sb.WriteString("1. A theme/category (max 3 words)\n")
	sb.WriteString("2. A brief insight or key takeaway (1 sentence)\n")
	sb.WriteString("3. One actionable next step\n")
	sb.WriteString("4. Whether it's likely a thread (based on text patterns, ellipsis, numbering, \"thread\" mentions)\n\n")
	sb.WriteString("Return ONLY valid JSON in this exact format with no markdown, preamble, or explanation:\n")
	sb.WriteString(`{
  "themes": [
    {
      "name": "Theme Name",
      "description": "Brief description",
      "color": "#hexcolor"
    }
  ],
  "bookmarks": [
    {
      "id": "original_id",
      "theme": "Theme Name",
      "insight": "Key takeaway",
      "action": "Next step",
      "isLikelyThread": true/false
    }
  ]
}`)
	sb.WriteString("\n\nBookmarks to analyze:\n")
	sb.Write(payload)

	return sb.String(), nil
}

// parseResponse strips optional markdown code fences and strictly
// decodes the payload. Anything that does not conform to the documented
// structure is an InvalidResponse failure, never a partial success.
func parseResponse(raw string) (*BatchResult, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, newFailure(EmptyResponse, nil, "response contained no content after cleanup")
	}

	var result BatchResult
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&result); err != nil {
		return nil, newFailure(InvalidResponse, err, "response is not valid JSON: %v", err)
	}
	// Trailing garbage after the object means a truncated or chatty
	// response; reject it rather than trust what decoded so far.
	if dec.More() {
		return nil, newFailure(InvalidResponse, nil, "unexpected trailing content after JSON object")
	}

	for i, t := range result.Themes {
		if t.Name == "" {
			return nil, newFailure(InvalidResponse, nil, "theme %d has no name", i)
		}
	}
	for i, a := range result.Bookmarks {
		if a.ID == "" {
			return nil, newFailure(InvalidResponse, nil, "bookmark annotation %d has no id", i)
		}
	}

	return &result, nil
}

// stripCodeFences removes ```json / ``` wrappers some models insist on
// adding around JSON output.
func stripCodeFences(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
