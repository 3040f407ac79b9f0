package moderation

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/reqctx"
	"google.golang.org/genai"
)

// ScoreClient asks Gemini how likely a new listing is to come from a bot or
// scam account. Scoring is best-effort; callers fail open when it errors.
type ScoreClient struct {
	model      string
	httpClient *http.Client
}

func NewScoreClient(httpClient *http.Client) *ScoreClient {
	model := os.Getenv("GEMINI_MODERATION_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &ScoreClient{model: model, httpClient: httpClient}
}

const scorePrompt = `You rate marketplace listings for bot/scam likelihood.
Given a concert ticket or merch resale listing (title, description, city),
estimate how likely it was posted by a bot or scammer.
Signals: duplicated boilerplate text, prices far below face value, urgency
pressure, off-platform payment requests, nonsense city/date combinations.
Return a single integer between 0 (clearly human, legitimate) and 100
(almost certainly a bot or scam). Return only the number, no explanation,
no punctuation, no whitespace around it.`

// Score returns a 0-100 bot likelihood for the listing text.
func (c *ScoreClient) Score(ctx context.Context, title, description, city string) (int, error) {
	rid := reqctx.RID(ctx)
	listingID := reqctx.ListingID(ctx)
	start := time.Now()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Printf("[mod] rid=%s listing=%d stage=client_init err=%v", rid, listingID, err)
		return 0, err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(scorePrompt),
		genai.NewPartFromText(fmt.Sprintf("Title: %s\nDescription: %s\nCity: %s", title, description, city)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	genStart := time.Now()
	log.Printf("[mod] rid=%s listing=%d stage=gemini_start model=%s", rid, listingID, c.model)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[mod] rid=%s listing=%d stage=gemini_fail model=%s err=%v", rid, listingID, c.model, err)
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	score, err := ParseScore(rawText)
	if err != nil {
		text := strings.ReplaceAll(rawText, "\n", " ")
		if len(text) > 80 {
			text = text[:80]
		}
		log.Printf("[mod] rid=%s listing=%d stage=parse_fail text=%q err=%v", rid, listingID, text, err)
		return 0, err
	}
	log.Printf("[mod] rid=%s listing=%d stage=score_ok score=%d genMs=%d totalMs=%d",
		rid, listingID, score, time.Since(genStart).Milliseconds(), time.Since(start).Milliseconds())
	return score, nil
}
