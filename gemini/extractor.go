// Package gemini implements structured pricing extraction using Google
// Gemini's vision capability: the page is screenshotted and the model
// returns a pricing object directly from the image. Used when DOM
// extraction is unreliable (heavy client-side rendering).
package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pricelens/pricewatch"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Extractor implements pricewatch.PricingExtractor at compile time.
var _ pricewatch.PricingExtractor = (*Extractor)(nil)

// Extractor screenshots a pricing page and asks Gemini for a structured
// pricing object.
type Extractor struct {
	client      *genai.Client
	screenshots pricewatch.Screenshotter
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, screenshots pricewatch.Screenshotter) *Extractor {
	return &Extractor{client: client, screenshots: screenshots}
}

// visionSchema is the JSON shape the model is instructed to return.
type visionSchema struct {
	Plans []struct {
		Name     string   `json:"name"`
		Price    string   `json:"price"`
		Billing  string   `json:"billing"`
		Features []string `json:"features"`
		CTA      string   `json:"cta"`
		Badges   []string `json:"badges"`
		Credits  string   `json:"credits"`
	} `json:"plans"`
	HasFreeTier     bool   `json:"hasFreeTier"`
	HighlightedPlan string `json:"highlightedPlan"`
	Currency        string `json:"currency"`
}

// ExtractPricing renders the page, screenshots it, and asks the model for
// structured pricing. All failure paths return the failure variant of
// PricingExtraction; model failures map to AI_ERROR and pages without
// pricing content to NO_PRICING.
func (e *Extractor) ExtractPricing(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.PricingExtraction {
	img, err := e.screenshots.Screenshot(ctx, url, region)
	if err != nil {
		return extractionFailed(classifyScreenshotError(err), "screenshot of %s: %v", url, err)
	}

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: img}},
				{Text: BuildUserPrompt(region)},
			},
		}},
		BuildConfig(),
	)
	if err != nil {
		return extractionFailed(pricewatch.FailureAIError, "gemini call failed: %v", err)
	}
	if result == nil {
		return extractionFailed(pricewatch.FailureAIError, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	text = stripCodeFence(text)
	if text == "" {
		return extractionFailed(pricewatch.FailureAIError, "gemini returned empty response")
	}

	var vs visionSchema
	if err := json.Unmarshal([]byte(text), &vs); err != nil {
		return extractionFailed(pricewatch.FailureAIError, "malformed model JSON: %v", err)
	}
	if len(vs.Plans) == 0 {
		return extractionFailed(pricewatch.FailureNoPricing, "no pricing plans visible on %s", url)
	}

	schema := &pricewatch.PricingSchema{
		Plans:           make([]pricewatch.PricingPlan, 0, len(vs.Plans)),
		HasFreeTier:     vs.HasFreeTier,
		HighlightedPlan: vs.HighlightedPlan,
		Currency:        vs.Currency,
		SourceURL:       url,
		CapturedAt:      time.Now().UTC(),
	}
	if region != nil {
		schema.Region = region.Key
		if schema.Currency == "" {
			schema.Currency = region.Currency
		}
	}
	for _, p := range vs.Plans {
		schema.Plans = append(schema.Plans, pricewatch.PricingPlan{
			Name:         p.Name,
			PriceRaw:     p.Price,
			PriceNumeric: pricewatch.ParsePrice(p.Price),
			Billing:      billingFromModel(p.Billing, p.Price),
			Features:     p.Features,
			CTA:          p.CTA,
			Badges:       p.Badges,
			Credits:      p.Credits,
		})
	}

	return &pricewatch.PricingExtraction{Schema: schema}
}

// BuildConfig returns the GenerateContentConfig for vision extraction.
// JSON response mode keeps the model from wrapping output in prose.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract pricing information from screenshots of pricing pages. Respond with JSON only, no prose.",
			}},
		},
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	}
}

// BuildUserPrompt builds the instruction accompanying the screenshot.
func BuildUserPrompt(region *pricewatch.RegionContext) string {
	var sb strings.Builder
	sb.WriteString("This is a screenshot of a SaaS pricing page. Return a JSON object with this shape:\n")
	sb.WriteString(`{"plans": [{"name": "", "price": "", "billing": "monthly|yearly|one-time|unknown", "features": [], "cta": "", "badges": [], "credits": ""}], "hasFreeTier": false, "highlightedPlan": "", "currency": "USD"}`)
	sb.WriteString("\nUse the displayed price string verbatim (e.g. \"$49/mo\"). ")
	sb.WriteString("Set price to \"Contact us\" for enterprise plans without a listed price. ")
	sb.WriteString("highlightedPlan is the visually emphasized or recommended plan, or \"\". ")
	sb.WriteString("If the page shows no pricing plans at all, return {\"plans\": []}.")
	if region != nil && region.Currency != "" {
		sb.WriteString(" Expect prices in ")
		sb.WriteString(region.Currency)
		sb.WriteString(" unless the page shows otherwise.")
	}
	return sb.String()
}

func extractionFailed(kind pricewatch.FailureKind, format string, args ...any) *pricewatch.PricingExtraction {
	failed := pricewatch.CrawlFailed("vision", kind, format, args...)
	return &pricewatch.PricingExtraction{Failure: failed.Failure}
}

// stripCodeFence removes a ```json fence if the model added one anyway.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func billingFromModel(billing, price string) pricewatch.BillingPeriod {
	switch strings.ToLower(strings.TrimSpace(billing)) {
	case "monthly":
		return pricewatch.BillingMonthly
	case "yearly", "annual":
		return pricewatch.BillingYearly
	case "one-time", "one_time", "lifetime":
		return pricewatch.BillingOneTime
	}
	return pricewatch.ParseBillingPeriod(price)
}

func classifyScreenshotError(err error) pricewatch.FailureKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return pricewatch.FailureTimeout
	case strings.Contains(msg, "403") || strings.Contains(msg, "blocked"):
		return pricewatch.FailureBlocked
	default:
		return pricewatch.FailureUnknown
	}
}
