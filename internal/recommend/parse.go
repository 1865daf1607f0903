package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"

	"KYCrypto/internal/model"
)

// Tolerance is how far the allocation total may drift from 100.
const Tolerance = 1.0

// StripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type rawRecommendation struct {
	Type       string                   `json:"type"`
	Allocation []map[string]interface{} `json:"allocation"`
}

// ParseRecommendation decodes and validates a service answer.
func ParseRecommendation(raw string) (model.Portfolio, error) {
	var rec rawRecommendation
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &rec); err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: decode: %v", model.ErrRecommendationFault, err)
	}
	if len(rec.Allocation) == 0 {
		return model.Portfolio{}, fmt.Errorf("%w: missing allocation list", model.ErrRecommendationFault)
	}

	entries := make([]model.AllocationEntry, 0, len(rec.Allocation))
	seen := map[string]bool{}
	for i, obj := range rec.Allocation {
		e, err := parseEntry(obj)
		if err != nil {
			return model.Portfolio{}, fmt.Errorf("%w: entry %d: %v", model.ErrRecommendationFault, i, err)
		}
		if seen[e.Name] {
			return model.Portfolio{}, fmt.Errorf("%w: entry %d: duplicate asset %s", model.ErrRecommendationFault, i, e.Name)
		}
		seen[e.Name] = true
		entries = append(entries, e)
	}

	total := model.TotalValue(entries)
	if math.Abs(total-100) > Tolerance {
		return model.Portfolio{}, fmt.Errorf("%w: allocation totals %.2f", model.ErrRecommendationFault, total)
	}
	return model.Portfolio{Type: rec.Type, Allocation: entries, Source: model.SourceAI}, nil
}

func parseEntry(obj map[string]interface{}) (model.AllocationEntry, error) {
	var e model.AllocationEntry
	str := func(key string) (string, error) {
		v, ok := obj[key].(string)
		if !ok {
			return "", fmt.Errorf("field %s must be a string", key)
		}
		return v, nil
	}

	var err error
	if e.Name, err = str("name"); err != nil {
		return e, err
	}
	if !model.InUniverse(e.Name) {
		return e, fmt.Errorf("asset %q is not allowed", e.Name)
	}
	value, ok := obj["value"].(float64)
	if !ok {
		return e, fmt.Errorf("field value must be a number")
	}
	if value < 0 || value > 100 {
		return e, fmt.Errorf("value %.2f out of range", value)
	}
	e.Value = value
	if e.Color, err = str("color"); err != nil {
		return e, err
	}
	if e.MarketCap, err = str("marketCap"); err != nil {
		return e, err
	}
	if e.Volume, err = str("volume"); err != nil {
		return e, err
	}
	sentiment, err := str("sentiment")
	if err != nil {
		return e, err
	}
	switch model.Sentiment(sentiment) {
	case model.SentimentBullish, model.SentimentNeutral, model.SentimentBearish:
		e.Sentiment = model.Sentiment(sentiment)
	default:
		return e, fmt.Errorf("sentiment %q is invalid", sentiment)
	}
	if e.Volatility, err = str("volatility"); err != nil {
		return e, err
	}
	if s, ok := obj["explanation"].(string); ok {
		e.Explanation = s
	}
	return e, nil
}
