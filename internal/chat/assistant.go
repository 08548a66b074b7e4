package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = `You are the assistant of a restaurant management system. Help owners understand
their business: sales and profit, inventory and stock, recipes and costs, margins, and concrete
ways to improve. Answer clearly and briefly. If the data is not enough, say so.`

// Assistant answers questions through an external chat endpoint and falls back
// to keyword rules when none is configured or the call fails.
type Assistant struct {
	endpoint string
	client   *http.Client
}

func NewAssistant(endpoint string) *Assistant {
	return &Assistant{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type completionRequest struct {
	System  string `json:"system"`
	Message string `json:"message"`
}

type completionResponse struct {
	Response string `json:"response"`
}

func (a *Assistant) Reply(ctx context.Context, message string, bc BusinessContext) string {
	if a.endpoint == "" {
		return Fallback(message, bc)
	}
	reply, err := a.complete(ctx, message, bc)
	if err != nil {
		log.Printf("[WARN] chat endpoint failed, using fallback: %v", err)
		return Fallback(message, bc)
	}
	return reply
}

func (a *Assistant) complete(ctx context.Context, message string, bc BusinessContext) (string, error) {
	payload, err := json.Marshal(completionRequest{
		System:  systemPrompt,
		Message: "Business context:\n" + bc.Lines() + "\n\nQuestion: " + message,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("empty response")
	}
	return out.Response, nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Fallback answers the common questions from the context alone.
func Fallback(message string, bc BusinessContext) string {
	m := strings.ToLower(message)

	switch {
	case containsAny(m, "earn", "profit", "made") && containsAny(m, "week"):
		return fmt.Sprintf("Over the last 7 days you sold Bs. %.2f.", bc.WeekSales)

	case containsAny(m, "stock", "ingredient", "supply", "supplies") && containsAny(m, "low", "critical", "out", "running"):
		if len(bc.Critical) == 0 {
			return "No ingredient is at or below its minimum stock right now."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d ingredients are at critical stock:\n", len(bc.Critical))
		for _, a := range bc.Critical {
			fmt.Fprintf(&b, "\n- %s: %g%s (minimum %g%s)", a.Name, a.Quantity, a.Unit, a.MinStock, a.Unit)
		}
		b.WriteString("\n\nRestock them soon.")
		return b.String()

	case containsAny(m, "dish", "recipe") && containsAny(m, "profitable", "profit", "margin", "best"):
		if bc.TopRecipe == nil {
			return "There are no available recipes yet."
		}
		r := bc.TopRecipe
		return fmt.Sprintf("Your most profitable dish is %s with a %.1f%% margin. It costs Bs. %.2f to make and sells for Bs. %.2f, leaving Bs. %.2f per plate.",
			r.Name, r.Margin, r.Cost, r.Price, r.Price-r.Cost)

	case containsAny(m, "sales", "sold") && containsAny(m, "today"):
		return fmt.Sprintf("Today you registered %d sales for Bs. %.2f.", bc.TodayCount, bc.TodaySales)
	}

	return "I can help with sales, inventory, recipes, costs and profitability. Could you be more specific?"
}
