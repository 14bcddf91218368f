package content

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
	"go.uber.org/zap"
)

// ErrContentTooLong means a candidate could not be brought under the platform
// limit even after dropping every hashtag. The caller retries with a
// different topic/template pair.
var ErrContentTooLong = errors.New("content: rendered text exceeds platform limit")

// Catalog selects weighted categories and renders tweet candidates from their
// topic/template/hashtag pools.
type Catalog struct {
	rng         *rand.Rand
	categories  []models.Category
	totalWeight float64
	maxHashtags int
	maxLength   int
	logger      *zap.Logger
}

// NewCatalog validates the category pools and fixes the selection order.
// Categories keep their load order; weight ties are resolved by that order,
// not by id.
func NewCatalog(categories []models.Category, seed int64, maxHashtags, maxLength int, logger *zap.Logger) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, errors.New("content: no categories loaded")
	}
	total := 0.0
	for i := range categories {
		if err := categories[i].Validate(); err != nil {
			return nil, err
		}
		total += categories[i].Weight
	}
	if total <= 0 {
		return nil, errors.New("content: category weights sum to zero")
	}
	if maxLength <= 0 {
		maxLength = models.TweetMaxLength
	}
	return &Catalog{
		rng:         rand.New(rand.NewSource(seed)),
		categories:  categories,
		totalWeight: total,
		maxHashtags: maxHashtags,
		maxLength:   maxLength,
		logger:      logger,
	}, nil
}

func (c *Catalog) Categories() []models.Category { return c.categories }

// SelectCategory picks a category by cumulative weight.
func (c *Catalog) SelectCategory() models.Category {
	r := c.rng.Float64() * c.totalWeight
	acc := 0.0
	for _, cat := range c.categories {
		acc += cat.Weight
		if r < acc {
			return cat
		}
	}
	return c.categories[len(c.categories)-1]
}

// Render builds one candidate for the category. recentTopics is the
// most-recent-first list of topics already used for this category; a fresh
// topic is preferred, and when every topic is recent the least recently used
// one is reused rather than failing.
//
// Hashtags are appended as a random subset up to the configured maximum, then
// dropped whole from the end until the text fits. If the bare text still
// exceeds the limit, Render fails with ErrContentTooLong.
func (c *Catalog) Render(cat models.Category, recentTopics []string, now time.Time) (*models.TweetCandidate, error) {
	topic := c.pickTopic(cat, recentTopics)
	template := cat.Templates[c.rng.Intn(len(cat.Templates))]
	text := strings.ReplaceAll(template, "{topic}", topic)

	tags := c.pickHashtags(cat)
	for {
		full := composeText(text, tags)
		if len([]rune(full)) <= c.maxLength {
			return &models.TweetCandidate{
				Category:    cat.ID,
				Topic:       topic,
				Text:        full,
				GeneratedAt: now,
			}, nil
		}
		if len(tags) == 0 {
			return nil, fmt.Errorf("%w: category=%s topic=%s len=%d", ErrContentTooLong, cat.ID, topic, len([]rune(full)))
		}
		tags = tags[:len(tags)-1]
	}
}

func composeText(text string, tags []string) string {
	if len(tags) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text) + " " + strings.Join(tags, " ")
}

// pickTopic prefers topics absent from the recent window; otherwise it reuses
// the one whose last use is the furthest back.
func (c *Catalog) pickTopic(cat models.Category, recentTopics []string) string {
	recentIdx := make(map[string]int, len(recentTopics))
	for i, t := range recentTopics {
		if _, seen := recentIdx[t]; !seen {
			recentIdx[t] = i
		}
	}

	fresh := make([]string, 0, len(cat.Topics))
	for _, t := range cat.Topics {
		if _, used := recentIdx[t]; !used {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) > 0 {
		return fresh[c.rng.Intn(len(fresh))]
	}

	// All topics were used recently: take the least recently used one.
	lru := cat.Topics[0]
	best := -1
	for _, t := range cat.Topics {
		if idx, ok := recentIdx[t]; ok && idx > best {
			best = idx
			lru = t
		}
	}
	if c.logger != nil {
		c.logger.Debug("all topics recently used, reusing least recent",
			zap.String("category", cat.ID),
			zap.String("topic", lru))
	}
	return lru
}

func (c *Catalog) pickHashtags(cat models.Category) []string {
	if c.maxHashtags <= 0 || len(cat.Hashtags) == 0 {
		return nil
	}
	pool := make([]string, len(cat.Hashtags))
	copy(pool, cat.Hashtags)
	c.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := c.maxHashtags
	if n > len(pool) {
		n = len(pool)
	}
	tags := make([]string, 0, n)
	for _, t := range pool[:n] {
		tags = append(tags, "#"+strings.TrimPrefix(t, "#"))
	}
	return tags
}
