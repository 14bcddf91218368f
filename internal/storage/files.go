package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// LoadCategoryFiles reads every *.json file in dir as one category pool.
// Files are read in name order, which also fixes the weighted-selection order.
func LoadCategoryFiles(dir string) ([]models.Category, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read category dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read category file %s: %w", path, err)
		}
		var cat models.Category
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("parse category file %s: %w", path, err)
		}
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("category file %s: %w", path, err)
		}
		categories = append(categories, cat)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no category files found in %s", dir)
	}
	return categories, nil
}
