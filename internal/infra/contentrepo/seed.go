package contentrepo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/content-interlinker/internal/domain/interlink"
)

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	ID      int64  `yaml:"id"`
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// LoadSeedFile reads a YAML list of content items for the memory repository.
func LoadSeedFile(path string) ([]interlink.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) ([]interlink.Content, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]interlink.Content, 0, len(file.Items))
	for i, item := range file.Items {
		typ := interlink.ContentType(item.Type)
		if !typ.Valid() {
			return nil, fmt.Errorf("seed item %d: unknown type %q", i, item.Type)
		}
		if item.ID <= 0 {
			return nil, fmt.Errorf("seed item %d: id must be positive", i)
		}
		out = append(out, interlink.NewContent(item.ID, typ, item.Title, item.Content))
	}
	return out, nil
}
