package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"essay-reader/internal/domain/content"
)

// CardSetLoader loads card sets from JSON files in a directory
type CardSetLoader struct {
	dir string
}

// NewCardSetLoader creates a new card set loader
func NewCardSetLoader(dir string) *CardSetLoader {
	return &CardSetLoader{dir: dir}
}

// CardSetData represents the JSON structure of a card set file
type CardSetData struct {
	Title string         `json:"title"`
	Slug  string         `json:"slug"`
	Cards []CardSetEntry `json:"cards"`
}

// CardSetEntry represents a single card in JSON
type CardSetEntry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LoadSets loads every *.json card set in the directory, sorted by filename.
// Card IDs must be unique across all sets; a duplicate is a content error.
func (cl *CardSetLoader) LoadSets() ([]content.Set, error) {
	entries, err := os.ReadDir(cl.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read card set directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	seen := make(map[string]string)
	var sets []content.Set
	for _, name := range files {
		set, err := cl.loadFile(filepath.Join(cl.dir, name))
		if err != nil {
			return nil, err
		}
		for _, card := range set.Cards {
			if prev, ok := seen[card.ID]; ok {
				return nil, fmt.Errorf("duplicate card ID %q in %s (already in %s)", card.ID, name, prev)
			}
			seen[card.ID] = name
		}
		sets = append(sets, set)
	}

	return sets, nil
}

func (cl *CardSetLoader) loadFile(path string) (content.Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return content.Set{}, fmt.Errorf("failed to open card set file: %w", err)
	}
	defer file.Close()

	var data CardSetData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return content.Set{}, fmt.Errorf("failed to decode card set %s: %w", filepath.Base(path), err)
	}

	if data.Title == "" {
		return content.Set{}, fmt.Errorf("card set %s has no title", filepath.Base(path))
	}
	if data.Slug == "" {
		data.Slug = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	set := content.Set{Title: data.Title, Slug: data.Slug}
	for i, entry := range data.Cards {
		if entry.ID == "" {
			return content.Set{}, fmt.Errorf("card %d in %s has no ID", i, filepath.Base(path))
		}
		if entry.Question == "" || entry.Answer == "" {
			return content.Set{}, fmt.Errorf("card %q in %s is missing question or answer", entry.ID, filepath.Base(path))
		}
		set.Cards = append(set.Cards, content.Card{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
		})
	}

	return set, nil
}
