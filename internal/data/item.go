package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item is a carried resource. Explosiveness and flammability scale the
// explosion a unit produces when destroyed while carrying it.
type Item struct {
	Name          string  `yaml:"name"`
	Explosiveness float64 `yaml:"explosiveness"`
	Flammability  float64 `yaml:"flammability"`
}

type itemListFile struct {
	Items []Item `yaml:"items"`
}

// ItemTable holds item definitions indexed by name.
type ItemTable struct {
	items map[string]*Item
}

func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	return NewItemTable(f.Items), nil
}

func NewItemTable(items []Item) *ItemTable {
	t := &ItemTable{items: make(map[string]*Item, len(items))}
	for i := range items {
		it := items[i]
		t.items[it.Name] = &it
	}
	return t
}

// Get returns an item by name, or nil if not found.
func (t *ItemTable) Get(name string) *Item {
	return t.items[name]
}

func (t *ItemTable) Count() int {
	return len(t.items)
}
