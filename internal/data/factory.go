package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FactoryBlock is a production block that builds one unit kind on a timer.
type FactoryBlock struct {
	Name           string  `yaml:"name"`
	UnitType       string  `yaml:"unit_type"`
	ProduceTime    float64 `yaml:"produce_time"` // time units
	MaxSpawn       int     `yaml:"max_spawn"`
	LaunchVelocity float64 `yaml:"launch_velocity"`
}

type factoryListFile struct {
	Factories []FactoryBlock `yaml:"factories"`
}

type FactoryTable struct {
	blocks map[string]*FactoryBlock
}

func LoadFactoryTable(path string) (*FactoryTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read factories: %w", err)
	}
	return ParseFactoryTable(raw)
}

func ParseFactoryTable(raw []byte) (*FactoryTable, error) {
	var f factoryListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse factories: %w", err)
	}
	t := &FactoryTable{blocks: make(map[string]*FactoryBlock, len(f.Factories))}
	for i := range f.Factories {
		b := &f.Factories[i]
		if b.Name == "" || b.UnitType == "" {
			return nil, fmt.Errorf("factories: entry %d needs name and unit_type", i)
		}
		if b.ProduceTime <= 0 {
			b.ProduceTime = 1000
		}
		if b.MaxSpawn <= 0 {
			b.MaxSpawn = 4
		}
		t.blocks[b.Name] = b
	}
	return t, nil
}

func (t *FactoryTable) Get(name string) *FactoryBlock { return t.blocks[name] }

func (t *FactoryTable) Count() int { return len(t.blocks) }
