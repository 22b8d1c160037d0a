package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"silsilah_go/internal/family"
)

// Snapshot 导入导出用的家族快照文件
type Snapshot struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	IsPublic    bool            `json:"is_public" yaml:"is_public"`
	Persons     []family.Person `json:"persons" yaml:"persons"`
}

// Bani 快照对应的家族记录
func (s *Snapshot) Bani() *Bani {
	return &Bani{Name: s.Name, Description: s.Description, IsPublic: s.IsPublic}
}

// DecodeSnapshot 解析快照，format 为 json 或 yaml
func DecodeSnapshot(r io.Reader, format string) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode json snapshot: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
	return &snap, nil
}

// LoadSnapshot 读取快照文件，按扩展名判断格式
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeSnapshot(f, format)
}
