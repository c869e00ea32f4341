package pageschema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"bayut-parser-service/internal/contracts"

	"gopkg.in/yaml.v2"
)

//go:embed bayut_v1.yaml
var defaultSchemaYAML []byte

// PageSchema - версия соответствия полей объявления CSS-селекторам
type PageSchema struct {
	Version int              `yaml:"version" json:"version"`
	Site    string           `yaml:"site" json:"site"`
	BaseURL string           `yaml:"base_url" json:"base_url,omitempty"`
	Listing ListingSelectors `yaml:"listing" json:"listing"`
	Detail  DetailSelectors  `yaml:"detail" json:"detail"`
}

// ListingSelectors - селекторы карточки на странице выдачи.
// Селекторы полей применяются внутри карточки.
type ListingSelectors struct {
	Fragment  string `yaml:"fragment" json:"fragment"`
	Link      string `yaml:"link" json:"link"`
	LinkAttr  string `yaml:"link_attr" json:"link_attr,omitempty"`
	TitleAttr string `yaml:"title_attr" json:"title_attr,omitempty"`
	Image     string `yaml:"image" json:"image,omitempty"`
	ImageAttr string `yaml:"image_attr" json:"image_attr,omitempty"`
	Location  string `yaml:"location" json:"location,omitempty"`
	Price     string `yaml:"price" json:"price"`
}

// DetailSelectors - селекторы страницы объявления
type DetailSelectors struct {
	Description string `yaml:"description" json:"description"`
}

// Default возвращает встроенную схему bayut v1
func Default() (*PageSchema, error) {
	return Parse(defaultSchemaYAML)
}

// Load читает схему из YAML-файла; пустой путь означает встроенную схему
func Load(path string) (*PageSchema, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pageschema: failed to read %s: %w", path, err)
	}
	schema, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pageschema: %s: %w", path, err)
	}
	return schema, nil
}

// Parse разбирает YAML и проверяет результат по JSON-схеме документа
func Parse(data []byte) (*PageSchema, error) {
	var schema PageSchema
	if err := yaml.UnmarshalStrict(data, &schema); err != nil {
		return nil, fmt.Errorf("pageschema: invalid yaml: %w", err)
	}
	schema.applyDefaults()

	body, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("pageschema: failed to marshal for validation: %w", err)
	}
	version := fmt.Sprintf("%d.0.0", schema.Version)
	if err := contracts.ValidateDocument(contracts.PageSchemaDocument, version, body); err != nil {
		return nil, fmt.Errorf("pageschema: %w", err)
	}

	return &schema, nil
}

func (s *PageSchema) applyDefaults() {
	if s.Listing.LinkAttr == "" {
		s.Listing.LinkAttr = "href"
	}
	if s.Listing.TitleAttr == "" {
		s.Listing.TitleAttr = "title"
	}
	if s.Listing.ImageAttr == "" {
		s.Listing.ImageAttr = "src"
	}
}
