package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"bayut-parser-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Имена контрактов
const (
	SearchTaskEvent    = "SearchTaskEvent"
	ListingsFoundEvent = "ListingsFoundEvent"
	PageSchemaDocument = "PageSchema"

	Version1 = "1.0.0"
)

var schemaRoots = []string{"events", "documents"}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Сначала добавляем все схемы как ресурсы, чтобы работали $ref между ними
	for _, root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				file, err := schemas.SchemasFS.Open(path)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := compiler.AddResource(path, file); err != nil {
					log.Fatalf("failed to add schema resource %s: %v", path, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	for _, root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				schema, err := compiler.Compile(path)
				if err != nil {
					log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
					return nil
				}

				key := generateKeyFromPath(path)
				if key == "" {
					log.Printf("WARNING: unexpected schema path %s. Skipping.", path)
					return nil
				}
				compiledSchemas[key] = schema
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and compiling schemas: %v", err)
		}
	}
}

// generateKeyFromPath преобразует путь вида "events/search-task/v1.json"
// в ключ вида "SearchTaskEvent/1.0.0", а "documents/page-schema/v1.json" - в "PageSchema/1.0.0"
func generateKeyFromPath(path string) string {
	root, rest, ok := strings.Cut(path, "/")
	if !ok {
		return ""
	}

	parts := strings.Split(strings.TrimSuffix(rest, ".json"), "/")
	if len(parts) != 2 {
		return ""
	}

	caser := cases.Title(language.English)

	var nameBuilder strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		nameBuilder.WriteString(caser.String(p))
	}
	if root == "events" {
		nameBuilder.WriteString("Event")
	}

	version := strings.Replace(parts[1], "v", "", 1) + ".0.0"

	return fmt.Sprintf("%s/%s", nameBuilder.String(), version)
}

// ValidateEvent проверяет тело сообщения по схеме события
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return validate(eventType, eventVersion, body)
}

// ValidateDocument проверяет JSON-документ (например, схему страницы) по его схеме
func ValidateDocument(documentType, version string, body []byte) error {
	return validate(documentType, version, body)
}

func validate(name, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", name, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for '%s' version '%s' not found", name, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}

	return nil
}
