// Config persistence. Updates rewrite a single key while preserving the
// comments and formatting of everything else by editing the yaml.Node
// tree instead of remarshaling the whole Config.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveRevset updates the revset key in the config file so the expression
// entered in the revset bar survives restarts.
func SaveRevset(configPath string, revset string) error {
	return saveScalar(configPath, "revset", revset)
}

// SaveSidebarWidth persists the sidebar width under ui.sidebar_width.
func SaveSidebarWidth(configPath string, width int) error {
	return saveNested(configPath, "ui", "sidebar_width", fmt.Sprintf("%d", width), "!!int")
}

func saveScalar(configPath, key, value string) error {
	doc, err := loadDocument(configPath)
	if err != nil {
		return err
	}

	root := mappingRoot(doc)
	setKey(root, key, &yaml.Node{Kind: yaml.ScalarNode, Value: value})

	return writeDocument(configPath, doc)
}

func saveNested(configPath, section, key, value, tag string) error {
	doc, err := loadDocument(configPath)
	if err != nil {
		return err
	}

	root := mappingRoot(doc)
	sectionNode := findKey(root, section)
	if sectionNode == nil || sectionNode.Kind != yaml.MappingNode {
		sectionNode = &yaml.Node{Kind: yaml.MappingNode}
		setKey(root, section, sectionNode)
	}
	setKey(sectionNode, key, &yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag})

	return writeDocument(configPath, doc)
}

// loadDocument parses the config file into a yaml.Node tree, returning an
// empty document structure for a missing or empty file.
func loadDocument(configPath string) (*yaml.Node, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	return &doc, nil
}

// mappingRoot returns the document's top-level mapping, creating one when
// the document is empty.
func mappingRoot(doc *yaml.Node) *yaml.Node {
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	return doc.Content[0]
}

// findKey returns the value node for key in a mapping, or nil.
func findKey(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setKey replaces the value for key in a mapping, appending the pair when
// the key is absent.
func setKey(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

// writeDocument marshals the tree and writes it atomically (temp file,
// then rename).
func writeDocument(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".tatami.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
