package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AddHost appends a host to the hosts file at path, creating it with mode
// 0600 if needed. Legacy files get a legacy line; YAML files are edited as a
// node tree so existing comments and layout survive.
func AddHost(path string, host HostConfig) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return writeHostsFile(path, newHostsDocument(host))
	}
	if err != nil {
		return fmt.Errorf("failed to read hosts file: %w", err)
	}
	if err := CheckPermissions(path); err != nil {
		return err
	}

	existing, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse hosts file: %w", err)
	}
	for _, h := range existing.Hosts {
		if h.Label() == host.Label() {
			return fmt.Errorf("host '%s' already exists in %s", host.Label(), path)
		}
	}

	if IsLegacyFormat(data) {
		if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
			data = append(data, '\n')
		}
		data = append(data, FormatLegacyLine(host)+"\n"...)
		return writeHostsFile(path, data)
	}

	out, err := appendYAMLHost(data, host)
	if err != nil {
		return err
	}
	return writeHostsFile(path, out)
}

// appendYAMLHost adds host to the hosts sequence of a YAML document.
func appendYAMLHost(data []byte, host HostConfig) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return newHostsDocument(host), nil
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse hosts file: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping at document root")
	}

	hostsNode := findMapValue(docNode, "hosts")
	if hostsNode == nil {
		hostsNode = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "hosts"}
		docNode.Content = append(docNode.Content, keyNode, hostsNode)
	}
	if hostsNode.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("'hosts' must be a list")
	}

	var entry yaml.Node
	if err := entry.Encode(host); err != nil {
		return nil, fmt.Errorf("failed to encode host: %w", err)
	}
	hostsNode.Content = append(hostsNode.Content, &entry)

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	return []byte(buf.String()), nil
}

func newHostsDocument(host HostConfig) []byte {
	doc := struct {
		Hosts []HostConfig `yaml:"hosts"`
	}{Hosts: []HostConfig{host}}

	out, _ := yaml.Marshal(doc)
	return out
}

// writeHostsFile writes data and forces mode 0600, since os.WriteFile
// leaves the mode of an existing file alone and applies the umask to a
// new one.
func writeHostsFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, RequiredMode); err != nil {
		return fmt.Errorf("failed to write hosts file: %w", err)
	}
	if err := os.Chmod(path, RequiredMode); err != nil {
		return fmt.Errorf("failed to set hosts file permissions: %w", err)
	}
	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
