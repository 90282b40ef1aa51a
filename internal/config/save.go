package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SaveProtocol updates the protocol section of the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveProtocol(configPath string, protocol ProtocolConfig) error {
	return saveSection(configPath, "protocol", buildProtocolNode(protocol))
}

// SaveMilestones updates the milestones section of the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveMilestones(configPath string, milestones []float64) error {
	return saveSection(configPath, "milestones", buildMilestonesNode(milestones))
}

// saveSection replaces (or appends) a single top-level key in the config
// file and writes the result atomically.
func saveSection(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == key {
					root.Content[i+1] = value
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: key},
					value,
				)
			}
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	// Write atomically (write to temp, then rename)
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".breathe.yaml.tmp.*")
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

// buildProtocolNode creates a yaml.Node representing the protocol mapping.
func buildProtocolNode(p ProtocolConfig) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}

	appendScalar := func(key, value string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}

	if p.Name != "" {
		appendScalar("name", p.Name)
	}
	appendScalar("rounds", strconv.Itoa(p.Rounds))
	appendScalar("ready_seconds", formatSeconds(p.ReadySeconds))
	appendScalar("inhale_seconds", formatSeconds(p.InhaleSeconds))
	appendScalar("hold_full_seconds", formatSeconds(p.HoldFullSeconds))
	appendScalar("exhale_seconds", formatSeconds(p.ExhaleSeconds))
	appendScalar("hold_empty_seconds", formatSeconds(p.HoldEmptySeconds))
	appendScalar("final_inhale_seconds", formatSeconds(p.FinalInhaleSeconds))
	appendScalar("final_exhale_seconds", formatSeconds(p.FinalExhaleSeconds))

	return node
}

// buildMilestonesNode creates a yaml.Node representing the milestones array.
func buildMilestonesNode(milestones []float64) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Style:   yaml.FlowStyle,
		Content: make([]*yaml.Node, 0, len(milestones)),
	}
	for _, m := range milestones {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: formatSeconds(m),
		})
	}
	return node
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
