// Package tree parses deployment file listings and provides helpers for walking them.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
	"github.com/sigaihealth/vercelsourcerecover/pkg/protocol"
)

// Shape identifies which form a listing response arrived in.
type Shape int

const (
	ShapeFlat   Shape = iota // {"files": [...]}
	ShapeArray               // [node, node, ...]
	ShapeSingle              // {node}
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeArray:
		return "array"
	default:
		return "single"
	}
}

// Listing is a parsed listing response. Files is set for ShapeFlat, Nodes otherwise.
type Listing struct {
	Shape Shape
	Files []models.FlatFileEntry
	Nodes []*models.TreeNode
}

// ErrEmptyListing is returned when the response body is empty or null.
var ErrEmptyListing = errors.New("empty listing")

// Parse decodes a listing response. An object with a files key is a flat list,
// an array is a sequence of top-level nodes, and any other object is a single node.
// Array elements that are not objects become nil nodes.
func Parse(data []byte) (*Listing, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmptyListing
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode node array: %w", err)
		}
		nodes := make([]*models.TreeNode, 0, len(raw))
		for _, r := range raw {
			nodes = append(nodes, decodeNode(r))
		}
		return &Listing{Shape: ShapeArray, Nodes: nodes}, nil

	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		if files, ok := probe["files"]; ok && !isNull(files) {
			var resp protocol.FilesResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return nil, fmt.Errorf("decode files: %w", err)
			}
			return &Listing{Shape: ShapeFlat, Files: resp.Files}, nil
		}
		var node models.TreeNode
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
		return &Listing{Shape: ShapeSingle, Nodes: []*models.TreeNode{&node}}, nil

	default:
		return nil, fmt.Errorf("unexpected listing body starting with %q", data[0])
	}
}

func decodeNode(raw json.RawMessage) *models.TreeNode {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var node models.TreeNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil
	}
	return &node
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Len returns the number of top-level items in the listing.
func (l *Listing) Len() int {
	if l.Shape == ShapeFlat {
		return len(l.Files)
	}
	return len(l.Nodes)
}

// CountNodes counts all nodes in a forest.
func CountNodes(nodes []*models.TreeNode) int {
	count := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		count += 1 + CountNodes(n.Children)
	}
	return count
}

// CountFiles counts the file nodes in a forest.
func CountFiles(nodes []*models.TreeNode) int {
	count := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Kind == models.KindFile {
			count++
		}
		count += CountFiles(n.Children)
	}
	return count
}

// BuildChildPath constructs a child's relative path from its parent's.
func BuildChildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

// SplitPath splits a relative file path into its directory prefix and base name.
func SplitPath(rel string) (dir, name string) {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return "", rel
	}
	return rel[:i], rel[i+1:]
}
