// Package models contains the data types shared by the client and the materializers.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NodeKind is the resolved variant of a TreeNode.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindDirectory
	KindFile
	KindLambda
	KindEdge
)

func (k NodeKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindLambda:
		return "lambda"
	case KindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// ResolveKind maps a declared node type to its variant. A node that carries a
// children array is a directory unless it is a lambda or edge function.
func ResolveKind(declared string, hasChildren bool) NodeKind {
	switch {
	case declared == "lambda":
		return KindLambda
	case declared == "edge":
		return KindEdge
	case declared == "directory" || hasChildren:
		return KindDirectory
	case declared == "file":
		return KindFile
	default:
		return KindUnknown
	}
}

// TreeNode is one entry of a deployment's file tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	UID      string      `json:"uid,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`

	// Kind is resolved from Type and Children when the node is decoded.
	Kind NodeKind `json:"-"`
}

// HasChildren reports whether the node carried a children array, even an empty one.
func (n *TreeNode) HasChildren() bool {
	return n.Children != nil
}

// UnmarshalJSON decodes the node and resolves its Kind.
func (n *TreeNode) UnmarshalJSON(data []byte) error {
	type plain TreeNode
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = TreeNode(p)
	n.Kind = ResolveKind(n.Type, n.HasChildren())
	return nil
}

// EntryShape records which of the flat listing formats an entry arrived in.
type EntryShape int

const (
	ShapeInvalid EntryShape = iota
	ShapePath               // "src/a.js"
	ShapeFile               // {"file": "src/a.js", "uid": ..., "sha": ..., "mode": ...}
	ShapeName               // {"name": "src/a.js", "uid": ...}
)

// FlatFileEntry is one entry of a flat file listing, normalized to a relative path
// and an optional content UID.
type FlatFileEntry struct {
	RelativePath string
	UID          string
	SHA          string
	Mode         uint32
	Shape        EntryShape
}

type flatFileRecord struct {
	File string          `json:"file"`
	Name string          `json:"name"`
	UID  string          `json:"uid"`
	SHA  string          `json:"sha"`
	Mode json.RawMessage `json:"mode"`
}

// UnmarshalJSON accepts a bare path string, a {file,...} record or a {name,...} record.
// Anything else decodes to an entry with ShapeInvalid.
func (e *FlatFileEntry) UnmarshalJSON(data []byte) error {
	*e = FlatFileEntry{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var p string
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if p != "" {
			e.RelativePath = p
			e.Shape = ShapePath
		}
		return nil
	case '{':
		var rec flatFileRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		switch {
		case rec.File != "":
			e.RelativePath = rec.File
			e.Shape = ShapeFile
		case rec.Name != "":
			e.RelativePath = rec.Name
			e.Shape = ShapeName
		default:
			return nil
		}
		e.UID = rec.UID
		e.SHA = rec.SHA
		e.Mode = parseMode(rec.Mode)
		return nil
	default:
		return nil
	}
}

// Identifier is the value used to address the entry's content: its UID when
// present, otherwise the full relative path.
func (e FlatFileEntry) Identifier() string {
	if e.UID != "" {
		return e.UID
	}
	return e.RelativePath
}

func parseMode(raw json.RawMessage) uint32 {
	s := string(bytes.Trim(raw, `"`))
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
