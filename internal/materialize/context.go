// Package materialize recreates a deployment's remote file tree on local disk.
package materialize

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DownloadContext carries the per-run settings every download needs. It is
// built once by the caller and passed by value; nothing in this package
// mutates it.
type DownloadContext struct {
	DeploymentID string
	// Token is the Authorization header value, already normalized.
	Token  string
	TeamID string
	// OutputRoot is the local directory the tree is recreated under.
	OutputRoot string
}

// LocalPath maps a slash-separated path relative to the deployment root to a
// path under OutputRoot.
func (dc DownloadContext) LocalPath(rel string) string {
	if rel == "" {
		return dc.OutputRoot
	}
	return filepath.Join(dc.OutputRoot, filepath.FromSlash(rel))
}

// checkRelative rejects relative paths that would resolve outside the output root.
func checkRelative(rel string) error {
	if rel == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(rel, "/") || strings.Contains(rel, `\`) {
		return fmt.Errorf("path %q is not relative", rel)
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return fmt.Errorf("path %q has segment %q", rel, seg)
		}
	}
	return nil
}
