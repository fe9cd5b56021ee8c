package materialize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/sigaihealth/vercelsourcerecover/internal/logging"
	"github.com/sigaihealth/vercelsourcerecover/internal/metrics"
	"github.com/sigaihealth/vercelsourcerecover/pkg/models"
	"github.com/sigaihealth/vercelsourcerecover/pkg/tree"
)

// buildOutputDir is the provider's build output directory; it is never downloaded.
const buildOutputDir = "out"

// Node skip reasons.
const (
	skipNoName   = "missing name"
	skipOut      = "build output"
	skipUnknown  = "unknown type"
	skipExcluded = "excluded"
	skipUnsafe   = "unsafe path"
	skipInvalid  = "invalid entry"
)

// Summary counts what a run did.
type Summary struct {
	Written     int
	Skipped     int
	Failed      int
	Bytes       int64
	Directories int
	// NodesSkipped counts listing entries dropped before any download.
	NodesSkipped int
	Failures     []Result
}

func (s *Summary) add(r Result) {
	switch r.Outcome {
	case Written:
		s.Written++
		s.Bytes += int64(r.Bytes)
	case Skipped:
		s.Skipped++
	default:
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
}

func (s *Summary) merge(o Summary) {
	s.Written += o.Written
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Bytes += o.Bytes
	s.Directories += o.Directories
	s.NodesSkipped += o.NodesSkipped
	s.Failures = append(s.Failures, o.Failures...)
}

// Options configures a Materializer.
type Options struct {
	// Exclude holds doublestar patterns matched against paths relative to
	// the deployment root. They apply on top of the fixed out/ exclusion.
	Exclude []string
	Metrics *metrics.Recorder
}

// Materializer walks listings and downloads every file they name, one at a time.
type Materializer struct {
	fetcher *Fetcher
	exclude []string
	metrics *metrics.Recorder
}

// New creates a Materializer reading content through reader.
func New(reader ContentReader, opts Options) (*Materializer, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Materializer{
		fetcher: NewFetcher(reader, opts.Metrics),
		exclude: opts.Exclude,
		metrics: opts.Metrics,
	}, nil
}

// Materialize dispatches a parsed listing to the matching materializer.
func (m *Materializer) Materialize(ctx context.Context, listing *tree.Listing, dc DownloadContext) Summary {
	log := logging.WithContext(ctx)
	if listing.Shape == tree.ShapeFlat {
		log.Info("processing flat file list", zap.Int("entries", listing.Len()))
		return m.MaterializeFlatList(ctx, listing.Files, dc)
	}
	log.Info("processing file tree",
		zap.Stringer("shape", listing.Shape),
		zap.Int("top_level", listing.Len()),
		zap.Int("nodes", tree.CountNodes(listing.Nodes)),
		zap.Int("files", tree.CountFiles(listing.Nodes)))
	return m.MaterializeTree(ctx, listing.Nodes, "", dc)
}

// MaterializeRaw parses a listing body and materializes it.
func (m *Materializer) MaterializeRaw(ctx context.Context, body []byte, dc DownloadContext) (Summary, error) {
	listing, err := tree.Parse(body)
	if err != nil {
		return Summary{}, err
	}
	return m.Materialize(ctx, listing, dc), nil
}

// MaterializeTree recreates nodes under rel, a path relative to the output
// root ("" for the root itself).
func (m *Materializer) MaterializeTree(ctx context.Context, nodes []*models.TreeNode, rel string, dc DownloadContext) Summary {
	var s Summary
	log := logging.WithContext(ctx)

	for _, node := range nodes {
		if node == nil || node.Name == "" {
			log.Warn("skipping node", zap.String("reason", skipNoName), zap.String("parent", rel))
			m.skipNode(&s, skipNoName)
			continue
		}

		nodeRel := tree.BuildChildPath(rel, node.Name)
		nlog := log.With(zap.String("name", node.Name), zap.String("path", nodeRel))

		if node.Name == buildOutputDir {
			nlog.Info("skipping node", zap.String("reason", skipOut))
			m.skipNode(&s, skipOut)
			continue
		}

		switch node.Kind {
		case models.KindLambda, models.KindEdge:
			nlog.Info("skipping node", zap.String("reason", node.Kind.String()))
			m.skipNode(&s, node.Kind.String())
			continue
		case models.KindUnknown:
			nlog.Warn("skipping node", zap.String("reason", skipUnknown), zap.String("type", node.Type))
			m.skipNode(&s, skipUnknown)
			continue
		}

		if err := checkRelative(nodeRel); err != nil {
			nlog.Warn("skipping node", zap.String("reason", skipUnsafe), zap.Error(err))
			m.skipNode(&s, skipUnsafe)
			continue
		}
		if m.excluded(nodeRel) {
			nlog.Info("skipping node", zap.String("reason", skipExcluded))
			m.skipNode(&s, skipExcluded)
			continue
		}

		switch node.Kind {
		case models.KindDirectory:
			if err := m.mkdir(dc, nodeRel); err != nil {
				nlog.Error("cannot create directory", zap.Error(err))
				m.failSubtree(ctx, &s, node.Children, nodeRel, dc, err)
				continue
			}
			s.Directories++
			switch {
			case len(node.Children) > 0:
				nlog.Debug("processing children", zap.Int("children", len(node.Children)))
				s.merge(m.MaterializeTree(ctx, node.Children, nodeRel, dc))
			case !node.HasChildren():
				nlog.Warn("directory has no children array")
			}

		case models.KindFile:
			identifier := node.UID
			if identifier == "" {
				identifier = node.Name
			}
			s.add(m.fetcher.Fetch(ctx, identifier, rel, node.Name, dc))
		}
	}

	return s
}

// MaterializeFlatList recreates a flat list of files under the output root.
func (m *Materializer) MaterializeFlatList(ctx context.Context, entries []models.FlatFileEntry, dc DownloadContext) Summary {
	var s Summary
	log := logging.WithContext(ctx)

	kept := make([]models.FlatFileEntry, 0, len(entries))
	for _, e := range entries {
		e.RelativePath = strings.TrimLeft(e.RelativePath, "/")
		if strings.HasPrefix(e.RelativePath, buildOutputDir+"/") {
			log.Debug("skipping entry", zap.String("path", e.RelativePath), zap.String("reason", skipOut))
			m.skipNode(&s, skipOut)
			continue
		}
		kept = append(kept, e)
	}
	log.Info("filtered file list",
		zap.Int("kept", len(kept)),
		zap.Int("total", len(entries)))

	for _, e := range kept {
		if e.Shape == models.ShapeInvalid || e.RelativePath == "" {
			log.Warn("skipping entry", zap.String("reason", skipInvalid))
			m.skipNode(&s, skipInvalid)
			continue
		}

		elog := log.With(zap.String("path", e.RelativePath))
		if err := checkRelative(e.RelativePath); err != nil {
			elog.Warn("skipping entry", zap.String("reason", skipUnsafe), zap.Error(err))
			m.skipNode(&s, skipUnsafe)
			continue
		}
		if m.excluded(e.RelativePath) {
			elog.Info("skipping entry", zap.String("reason", skipExcluded))
			m.skipNode(&s, skipExcluded)
			continue
		}

		dir, name := tree.SplitPath(e.RelativePath)
		if dir != "" {
			if err := m.mkdir(dc, dir); err != nil {
				elog.Error("cannot create directory", zap.String("dir", dir), zap.Error(err))
				m.fail(&s, dc.LocalPath(e.RelativePath), err)
				continue
			}
			s.Directories++
		}

		elog.Debug("processing file", zap.String("uid", e.UID))
		s.add(m.fetcher.Fetch(ctx, e.Identifier(), dir, name, dc))
	}

	return s
}

// failSubtree reports every file below a directory that could not be created.
func (m *Materializer) failSubtree(ctx context.Context, s *Summary, nodes []*models.TreeNode, rel string, dc DownloadContext, cause error) {
	log := logging.WithContext(ctx)
	for _, node := range nodes {
		if node == nil || node.Name == "" || node.Name == buildOutputDir {
			continue
		}
		nodeRel := tree.BuildChildPath(rel, node.Name)
		switch node.Kind {
		case models.KindDirectory:
			m.failSubtree(ctx, s, node.Children, nodeRel, dc, cause)
		case models.KindFile:
			log.Error("cannot download file",
				zap.String("name", node.Name),
				zap.String("path", nodeRel),
				zap.String("reason", "parent directory not created"),
				zap.Error(cause))
			m.fail(s, dc.LocalPath(nodeRel), cause)
		}
	}
}

func (m *Materializer) fail(s *Summary, path string, err error) {
	s.add(Result{Outcome: Failed, Path: path, Err: err})
	m.metrics.RecordFile(metrics.OutcomeFailed, 0)
}

func (m *Materializer) mkdir(dc DownloadContext, rel string) error {
	if err := os.MkdirAll(dc.LocalPath(rel), 0o755); err != nil {
		return err
	}
	m.metrics.RecordDirectory()
	return nil
}

func (m *Materializer) excluded(rel string) bool {
	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (m *Materializer) skipNode(s *Summary, reason string) {
	s.NodesSkipped++
	m.metrics.RecordNodeSkip(reason)
}
