package materialize

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sigaihealth/vercelsourcerecover/internal/logging"
	"github.com/sigaihealth/vercelsourcerecover/internal/metrics"
	"github.com/sigaihealth/vercelsourcerecover/pkg/client"
	"github.com/sigaihealth/vercelsourcerecover/pkg/tree"
)

// Outcome is the terminal state of a single file download.
type Outcome int

const (
	Written Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return metrics.OutcomeWritten
	case Skipped:
		return metrics.OutcomeSkipped
	default:
		return metrics.OutcomeFailed
	}
}

// Skip reasons reported by the fetcher.
const (
	ReasonCollision = "name collision with existing directory"
	ReasonNotFound  = "not found"
	ReasonGone      = "gone — likely a compiled artifact"
)

// Result describes what happened to one file.
type Result struct {
	Outcome Outcome
	// Path is the local save path.
	Path string
	// URL is the content endpoint used; empty when no request was made.
	URL    string
	Reason string
	Status int
	Bytes  int
	Err    error
}

// ContentReader is the subset of *client.Client the fetcher needs.
type ContentReader interface {
	FileURL(deploymentID, identifier, relPath, teamID string) string
	Get(ctx context.Context, rawURL, authorization string) (*client.Content, error)
}

// Fetcher downloads single files.
type Fetcher struct {
	reader  ContentReader
	metrics *metrics.Recorder
}

// NewFetcher creates a Fetcher. rec may be nil.
func NewFetcher(reader ContentReader, rec *metrics.Recorder) *Fetcher {
	return &Fetcher{reader: reader, metrics: rec}
}

// Fetch downloads the file addressed by identifier and writes it to
// relDir/displayName under the output root. relDir is relative to the
// deployment root and must already exist locally. Errors never escape: they
// are reported through the Result.
func (f *Fetcher) Fetch(ctx context.Context, identifier, relDir, displayName string, dc DownloadContext) Result {
	relPath := tree.BuildChildPath(relDir, displayName)
	savePath := dc.LocalPath(relPath)
	log := logging.WithContext(ctx).With(zap.String("name", displayName), zap.String("path", relPath))

	if info, err := os.Stat(savePath); err == nil && info.IsDir() {
		log.Info("skipping file", zap.String("reason", ReasonCollision))
		return f.finish(Result{Outcome: Skipped, Path: savePath, Reason: ReasonCollision})
	}

	url := f.reader.FileURL(dc.DeploymentID, identifier, relPath, dc.TeamID)
	addressing := "path"
	if client.IsUID(identifier) {
		addressing = "uid"
	}
	log.Debug("downloading file", zap.String("url", url), zap.String("addressing", addressing))

	start := time.Now()
	content, err := f.reader.Get(ctx, url, dc.Token)
	f.metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return f.finish(f.classify(log, err, savePath, url))
	}

	data, err := decodeContent(content)
	if err != nil {
		log.Error("cannot decode file", zap.String("url", url), zap.Error(err))
		return f.finish(Result{Outcome: Failed, Path: savePath, URL: url, Err: err})
	}

	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		log.Error("cannot write file", zap.String("save_path", savePath), zap.Error(err))
		return f.finish(Result{Outcome: Failed, Path: savePath, URL: url, Err: fmt.Errorf("write %s: %w", savePath, err)})
	}

	log.Info("downloaded file", zap.Int("bytes", len(data)))
	return f.finish(Result{Outcome: Written, Path: savePath, URL: url, Bytes: len(data)})
}

func (f *Fetcher) classify(log *zap.Logger, err error, savePath, url string) Result {
	se, ok := client.AsStatus(err)
	if !ok {
		log.Error("cannot download file", zap.String("url", url), zap.Error(err))
		return Result{Outcome: Failed, Path: savePath, URL: url, Err: err}
	}

	switch se.StatusCode {
	case http.StatusNotFound:
		log.Warn("skipping file", zap.String("reason", ReasonNotFound), zap.String("url", url))
		return Result{Outcome: Skipped, Path: savePath, URL: url, Reason: ReasonNotFound, Status: se.StatusCode}
	case http.StatusGone:
		log.Warn("skipping file", zap.String("reason", ReasonGone), zap.String("url", url))
		return Result{Outcome: Skipped, Path: savePath, URL: url, Reason: ReasonGone, Status: se.StatusCode}
	default:
		log.Error("cannot download file",
			zap.Int("status", se.StatusCode),
			zap.String("url", url),
			zap.String("error_body", se.Message))
		return Result{Outcome: Failed, Path: savePath, URL: url, Status: se.StatusCode, Err: err}
	}
}

func (f *Fetcher) finish(r Result) Result {
	f.metrics.RecordFile(r.Outcome.String(), r.Bytes)
	return r
}
