// vercel-source recreates the source files of a Vercel deployment on local disk.
//
// It asks for an access token (or reads VERCEL_AUTH_TOKEN), lets the operator
// pick a team, a project and a deployment, then walks the deployment's file
// listing and downloads every file one at a time. Build output (out/) and
// lambda/edge functions are never downloaded.
//
// Usage:
//
//	vercel-source [flags]
//
// Run with -h for the flag list.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sigaihealth/vercelsourcerecover/internal/config"
	"github.com/sigaihealth/vercelsourcerecover/internal/logging"
	"github.com/sigaihealth/vercelsourcerecover/internal/materialize"
	"github.com/sigaihealth/vercelsourcerecover/internal/metrics"
	"github.com/sigaihealth/vercelsourcerecover/internal/prompt"
	"github.com/sigaihealth/vercelsourcerecover/pkg/client"
)

// previewBytes bounds how much of the listing response is logged.
const previewBytes = 500

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: "stderr"}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logging init: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx := logging.WithRunID(context.Background())
	log := logging.WithContext(ctx)

	ask := prompt.New(os.Stdin, os.Stderr)

	if cfg.Token == "" {
		token, err := ask.Token()
		if err != nil {
			log.Fatal("cannot read access token", zap.Error(err))
		}
		cfg.Token = token
	}

	api := client.New(client.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		AuthToken: cfg.Token,
	})

	teamID := cfg.TeamID
	if !cfg.TeamChosen() {
		log.Info("getting list of teams")
		teams, err := api.Teams(ctx)
		if err != nil {
			log.Fatal("Cannot download teams list. Please check your authorization token!", zap.Error(err))
		}
		if teamID, err = ask.Team(teams); err != nil {
			log.Fatal("team selection aborted", zap.Error(err))
		}
	}

	deploymentID := cfg.DeploymentID
	if deploymentID == "" {
		log.Info("getting list of deployments, this might take a while", zap.String("team_id", teamID))
		deployments, err := api.Deployments(ctx, teamID)
		if err != nil {
			log.Fatal("Cannot get the deployments list.", zap.Error(err))
		}
		if len(deployments) == 0 {
			log.Fatal("No deployments found for your choices. Exiting...")
		}
		project, err := ask.Project(deployments)
		if err != nil {
			log.Fatal("project selection aborted", zap.Error(err))
		}
		deployment, err := ask.Deployment(project, deployments)
		if err != nil {
			log.Fatal("deployment selection aborted", zap.Error(err))
		}
		deploymentID = deployment.UID
		log.Info("selected deployment", zap.String("project", project), zap.String("url", deployment.URL))
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		if outputDir, err = ask.OutputDir(config.DefaultOutputDir); err != nil {
			log.Fatal("cannot read output directory", zap.Error(err))
		}
	}

	target := config.Target{Token: api.AuthToken(), TeamID: teamID, DeploymentID: deploymentID, OutputDir: outputDir}
	if err := target.Validate(); err != nil {
		log.Fatal("cannot start", zap.Error(err))
	}

	rec := metrics.New()
	m, err := materialize.New(api, materialize.Options{Exclude: cfg.Exclude, Metrics: rec})
	if err != nil {
		log.Fatal("invalid exclude pattern", zap.Error(err))
	}

	log.Info("fetching file tree", zap.String("url", api.DeploymentFilesURL(deploymentID, teamID)))
	body, err := api.DeploymentFiles(ctx, deploymentID, teamID)
	if err != nil {
		log.Fatal("Cannot recreate the file tree.", zap.Error(err))
	}
	log.Debug("listing response", zap.ByteString("preview", preview(body)))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatal("cannot create output directory", zap.String("dir", outputDir), zap.Error(err))
	}

	dc := materialize.DownloadContext{
		DeploymentID: target.DeploymentID,
		Token:        target.Token,
		TeamID:       target.TeamID,
		OutputRoot:   target.OutputDir,
	}

	log.Info("recreating the deployment structure", zap.String("output", outputDir))
	summary, err := m.MaterializeRaw(ctx, body, dc)
	if err != nil {
		log.Fatal("Cannot recreate the file tree.", zap.Error(err))
	}

	for _, f := range summary.Failures {
		log.Warn("missing file", zap.String("path", f.Path), zap.Int("status", f.Status), zap.String("url", f.URL))
	}
	log.Info("done",
		zap.Int("written", summary.Written),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("nodes_skipped", summary.NodesSkipped),
		zap.Int("directories", summary.Directories),
		zap.Int64("bytes", summary.Bytes))

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("cannot write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
}

func preview(body []byte) []byte {
	if len(body) > previewBytes {
		return body[:previewBytes]
	}
	return body
}
