package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tmx/internal/config"
	"tmx/internal/gaps"
	"tmx/internal/logging"
	"tmx/internal/matrix"
	"tmx/internal/matrixcache"
	"tmx/internal/model"
	"tmx/internal/policy"
	"tmx/internal/snapshot"
)

// engine bundles the loaded configuration, policy, snapshot, and the
// matrix pipeline for one command invocation
type engine struct {
	root   string
	cfg    *config.Config
	pol    *policy.Policy
	logger *logging.Logger
	snap   *snapshot.Snapshot
}

// matrixCache is shared across commands in one process. Long-running
// callers embedding tmx inject their own cache instead.
var matrixCache *matrixcache.MemoryCache

func (e *engine) cache() *matrixcache.MemoryCache {
	if matrixCache == nil {
		matrixCache = matrixcache.NewMemoryCache(time.Duration(e.cfg.Cache.MatrixTtlMinutes) * time.Minute)
	}
	return matrixCache
}

// newEngine loads configuration, policy, and the snapshot for the
// resolved project root
func newEngine() (*engine, error) {
	root := resolveRoot()

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)

	pol, err := policy.Load(filepath.Join(root, config.ConfigDirName, "policy.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load gap policy: %w", err)
	}

	snap, err := snapshot.Load(resolveSnapshot(root))
	if err != nil {
		return nil, err
	}

	if issues := snap.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			logger.Warn("Snapshot issue", map[string]interface{}{
				"issue": issue,
			})
		}
	}

	return &engine{
		root:   root,
		cfg:    cfg,
		pol:    pol,
		logger: logger,
		snap:   snap,
	}, nil
}

// buildMatrix builds (or reuses) the matrix for the loaded snapshot
func (e *engine) buildMatrix(forceRefresh bool) (*model.TraceabilityMatrix, matrix.Input) {
	in := e.snap.Input()
	builder := matrix.NewBuilder(e.cfg, e.logger)

	provider := matrixcache.NewProvider(e.cache())
	m, cached := provider.GetOrBuild(in.AnalysisID, forceRefresh, func() *model.TraceabilityMatrix {
		return builder.Build(in)
	})
	if cached {
		e.logger.Debug("Using cached matrix", map[string]interface{}{
			"analysisId": in.AnalysisID,
		})
	}

	return m, in
}

// analyzeGaps runs the gap analyzer over a built matrix
func (e *engine) analyzeGaps(m *model.TraceabilityMatrix, in matrix.Input) *gaps.Report {
	analyzer := gaps.NewAnalyzer(e.cfg, e.pol, e.logger)
	return analyzer.Analyze(m, in)
}

// fail prints an error and exits
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
