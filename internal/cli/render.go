package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/isaflow/isaflow/pkg/cache"
	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/observability"
	"github.com/isaflow/isaflow/pkg/render"
	"github.com/isaflow/isaflow/pkg/scene"
	"github.com/isaflow/isaflow/pkg/script"
	"github.com/isaflow/isaflow/pkg/store"
)

const (
	// FormatJSON exports the timeline as a JSON document.
	FormatJSON = "json"
	// FormatSVG exports a static snapshot of the final object positions.
	FormatSVG = "svg"
	// FormatDOT exports the animation dependency graph as Graphviz DOT.
	FormatDOT = "dot"

	defaultMongoURI = "mongodb://localhost:27017"
	defaultMongoDB  = "isaflow"
	connectTimeout  = 10 * time.Second
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "json", "svg", "dot"
	configPath  string   // scene configuration TOML file
	noCache     bool     // bypass the artifact cache
	interactive bool     // pick a single section interactively
	publish     bool     // archive the timeline in MongoDB
	mongoURI    string   // MongoDB connection string
	mongoDB     string   // MongoDB database name
}

// newRenderCmd creates the render command for building animation scripts
// into timelines and exporting them as JSON, SVG, or DOT artifacts.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [script]",
		Short: "Build an animation script into a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), svg, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "scene configuration TOML file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick a single section interactively")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "archive the timeline in MongoDB")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", envOr("ISAFLOW_MONGO_URI", defaultMongoURI), "MongoDB connection string")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", envOr("ISAFLOW_MONGO_DB", defaultMongoDB), "MongoDB database name")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["json"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{FormatJSON}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{FormatJSON: true, FormatSVG: true, FormatDOT: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'json', 'svg', or 'dot')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// renderJob carries everything a render run needs after setup: the parsed
// script, configuration, cache handles, and the lazily built flow.
type renderJob struct {
	scr         *script.Script
	cfg         *config.Config
	scriptBytes []byte
	cfgBytes    []byte
	cache       cache.Cache
	keyer       cache.Keyer
	flow        *scene.Flow
}

// runRender loads and validates the script, then exports every requested
// format. Artifacts are cached by script and configuration content, so
// unchanged scripts re-export without rebuilding.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Info("rendering script", "path", input)

	job, err := prepare(ctx, input, opts)
	if err != nil {
		return err
	}
	defer job.cache.Close()

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := exportFormat(ctx, job, format, path, logger); err != nil {
			return err
		}
	}

	printStats(len(job.scr.Sections), stepCount(job), job.flow == nil)

	if opts.publish {
		return publish(ctx, job, opts)
	}
	return nil
}

// prepare reads and validates the script, loads the configuration, and opens
// the artifact cache. Interactive section selection bypasses the cache since
// the cache key covers the whole script.
func prepare(ctx context.Context, input string, opts *renderOpts) (*renderJob, error) {
	logger := loggerFromContext(ctx)

	scriptBytes, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Scene().OnScriptStart(ctx, input)
	scr, err := script.Parse(scriptBytes)
	observability.Scene().OnScriptComplete(ctx, input, opCount(scr), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	logger.Debug("script loaded", "title", scr.Title, "sections", len(scr.Sections), "ops", scr.OpCount())

	cfg := config.Default()
	var cfgBytes []byte
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
		if cfgBytes, err = os.ReadFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	noCache := opts.noCache
	if opts.interactive {
		sec, err := pickSection(scr)
		if err != nil {
			return nil, err
		}
		if sec == nil {
			return nil, fmt.Errorf("no section selected")
		}
		scr.Sections = []script.Section{*sec}
		noCache = true
	}

	return &renderJob{
		scr:         scr,
		cfg:         cfg,
		scriptBytes: scriptBytes,
		cfgBytes:    cfgBytes,
		cache:       newCache(noCache),
		keyer:       cache.NewDefaultKeyer(),
	}, nil
}

// exportFormat produces one artifact, preferring the cache and falling back
// to a fresh build.
func exportFormat(ctx context.Context, job *renderJob, format, path string, logger *log.Logger) error {
	key := job.keyer.ArtifactKey(job.scriptBytes, job.cfgBytes, format)

	data, hit, err := job.cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "err", err)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		logger.Debug("cache hit", "format", format)
	} else {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		if err := buildFlow(ctx, job); err != nil {
			return err
		}
		start := time.Now()
		observability.Scene().OnRenderStart(ctx, []string{format})
		data, err = renderArtifact(job.flow, format)
		observability.Scene().OnRenderComplete(ctx, []string{format}, time.Since(start), err)
		if err != nil {
			return err
		}
		if err := job.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			logger.Debug("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// buildFlow builds the script into a scheduled flow, once per run.
func buildFlow(ctx context.Context, job *renderJob) error {
	if job.flow != nil {
		return nil
	}
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	observability.Scene().OnScheduleStart(ctx, job.scr.Title)

	flow, err := job.scr.Build(job.cfg, logger)
	var steps int
	if err == nil {
		var tl *render.Timeline
		if tl, err = flow.Timeline(); err == nil {
			steps = tl.StepCount()
		}
	}
	observability.Scene().OnScheduleComplete(ctx, job.scr.Title, steps, prog.elapsed(), err)
	if err != nil {
		return err
	}

	job.flow = flow
	prog.done(fmt.Sprintf("Scheduled %d steps", steps))
	return nil
}

// renderArtifact serializes one output format from a built flow.
func renderArtifact(flow *scene.Flow, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		tl, err := flow.Timeline()
		if err != nil {
			return nil, err
		}
		return render.RenderJSON(tl)
	case FormatSVG:
		placement := flow.Placement()
		return render.SnapshotSVG(flow.SceneObjects(), float64(placement.Width()), float64(placement.Height())), nil
	case FormatDOT:
		return []byte(flow.Graph().ToDOT()), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// publish archives the built timeline in MongoDB, keyed by the script hash.
func publish(ctx context.Context, job *renderJob, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	if err := buildFlow(ctx, job); err != nil {
		return err
	}
	tl, err := job.flow.Timeline()
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	ts, err := store.Connect(connectCtx, opts.mongoURI, opts.mongoDB)
	if err != nil {
		return err
	}
	defer ts.Close(ctx)

	prog := newProgress(logger)
	hash := cache.Hash(job.scriptBytes)
	id, err := ts.Save(ctx, hash, tl.Record())
	observability.Store().OnSave(ctx, id, tl.StepCount(), prog.elapsed(), err)
	if err != nil {
		return err
	}

	printSuccess("Published timeline %s", id)
	printDetail("script hash: %s", hash)
	return nil
}

func opCount(s *script.Script) int {
	if s == nil {
		return 0
	}
	return s.OpCount()
}

func stepCount(job *renderJob) int {
	if job.flow == nil {
		return 0
	}
	tl, err := job.flow.Timeline()
	if err != nil {
		return 0
	}
	return tl.StepCount()
}
