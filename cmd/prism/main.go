// Command prism renders a corner-plot animation from an MCMC sample
// chain. Chains come from a .npy or .json file, or from a built-in
// synthetic sampler for trying the tool without data.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/bfarr/prism"
	"github.com/bfarr/prism/cube"
	"github.com/bfarr/prism/internal/chainio"
	"github.com/bfarr/prism/internal/config"
	"github.com/bfarr/prism/internal/fsutil"
	"github.com/bfarr/prism/internal/monitoring"
	"github.com/bfarr/prism/internal/report"
	"github.com/bfarr/prism/internal/version"
)

var (
	inPath     = flag.String("in", "", "Input chain file (.npy or .json)")
	outPath    = flag.String("out", "", "Output animation file (.avi, .gif, .png, .mp4, ...)")
	configPath = flag.String("config", "", "JSON options file overlaying the defaults")
	reportPath = flag.String("report", "", "Write an HTML convergence trace page to this path")

	policyName    = flag.String("policy", "snapshot", "Samples visible per frame: snapshot, cumulative or window")
	windowSize    = flag.Int("window", 0, "Trailing iteration count for the window policy")
	labelsCSV     = flag.String("labels", "", "Comma-separated dimension labels (e.g. m,b)")
	truthsCSV     = flag.String("truths", "", "Comma-separated true parameter values (e.g. 2.2,0.5)")
	colorHex      = flag.String("color", prism.DefaultColor, "Sample ink as a hex color")
	truthColorHex = flag.String("truth-color", prism.DefaultTruthColor, "Truth cross-hair ink as a hex color")
	markerSize    = flag.Float64("marker-size", prism.DefaultMarkerPoints, "Scatter glyph radius in printer's points")
	finalBins     = flag.Int("final-bins", prism.DefaultFinalBins, "Histogram bins across the final iteration's range")
	panelInches   = flag.Float64("panel-inches", 2, "Edge length of one corner-grid cell in inches")
	dpi           = flag.Int("dpi", prism.DefaultDPI, "Raster resolution in dots per inch")
	colorByWalker = flag.Bool("color-by-walker", false, "Tint scatter markers per walker")

	fps         = flag.Int("fps", prism.DefaultFPS, "Playback rate in frames per second")
	roughLength = flag.Float64("rough-length", prism.DefaultRoughSeconds, "Target playback length in seconds; long chains are thinned to fit (negative disables thinning)")
	crossfade   = flag.Int("crossfade", 0, "Eased blend frames inserted between consecutive iterations")
	counter     = flag.Bool("counter", false, "Stamp an iteration counter on each frame")
	progress    = flag.Bool("progress", false, "Draw a progress bar along the bottom frame edge")
	jpegQuality = flag.Int("jpeg-quality", prism.DefaultJPEGQuality, "Per-frame JPEG quality for AVI output, 1-100")

	demoChain   = flag.Bool("demo", false, "Render a synthetic converging chain instead of reading -in")
	demoIters   = flag.Int("demo-iters", 300, "Demo chain iterations")
	demoWalkers = flag.Int("demo-walkers", 100, "Demo chain ensemble size")
	demoDims    = flag.Int("demo-dims", 2, "Demo chain dimensions")
	demoSeed    = flag.Uint64("seed", 42, "Demo chain random seed")
	saveChain   = flag.String("save-chain", "", "Also write the loaded or generated chain as JSON to this path")

	quiet       = flag.Bool("quiet", false, "Silence progress logging")
	debug       = flag.Bool("debug", false, "Log per-frame diagnostics")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if err := run(setFlags, fsutil.OSFileSystem{}); err != nil {
		log.Fatal(err)
	}
}

func run(setFlags map[string]bool, fs fsutil.FileSystem) error {
	if *quiet {
		monitoring.SetLogger(nil)
	}
	if *debug {
		monitoring.SetDebug(true)
	}
	if *outPath == "" && *reportPath == "" && *saveChain == "" {
		return fmt.Errorf("nothing to produce: pass -out, -report or -save-chain")
	}

	c, chainLabels, chainTruths, err := loadChain(fs)
	if err != nil {
		return err
	}
	monitoring.Logf("prism: chain holds %d iterations of %d walkers in %d dimensions",
		c.Iterations(), c.Walkers(), c.Dims())

	opts := prism.Options{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath, fs)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		if err := cfg.Apply(&opts); err != nil {
			return fmt.Errorf("apply config %s: %w", *configPath, err)
		}
	}
	if err := applyFlags(&opts, setFlags); err != nil {
		return err
	}
	if len(opts.Labels) == 0 {
		opts.Labels = chainLabels
	}
	if len(opts.Truths) == 0 {
		opts.Truths = chainTruths
	}

	if *saveChain != "" {
		if err := chainio.WriteCubeJSON(*saveChain, c, opts.Labels, fs); err != nil {
			return err
		}
		monitoring.Logf("prism: wrote chain to %s", *saveChain)
	}

	if *outPath != "" {
		anim, err := prism.Corner(c, opts)
		if err != nil {
			return err
		}
		if err := anim.Save(*outPath, anim.FPS()); err != nil {
			return err
		}
	}

	if *reportPath != "" {
		if err := report.Convergence(*reportPath, c, opts.Labels, fs); err != nil {
			return err
		}
		monitoring.Logf("prism: wrote convergence traces to %s", *reportPath)
	}
	return nil
}

// loadChain reads the chain named by -in or synthesizes the -demo one.
// Labels and truths ride along when the source knows them.
func loadChain(fs fsutil.FileSystem) (*cube.Cube, []string, []float64, error) {
	switch {
	case *demoChain && *inPath != "":
		return nil, nil, nil, fmt.Errorf("pass either -in or -demo, not both")
	case *demoChain:
		return chainio.Demo(*demoIters, *demoWalkers, *demoDims, *demoSeed)
	case *inPath != "":
		c, labels, err := chainio.ReadCube(*inPath, fs)
		return c, labels, nil, err
	default:
		return nil, nil, nil, fmt.Errorf("no chain to render: pass -in or -demo")
	}
}

// applyFlags copies flags the user actually set onto opts, so command
// line values win over the config file while untouched fields keep the
// file's (or the library's) values.
func applyFlags(opts *prism.Options, setFlags map[string]bool) error {
	if setFlags["policy"] {
		p, err := cube.ParsePolicy(*policyName)
		if err != nil {
			return err
		}
		opts.Policy = p
	}
	if setFlags["window"] {
		opts.WindowSize = *windowSize
	}
	if setFlags["labels"] {
		opts.Labels = parseCSVStringSlice(*labelsCSV)
	}
	if setFlags["truths"] {
		truths, err := parseCSVFloatSlice(*truthsCSV)
		if err != nil {
			return fmt.Errorf("bad -truths: %w", err)
		}
		opts.Truths = truths
	}
	if setFlags["color"] {
		opts.Color = *colorHex
	}
	if setFlags["truth-color"] {
		opts.TruthColor = *truthColorHex
	}
	if setFlags["marker-size"] {
		opts.MarkerSize = *markerSize
	}
	if setFlags["final-bins"] {
		opts.FinalBins = *finalBins
	}
	if setFlags["panel-inches"] {
		opts.PanelSize = vg.Length(*panelInches) * vg.Inch
	}
	if setFlags["dpi"] {
		opts.DPI = *dpi
	}
	if setFlags["fps"] {
		opts.FPS = *fps
	}
	if setFlags["rough-length"] {
		opts.RoughSeconds = *roughLength
	}
	if setFlags["crossfade"] {
		opts.CrossfadeFrames = *crossfade
	}
	if setFlags["counter"] {
		opts.ShowCounter = *counter
	}
	if setFlags["progress"] {
		opts.ShowProgress = *progress
	}
	if setFlags["color-by-walker"] {
		opts.ColorByWalker = *colorByWalker
	}
	if setFlags["jpeg-quality"] {
		opts.JPEGQuality = *jpegQuality
	}
	return nil
}

// parseCSVStringSlice splits a comma-separated list, trimming spaces.
func parseCSVStringSlice(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// parseCSVFloatSlice parses a comma-separated list of floats.
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
