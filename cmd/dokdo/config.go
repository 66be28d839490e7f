package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/JetbluejetYJ/dokdo"
	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/corr"
	"github.com/JetbluejetYJ/dokdo/frame"
	"github.com/JetbluejetYJ/dokdo/multitest"
	"github.com/JetbluejetYJ/dokdo/normalize"
)

// Config shared by all commands: flags first, then the config file, then
// DOKDO_* environment variables, then defaults.
type cmdConfig struct {
	// Flags.
	config    *string // configure file name.
	method    *string // association method.
	normalize *string // feature table normalization.
	alpha     *string // significance level.
	multitest *string // p-value correction.
	nsig      *string // min significant pairs per taxon and target.
	ncpu      *string // number of CPUs for using.
	innerJoin *bool   // keep shared samples only.
	progress  *bool   // show progress.
	verbose   *bool   // debug logging.

	opts   dokdo.Options
	logger *zap.Logger
}

func (cmd *cmdConfig) Flags(app *kingpin.Application) {
	cmd.config = app.Flag("config", "configure file (YAML, TOML or JSON)").Short('c').Default("").String()
	cmd.method = app.Flag("method", "association method: spearman or pearson").Default("").String()
	cmd.normalize = app.Flag("normalize", "normalization: none, log10, clr or zscore").Default("").String()
	cmd.alpha = app.Flag("alpha", "significance level of adjusted p-values").Default("").String()
	cmd.multitest = app.Flag("multitest", "p-value correction, e.g. fdr_bh, bonferroni, holm").Default("").String()
	cmd.nsig = app.Flag("nsig", "min number of significant associations per taxon and target").Default("").String()
	cmd.ncpu = app.Flag("ncpu", "number of CPUs").Default("").String()
	cmd.innerJoin = app.Flag("inner-join", "drop samples missing from either table instead of failing").Default("false").Bool()
	cmd.progress = app.Flag("progress", "show progress").Default("false").Bool()
	cmd.verbose = app.Flag("verbose", "debug logging").Short('v').Default("false").Bool()
}

// ParseConfig resolves the analysis options and registers the logger.
func (cmd *cmdConfig) ParseConfig() error {
	v := viper.New()
	v.SetDefault("method", "spearman")
	v.SetDefault("normalize", "none")
	v.SetDefault("alpha", 0.05)
	v.SetDefault("multitest", "fdr_bh")
	v.SetDefault("nsig", 0)
	v.SetDefault("ncpu", runtime.NumCPU())

	if *cmd.config != "" {
		v.SetConfigFile(*cmd.config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config %s: %w", *cmd.config, err)
		}
	}
	v.SetEnvPrefix("dokdo")
	v.AutomaticEnv()

	for key, flag := range map[string]*string{
		"method":    cmd.method,
		"normalize": cmd.normalize,
		"alpha":     cmd.alpha,
		"multitest": cmd.multitest,
		"nsig":      cmd.nsig,
		"ncpu":      cmd.ncpu,
	} {
		if *flag != "" {
			v.Set(key, *flag)
		}
	}

	var err error
	opts := dokdo.DefaultOptions()
	if opts.Method, err = corr.ParseMethod(v.GetString("method")); err != nil {
		return err
	}
	if opts.Normalize, err = normalize.Parse(v.GetString("normalize")); err != nil {
		return err
	}
	if opts.Multitest, err = multitest.Parse(v.GetString("multitest")); err != nil {
		return err
	}
	if opts.Alpha, err = cast.ToFloat64E(v.Get("alpha")); err != nil {
		return fmt.Errorf("alpha: invalid value %q: %w", v.GetString("alpha"), err)
	}
	if opts.Alpha <= 0 || opts.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %g", opts.Alpha)
	}
	if opts.NSig, err = cast.ToIntE(v.Get("nsig")); err != nil {
		return fmt.Errorf("nsig: invalid value %q: %w", v.GetString("nsig"), err)
	}
	if opts.NSig < 0 {
		return fmt.Errorf("nsig must not be negative, got %d", opts.NSig)
	}
	if opts.Workers, err = cast.ToIntE(v.Get("ncpu")); err != nil {
		return fmt.Errorf("ncpu: invalid value %q: %w", v.GetString("ncpu"), err)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	opts.InnerJoin = *cmd.innerJoin
	cmd.opts = opts

	if cmd.logger, err = registerLogger(*cmd.verbose); err != nil {
		return err
	}
	return nil
}

// loadTables reads the feature table and the target matrix.
func (cmd *cmdConfig) loadTables(featureFile, targetFile string) (*frame.Frame, *frame.Frame, error) {
	feats, err := artifact.FeatureTable(artifact.Path(featureFile))
	if err != nil {
		return nil, nil, err
	}
	target, err := frame.ReadFile(targetFile)
	if err != nil {
		return nil, nil, err
	}
	cmd.logger.Info("tables loaded",
		zap.String("features", featureFile),
		zap.Int("taxa", len(feats.Columns)),
		zap.String("target", targetFile),
		zap.Int("targets", len(target.Columns)))
	return feats, target, nil
}

// startProgress hooks a progress bar over n features into the options.
// The returned function stops it.
func (cmd *cmdConfig) startProgress(n int) func() {
	if !*cmd.progress {
		return func() {}
	}
	bar := pb.New(n)
	bar.Output = os.Stderr
	bar.Start()
	cmd.opts.Progress = func() { bar.Increment() }
	return func() {
		bar.Finish()
		cmd.opts.Progress = nil
	}
}

func (cmd *cmdConfig) sync() {
	if cmd.logger != nil {
		_ = cmd.logger.Sync()
	}
}
