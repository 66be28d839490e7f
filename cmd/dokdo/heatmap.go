package main

import (
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/JetbluejetYJ/dokdo"
	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/render"
)

type cmdHeatmap struct {
	*cmdConfig

	featureFile *string
	targetFile  *string
	outFile     *string
	marksig     *bool
	cmap        *string
	cluster     *bool
	title       *string
	width       *float64 // inches.
	height      *float64 // inches.
}

func (cmd *cmdHeatmap) Register(app *kingpin.Application) {
	c := app.Command("heatmap", "draw the cross-association heatmap")
	cmd.featureFile = c.Arg("features", "feature table: .qza holding BIOM 1.0 JSON or classic TSV (BIOM 2.x HDF5 is not read), or .csv/.tsv with samples as rows").Required().String()
	cmd.targetFile = c.Arg("target", "target matrix (.csv or .tsv; samples as rows)").Required().String()
	cmd.outFile = c.Arg("output", "image file; the extension picks the format").Required().String()
	cmd.marksig = c.Flag("marksig", "mark significant associations with an asterisk").Default("false").Bool()
	cmd.cmap = c.Flag("cmap", "colormap: vlag, coolwarm, RdBu, PiYG, PuOr, kindlmann, viridis, blackbody, hot").Default("vlag").String()
	cmd.cluster = c.Flag("cluster", "cluster rows and columns").Default("true").Bool()
	cmd.title = c.Flag("title", "plot title").Default("").String()
	cmd.width = c.Flag("width", "width in inches").Default("10").Float64()
	cmd.height = c.Flag("height", "height in inches").Default("10").Float64()
	c.Action(func(*kingpin.ParseContext) error {
		defer cmd.sync()
		return cmd.Run()
	})
}

func (cmd *cmdHeatmap) Run() error {
	if err := cmd.ParseConfig(); err != nil {
		return err
	}
	feats, target, err := cmd.loadTables(*cmd.featureFile, *cmd.targetFile)
	if err != nil {
		return err
	}

	stop := cmd.startProgress(len(feats.Columns))
	h, err := dokdo.CrossAssociationHeatmap(artifact.Table{Frame: feats}, target, cmd.opts, *cmd.marksig)
	stop()
	if err != nil {
		return err
	}

	p, err := render.Heatmap(h, render.HeatmapOptions{
		Cmap:    *cmd.cmap,
		Cluster: *cmd.cluster,
		Title:   *cmd.title,
	})
	if err != nil {
		return err
	}
	if err := render.Save(p, *cmd.outFile, vg.Length(*cmd.width)*vg.Inch, vg.Length(*cmd.height)*vg.Inch); err != nil {
		return err
	}
	cmd.logger.Info("heatmap saved",
		zap.String("file", *cmd.outFile),
		zap.Int("targets", len(h.Targets)),
		zap.Int("taxa", len(h.Taxa)))
	return nil
}
