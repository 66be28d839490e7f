package main

import (
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/JetbluejetYJ/dokdo"
	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/render"
)

type cmdRegplot struct {
	*cmdConfig

	featureFile *string
	targetFile  *string
	taxon       *string
	name        *string
	outFile     *string
	width       *float64
	height      *float64
}

func (cmd *cmdRegplot) Register(app *kingpin.Application) {
	c := app.Command("regplot", "draw a scatter plot of one taxon against one target")
	cmd.featureFile = c.Arg("features", "feature table: .qza holding BIOM 1.0 JSON or classic TSV (BIOM 2.x HDF5 is not read), or .csv/.tsv with samples as rows").Required().String()
	cmd.targetFile = c.Arg("target", "target matrix (.csv or .tsv; samples as rows)").Required().String()
	cmd.taxon = c.Arg("taxon", "taxon in the feature table").Required().String()
	cmd.name = c.Arg("name", "target column").Required().String()
	cmd.outFile = c.Arg("output", "image file; the extension picks the format").Required().String()
	cmd.width = c.Flag("width", "width in inches").Default("5").Float64()
	cmd.height = c.Flag("height", "height in inches").Default("5").Float64()
	c.Action(func(*kingpin.ParseContext) error {
		defer cmd.sync()
		return cmd.Run()
	})
}

func (cmd *cmdRegplot) Run() error {
	if err := cmd.ParseConfig(); err != nil {
		return err
	}
	feats, target, err := cmd.loadTables(*cmd.featureFile, *cmd.targetFile)
	if err != nil {
		return err
	}

	pair, err := dokdo.CrossAssociationRegplot(artifact.Table{Frame: feats}, target, *cmd.taxon, *cmd.name, cmd.opts.InnerJoin)
	if err != nil {
		return err
	}
	p, err := render.Regplot(pair)
	if err != nil {
		return err
	}
	if err := render.Save(p, *cmd.outFile, vg.Length(*cmd.width)*vg.Inch, vg.Length(*cmd.height)*vg.Inch); err != nil {
		return err
	}
	cmd.logger.Info("regplot saved",
		zap.String("file", *cmd.outFile),
		zap.Int("samples", len(pair.Samples)))
	return nil
}
