package dokdo

import (
	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/frame"
)

// Pair is one taxon and one target column over the same samples.
type Pair struct {
	Samples []string
	Taxon   string
	Target  string
	X, Y    []float64
}

// CrossAssociationRegplot extracts the raw abundance of taxon and the values
// of the target column name, aligned by sample, for a scatter plot. No
// normalization or testing is applied.
func CrossAssociationRegplot(src artifact.Source, target *frame.Frame, taxon, name string, innerJoin bool) (*Pair, error) {
	feats, err := artifact.FeatureTable(src)
	if err != nil {
		return nil, err
	}
	feats, target, err = align(feats, target, innerJoin)
	if err != nil {
		return nil, err
	}
	x, err := feats.Col(taxon)
	if err != nil {
		return nil, err
	}
	y, err := target.Col(name)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Samples: feats.Index,
		Taxon:   taxon,
		Target:  name,
		X:       x,
		Y:       y,
	}, nil
}
