package cli

import (
	"github.com/BurntSushi/toml"

	"github.com/seqwork/grafalign/pkg/align"
	pkgerrors "github.com/seqwork/grafalign/pkg/errors"
)

// fileConfig is the TOML configuration accepted by --config. It currently
// carries the edit-cost model; search parameters stay on flags.
//
//	[costs]
//	match = 0.0
//	subst = 1.0
//	ins   = 5.0
//	del   = 5.0
type fileConfig struct {
	Costs align.Costs `toml:"costs"`
}

// loadCosts returns the cost model from path, or the defaults when path is
// empty. Zero gap costs are rejected: the search and the prefix lookahead
// both rely on strictly positive edit costs to terminate.
func loadCosts(path string) (align.Costs, error) {
	costs := align.DefaultCosts()
	if path == "" {
		return costs, nil
	}
	cfg := fileConfig{Costs: costs}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return costs, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "load config %s", path)
	}
	if cfg.Costs.Subst <= 0 || cfg.Costs.Ins <= 0 || cfg.Costs.Del <= 0 {
		return costs, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "subst, ins and del costs must be positive")
	}
	if cfg.Costs.Match < 0 {
		return costs, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "match cost must be non-negative")
	}
	return cfg.Costs, nil
}
