// Package verifier assembles the analysis for a verification task and runs
// it to a verdict.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sosy-lab/cpachecker-sub130/analysis/algorithm"
	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cegar"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/composite"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/bounds"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/location"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/value"
	"github.com/sosy-lab/cpachecker-sub130/analysis/oracle"
	"github.com/sosy-lab/cpachecker-sub130/analysis/reached"
	"github.com/sosy-lab/cpachecker-sub130/analysis/varclass"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

var errTimeout = errors.New("time limit exceeded")

type Config struct {
	Waitlist  reached.Policy
	MergeJoin bool
	// LoopBound limits loop unrolling. Exploration that hits the bound
	// cannot prove safety. 0 disables the bound.
	LoopBound      int
	MaxRefinements int
	// Timeout interrupts verification. 0 disables it.
	Timeout time.Duration
	// Oracle replaces the SAT-based feasibility check.
	Oracle cegar.Oracle
}

func DefaultConfig() Config {
	return Config{Waitlist: reached.DFS, MaxRefinements: 100}
}

// ConfigFromOpts translates the command line options.
func ConfigFromOpts() (Config, error) {
	opts := utils.Opts()
	policy, err := reached.ParsePolicy(opts.Waitlist().String())
	if err != nil {
		return Config{}, err
	}
	return Config{
		Waitlist:       policy,
		MergeJoin:      opts.Merge().Join(),
		LoopBound:      opts.LoopBound(),
		MaxRefinements: opts.MaxRefinements(),
		Timeout:        opts.Timeout(),
	}, nil
}

type Stats struct {
	Algorithm   algorithm.Stats
	Refinements int
	// Removed counts the states pruned by refinement.
	Removed     int
	ReachedSize int
	ARGSize     int
	Duration    time.Duration
}

type Result struct {
	Verdict cegar.Verdict
	// Reason explains an UNKNOWN verdict.
	Reason         string
	Counterexample *arg.Path
	Model          map[string]bool
	Rounds         []cegar.Round
	Stats          Stats
	// Reached is the final reached set.
	Reached *reached.Set
}

// Analysis builds the composite analysis used for verification: the program
// counter, boolean values, and the loop bound if one is configured.
func Analysis(cfg Config) (*composite.CPA, error) {
	var opts []value.Option
	if cfg.MergeJoin {
		opts = append(opts, value.WithMergeJoin())
	}
	components := []cpa.CPA{location.New(), value.New(opts...)}
	if cfg.LoopBound > 0 {
		components = append(components, bounds.New(cfg.LoopBound))
	}
	return composite.New(components...)
}

// Verify decides whether an error node of c is reachable. Interruptions
// and analysis failures produce an UNKNOWN verdict; failures are also
// returned as errors.
func Verify(ctx context.Context, c *cfa.CFA, cfg Config) (res Result, err error) {
	start := time.Now()
	defer utils.TimeTrack(start, "Verification")

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, cfg.Timeout, errTimeout)
		defer cancel()
	}

	prod, err := Analysis(cfg)
	if err != nil {
		return Result{Reason: err.Error()}, err
	}
	alg, err := algorithm.New(prod)
	if err != nil {
		return Result{Reason: err.Error()}, err
	}
	rs := reached.New(cfg.Waitlist)
	if _, err := alg.Initialize(rs, c.Entry()); err != nil {
		return Result{Reason: err.Error()}, err
	}

	o := cfg.Oracle
	if o == nil {
		o = oracle.New(varclass.Classify(c))
	}
	loop := cegar.New(alg, o, cfg.MaxRefinements)

	cres, err := loop.Run(ctx, rs)
	res = Result{
		Verdict:        cres.Verdict,
		Reason:         cres.Reason,
		Counterexample: cres.Counterexample,
		Model:          cres.Model,
		Rounds:         cres.Rounds,
		Reached:        rs,
		Stats: Stats{
			Algorithm:   alg.Stats,
			Refinements: cres.Refinements,
			ReachedSize: rs.Size(),
			ARGSize:     rs.ARG().Size(),
			Duration:    time.Since(start),
		},
	}
	for _, r := range cres.Rounds {
		res.Stats.Removed += r.Removed
	}

	switch {
	case errors.Is(err, cpa.ErrInterrupted):
		res.Verdict = cegar.Unknown
		if ctx.Err() != nil {
			res.Reason = fmt.Sprintf("interrupted: %v", context.Cause(ctx))
		} else {
			// Solver failures carry their own cause.
			res.Reason = fmt.Sprintf("interrupted: %v", err)
		}
		log.Warn(res.Reason)
		return res, nil
	case err != nil:
		res.Verdict = cegar.Unknown
		res.Reason = err.Error()
		return res, err
	}

	if res.Verdict == cegar.Safe && alg.Stats.Breaks > 0 {
		res.Verdict = cegar.Unknown
		res.Reason = fmt.Sprintf("incomplete exploration: loop bound %d reached", cfg.LoopBound)
	}
	log.Infof("Verdict: %v", res.Verdict)
	return res, nil
}
