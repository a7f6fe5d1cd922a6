package automl

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/YuminosukeSato/evalgo/automl/engine"
	"github.com/YuminosukeSato/evalgo/objectives"
	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/pkg/log"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Ranking is one row of the search leaderboard.
type Ranking struct {
	// Pipeline is the caller's candidate, never a fitted copy.
	Pipeline *pipeline.Pipeline
	// MeanCVScore is the primary objective mean over folds, NaN when the
	// evaluation job failed or every fold did.
	MeanCVScore float64
	// StdCVScore is the sample standard deviation of the fold scores, NaN
	// for failed jobs or single-fold splitters.
	StdCVScore float64
	// Result holds the full evaluation outcome, nil for failed jobs.
	Result *engine.EvaluationResult
	// Err records the job failure the error-callback policy absorbed.
	Err error
}

// Search runs one batch of candidate pipelines through an engine and ranks
// them by cross-validated primary-objective score.
type Search struct {
	cfg        Config
	allowed    []*pipeline.Pipeline
	primary    objectives.Objective
	eng        engine.Engine
	ownsEngine bool
	logger     log.Logger

	mu       sync.Mutex
	ran      bool
	rankings []Ranking
}

// SearchOption configures a Search under construction.
type SearchOption func(*Search)

// WithEngine runs the search on the given engine instead of a private
// SequentialEngine. The caller keeps ownership and closes it.
func WithEngine(e engine.Engine) SearchOption {
	return func(s *Search) { s.eng = e }
}

// WithLogger replaces the search logger.
func WithLogger(l log.Logger) SearchOption {
	return func(s *Search) { s.logger = l }
}

// NewSearch validates the config and the candidate batch. Every candidate
// must target the config's problem type; mismatches fail here, not inside a
// job.
func NewSearch(cfg Config, allowed []*pipeline.Pipeline, opts ...SearchOption) (*Search, error) {
	if len(allowed) == 0 {
		return nil, errors.NewValueError("NewSearch", "at least one allowed pipeline is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, p := range allowed {
		if p == nil {
			return nil, errors.NewValueError("NewSearch", "allowed pipelines must not be nil")
		}
		if p.ProblemType != cfg.ProblemType {
			return nil, errors.NewValueError("NewSearch", fmt.Sprintf(
				"pipeline %s targets problem type %s, config expects %s",
				p.Name, p.ProblemType, cfg.ProblemType))
		}
	}
	primary, err := objectives.Get(cfg.Objective)
	if err != nil {
		return nil, err
	}

	s := &Search{
		cfg:     cfg,
		allowed: slices.Clone(allowed),
		primary: primary,
		logger:  log.GetLoggerWithName("automl"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eng == nil {
		s.eng = engine.NewSequentialEngine()
		s.ownsEngine = true
	}
	return s, nil
}

// Run submits one evaluation job per candidate and collects the results as
// they complete. Job failures go through the config's error-callback policy:
// absorbed failures rank last with a NaN score, a raising policy aborts the
// run. Run is one-shot; a second call fails.
//
// Cancelling ctx abandons the remaining waits and returns the context error;
// jobs already running on a pool engine complete in the background.
func (s *Search) Run(ctx context.Context, X *tabular.Table, y *tabular.Series) error {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return errors.NewValueError("Search.Run", "search has already run")
	}
	s.ran = true
	s.mu.Unlock()

	if X == nil || y == nil {
		return errors.NewValueError("Search.Run", "X and y must not be nil")
	}
	if s.ownsEngine {
		defer func() { _ = s.eng.Close() }()
	}

	s.logger.Info("starting search",
		log.OperationKey, log.OperationSearch,
		log.BatchKey, 1,
		"pipelines", len(s.allowed),
		log.RandomSeedKey, s.cfg.RandomSeed,
	)

	type submission struct {
		pipeline *pipeline.Pipeline
		comp     engine.Computation[*engine.EvaluationResult]
	}
	submissions := make([]submission, 0, len(s.allowed))
	for _, p := range s.allowed {
		comp, err := s.eng.SubmitEvaluationJob(s.cfg, p, X, y)
		if err != nil {
			return err
		}
		submissions = append(submissions, submission{pipeline: p, comp: comp})
	}

	rankings := make([]Ranking, 0, len(submissions))
	for _, sub := range submissions {
		result, err := sub.comp.Result(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.cfg.ErrorCallback == RaiseErrorCallback {
				return err
			}
			if s.cfg.ErrorCallback != SilentErrorCallback {
				s.logger.Warn("pipeline evaluation failed",
					log.PipelineNameKey, sub.pipeline.Name,
					log.OperationKey, log.OperationEvaluate,
					"error", err.Error(),
				)
			}
			rankings = append(rankings, Ranking{
				Pipeline:    sub.pipeline,
				MeanCVScore: math.NaN(),
				StdCVScore:  math.NaN(),
				Err:         err,
			})
			continue
		}

		result.Logger.WriteToLogger(s.logger.With(
			log.PipelineNameKey, sub.pipeline.Name,
			log.OperationKey, log.OperationEvaluate,
		))
		s.logger.Info("pipeline evaluated",
			log.PipelineNameKey, sub.pipeline.Name,
			log.CVScoreMeanKey, result.Scores.CVScoreMean,
		)
		rankings = append(rankings, Ranking{
			Pipeline:    sub.pipeline,
			MeanCVScore: result.Scores.CVScoreMean,
			StdCVScore:  result.Scores.CVScoreStd,
			Result:      result,
		})
	}

	s.sortRankings(rankings)
	s.mu.Lock()
	s.rankings = rankings
	s.mu.Unlock()

	if best, err := s.BestPipeline(); err == nil {
		s.logger.Info("search finished",
			log.OperationKey, log.OperationSearch,
			log.PipelineNameKey, best.Name,
			log.CVScoreMeanKey, rankings[0].MeanCVScore,
		)
	}
	return nil
}

// sortRankings orders best first under the primary objective's ranking
// value, NaN scores last. The sort is stable, so equal candidates keep
// submission order.
func (s *Search) sortRankings(rankings []Ranking) {
	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i].MeanCVScore, rankings[j].MeanCVScore
		aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
		if aNaN || bNaN {
			return !aNaN && bNaN
		}
		return objectives.RankingValue(s.primary, a) > objectives.RankingValue(s.primary, b)
	})
}

// Rankings returns the leaderboard, best pipeline first.
func (s *Search) Rankings() []Ranking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ranking, len(s.rankings))
	copy(out, s.rankings)
	return out
}

// BestPipeline returns the untrained candidate with the best mean score.
func (s *Search) BestPipeline() (*pipeline.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ran {
		return nil, errors.NewValueError("Search.BestPipeline", "search has not been run")
	}
	for _, r := range s.rankings {
		if !math.IsNaN(r.MeanCVScore) {
			return r.Pipeline, nil
		}
	}
	return nil, errors.NewValueError("Search.BestPipeline", "no pipeline evaluated successfully")
}
