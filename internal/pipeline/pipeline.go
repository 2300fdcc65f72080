// Package pipeline runs the five-stage analysis that turns an evidence
// bundle into a ranked, confidence-scored list of automation findings.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/config"
	"github.com/sells-group/autoscout/internal/cost"
	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/internal/resilience"
	"github.com/sells-group/autoscout/pkg/anthropic"
)

// Stage names, in execution order.
const (
	StageTechnical      = "technical_signals"
	StageBusiness       = "business_context"
	StageInfrastructure = "infrastructure_depth"
	StageVerify         = "cross_verification"
	StageSynthesize     = "synthesis"
)

// Pipeline drives the five analysis stages. Each stage has a
// capability-backed implementation, attempted when an Anthropic client is
// configured, and a deterministic fallback that is always available. A
// capability failure degrades that stage only; the pipeline never aborts.
type Pipeline struct {
	ai      anthropic.Client
	cfg     config.AnthropicConfig
	breaker *resilience.CircuitBreaker
	costs   *cost.Calculator
}

// New creates a pipeline. ai may be nil, in which case every stage uses
// its deterministic implementation.
func New(ai anthropic.Client, cfg config.AnthropicConfig) *Pipeline {
	return &Pipeline{
		ai:    ai,
		cfg:   cfg,
		costs: cost.NewCalculator(cost.DefaultRates()),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     time.Minute,
		}),
	}
}

// Run executes all five stages for one company's evidence bundle. Stages
// 1-3 feed stage 4, whose verified output feeds stage 5.
func (p *Pipeline) Run(ctx context.Context, bundle *model.EvidenceBundle) (*model.PipelineRun, error) {
	if bundle == nil {
		return nil, eris.New("pipeline: nil evidence bundle")
	}

	log := zap.L().With(zap.String("company", bundle.Company.Name))
	log.Info("pipeline: starting analysis")

	// The capability check happens once per run; individual stage
	// failures still fall back independently.
	useCapability := p.ai != nil && p.cfg.Key != ""

	run := &model.PipelineRun{Company: bundle.Company}
	var spentUSD float64

	// Stages 1-3: signal extraction.
	run.Stages = append(run.Stages,
		p.runStage(ctx, StageTechnical, useCapability,
			func(ctx context.Context) ([]model.Finding, error) {
				return p.capabilityStage(ctx, StageTechnical, technicalInstruction, bundle, nil, &spentUSD)
			},
			func() []model.Finding { return analyzeTechnical(bundle) },
		),
		p.runStage(ctx, StageBusiness, useCapability,
			func(ctx context.Context) ([]model.Finding, error) {
				return p.capabilityStage(ctx, StageBusiness, businessInstruction, bundle, nil, &spentUSD)
			},
			func() []model.Finding { return analyzeBusiness(bundle) },
		),
		p.runStage(ctx, StageInfrastructure, useCapability,
			func(ctx context.Context) ([]model.Finding, error) {
				return p.capabilityStage(ctx, StageInfrastructure, infrastructureInstruction, bundle, nil, &spentUSD)
			},
			func() []model.Finding { return analyzeInfrastructure(bundle) },
		),
	)

	var combined []model.Finding
	for _, s := range run.Stages {
		combined = append(combined, s.Findings...)
	}

	// Stage 4: cross-verification. The capability path may re-weight
	// confidences; the verification rules apply on both paths.
	verifyStage := p.runStage(ctx, StageVerify, useCapability,
		func(ctx context.Context) ([]model.Finding, error) {
			adjusted, err := p.capabilityStage(ctx, StageVerify, verifyInstruction, bundle, combined, &spentUSD)
			if err != nil {
				return nil, err
			}
			return verifyFindings(adjusted), nil
		},
		func() []model.Finding { return verifyFindings(combined) },
	)
	run.Stages = append(run.Stages, verifyStage)
	verified := verifyStage.Findings

	// Stage 5: synthesis. Scoring is deterministic on both paths; the
	// capability path only enriches the summary narrative.
	score := scoreFindings(verified)
	synthStage := p.runStage(ctx, StageSynthesize, useCapability,
		func(ctx context.Context) ([]model.Finding, error) {
			return p.synthesizeWithCapability(ctx, bundle, verified, score, &spentUSD)
		},
		func() []model.Finding { return synthesize(verified, score, "") },
	)
	run.Stages = append(run.Stages, synthStage)

	run.Findings = synthStage.Findings
	run.Score = score
	run.CostUSD = spentUSD

	log.Info("pipeline: analysis complete",
		zap.Float64("score", run.Score),
		zap.Int("findings", len(run.Findings)),
		zap.Float64("cost_usd", run.CostUSD),
	)
	return run, nil
}

type capabilityFunc func(ctx context.Context) ([]model.Finding, error)

// runStage attempts the capability-backed implementation and falls back
// to the deterministic one on any error.
func (p *Pipeline) runStage(ctx context.Context, name string, useCapability bool, capFn capabilityFunc, fallback func() []model.Finding) model.StageResult {
	log := zap.L().With(zap.String("stage", name))
	start := time.Now()

	result := model.StageResult{Name: name}

	if useCapability {
		findings, err := capFn(ctx)
		if err == nil {
			result.Findings = findings
			result.DurationMS = time.Since(start).Milliseconds()
			log.Info("pipeline: stage complete",
				zap.Int64("duration_ms", result.DurationMS),
				zap.Int("findings", len(findings)),
			)
			return result
		}

		capErr := &model.CapabilityError{Stage: name, Err: err}
		result.Error = capErr.Error()
		log.Warn("pipeline: capability failed, using deterministic fallback", zap.Error(capErr))
	}

	result.Fallback = true
	result.Findings = fallback()
	result.DurationMS = time.Since(start).Milliseconds()
	log.Info("pipeline: stage complete",
		zap.Bool("fallback", true),
		zap.Int64("duration_ms", result.DurationMS),
		zap.Int("findings", len(result.Findings)),
	)
	return result
}
