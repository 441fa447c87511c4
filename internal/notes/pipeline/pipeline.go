package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
	"github.com/fisionote/fisionote-backend/internal/notes/compliance"
	"github.com/fisionote/fisionote-backend/internal/notes/prompts"
	"github.com/fisionote/fisionote-backend/internal/notes/synthesis"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/platform/modelgen"
)

// AuditEntry is the structured record the audit collaborator receives for
// every validation pass.
type AuditEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	Valid             bool      `json:"valid"`
	CompletenessScore int       `json:"completeness_score"`
	WasCorrected      bool      `json:"was_corrected"`
	Errors            []string  `json:"errors"`
	Warnings          []string  `json:"warnings"`
	MissingFields     []string  `json:"missing_fields"`
	ParseSource       string    `json:"parse_source,omitempty"`
	KeymapVersion     int       `json:"keymap_version,omitempty"`
}

// Sink receives audit entries and normalizer drift diagnostics. The
// pipeline itself holds no other shared state.
type Sink interface {
	RecordValidation(ctx context.Context, noteID string, entry AuditEntry)
	RecordDrift(ctx context.Context, noteID string, diag canonical.Diagnostics)
}

// GenerateInput is one visit's worth of context for a generation cycle.
type GenerateInput struct {
	NoteID         string
	PatientID      string
	PractitionerID string
	VisitType      string
	SessionType    string
	ClinicalInput  string
	PriorNoteMD    string
	ChecklistJSON  string
	PatientContext string
}

// GenerateOutput carries every intermediate product of one cycle so the
// caller can render, persist and explain it. Record and Validation are
// always populated, even when the model produced garbage.
type GenerateOutput struct {
	Prompt      prompts.Prompt
	Parse       synthesis.ParseResult
	Diagnostics canonical.Diagnostics
	Note        compliance.Note
	Validation  compliance.ValidationResult
	Correction  *compliance.CorrectionReport
	ModelErr    modelgen.Kind
}

// Pipeline wires one generation/validation cycle. All stages after the
// model call are pure and synchronous; the pipeline may be shared across
// requests because it carries no per-request state.
type Pipeline struct {
	log    *logger.Logger
	model  modelgen.Client
	sink   Sink
	policy compliance.DefaultPolicy
	now    func() time.Time
}

func New(log *logger.Logger, model modelgen.Client, sink Sink, policy compliance.DefaultPolicy) *Pipeline {
	return &Pipeline{
		log:    log.With("component", "note_pipeline"),
		model:  model,
		sink:   sink,
		policy: policy,
		now:    time.Now,
	}
}

// WithClock fixes the pipeline clock; used by auto-correction tests.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes one full cycle: prompt -> model -> parse -> normalize ->
// validate -> correct-if-invalid -> revalidate. The model call is the
// only suspension point; its failure is classified and returned, never
// retried here. Every downstream failure degrades to a valid-but-empty
// record so the caller always has something renderable.
func (p *Pipeline) Run(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	out := GenerateOutput{}

	prompt, err := prompts.Build(prompts.ForVisitType(in.VisitType), prompts.Input{
		VisitType:              in.VisitType,
		SessionType:            in.SessionType,
		ClinicalInput:          in.ClinicalInput,
		PriorNoteMD:            in.PriorNoteMD,
		TreatmentChecklistJSON: in.ChecklistJSON,
		PatientContext:         in.PatientContext,
	})
	if err != nil {
		return out, fmt.Errorf("build prompt: %w", err)
	}
	out.Prompt = prompt

	raw, err := p.model.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		out.ModelErr = modelgen.Classify(err)
		p.log.Warn("model call failed",
			"prompt", prompt.Name,
			"kind", string(out.ModelErr),
			"error", err,
		)
		return out, err
	}

	return p.assemble(ctx, in, out, raw), nil
}

// Ingest runs the post-model stages over an already-obtained raw
// response. Used on replays and in tests.
func (p *Pipeline) Ingest(ctx context.Context, in GenerateInput, raw any) GenerateOutput {
	return p.assemble(ctx, in, GenerateOutput{}, raw)
}

func (p *Pipeline) assemble(ctx context.Context, in GenerateInput, out GenerateOutput, raw any) GenerateOutput {
	out.Parse = synthesis.Parse(raw)
	if !out.Parse.Success {
		p.log.Warn("response unparseable, degrading to empty record",
			"note_id", in.NoteID,
			"parse_error", out.Parse.Err,
		)
	}

	var rec canonical.Record
	rec, out.Diagnostics = canonical.Normalize(anyOrNil(out.Parse))
	if len(out.Diagnostics.UnmatchedKeys) > 0 && p.sink != nil {
		p.sink.RecordDrift(ctx, in.NoteID, out.Diagnostics)
	}

	out.Note = compliance.Note{
		PatientID:      in.PatientID,
		PractitionerID: in.PractitionerID,
		Timestamp:      p.now().UTC(),
		SessionType:    in.SessionType,
		Record:         rec,
		PlanText:       joinPlan(rec),
	}

	out.Validation = compliance.Validate(out.Note)
	if !out.Validation.Valid {
		corrected, report := compliance.AutoCorrect(out.Note, p.policy, p.now)
		out.Note = corrected
		out.Validation = report.After
		out.Correction = &report
	}

	p.audit(ctx, in.NoteID, out)
	return out
}

// Revalidate re-runs validation over a clinician-edited note. Safe on
// every save attempt.
func (p *Pipeline) Revalidate(ctx context.Context, noteID string, n compliance.Note) compliance.ValidationResult {
	res := compliance.Validate(n)
	if p.sink != nil {
		p.sink.RecordValidation(ctx, noteID, AuditEntry{
			Timestamp:         p.now().UTC(),
			Valid:             res.Valid,
			CompletenessScore: res.CompletenessScore,
			Errors:            res.Errors,
			Warnings:          res.Warnings,
			MissingFields:     missingFields(res),
		})
	}
	return res
}

func (p *Pipeline) audit(ctx context.Context, noteID string, out GenerateOutput) {
	if p.sink == nil {
		return
	}
	p.sink.RecordValidation(ctx, noteID, AuditEntry{
		Timestamp:         p.now().UTC(),
		Valid:             out.Validation.Valid,
		CompletenessScore: out.Validation.CompletenessScore,
		WasCorrected:      out.Correction != nil && out.Correction.WasCorrected(),
		Errors:            out.Validation.Errors,
		Warnings:          out.Validation.Warnings,
		MissingFields:     missingFields(out.Validation),
		ParseSource:       out.Parse.Source,
		KeymapVersion:     out.Diagnostics.KeymapVersion,
	})
}

func missingFields(res compliance.ValidationResult) []string {
	out := make([]string, 0, len(res.MissingRequired)+len(res.MissingConditional))
	out = append(out, res.MissingRequired...)
	out = append(out, res.MissingConditional...)
	return out
}

func anyOrNil(res synthesis.ParseResult) any {
	if !res.Success {
		return nil
	}
	return res.Data
}

func joinPlan(rec canonical.Record) string {
	if len(rec.SuggestedTreatmentPlan) == 0 {
		return ""
	}
	plan := ""
	for i, step := range rec.SuggestedTreatmentPlan {
		if i > 0 {
			plan += "\n"
		}
		plan += step
	}
	return plan
}
