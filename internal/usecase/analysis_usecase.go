package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/repository"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/metrics"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/registry"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/render"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/report"
)

// ImageDecoder decodes uploaded bytes into an image and its format name
type ImageDecoder func(data []byte) (image.Image, string, error)

// ArtifactWriter persists the files of one analysis and returns their directory
type ArtifactWriter interface {
	Write(at time.Time, id uuid.UUID, files map[string][]byte) (string, error)
}

// AnalyzeInput represents input for analyzing one image
type AnalyzeInput struct {
	Filename string
	Data     []byte
}

// AnalysisOutput represents a stored analysis
type AnalysisOutput struct {
	ID              string          `json:"id"`
	ImageName       string          `json:"image_name"`
	ImageSHA256     string          `json:"image_sha256"`
	IsPaddyLeaf     bool            `json:"is_paddy_leaf"`
	FinalClass      string          `json:"final_class"`
	FinalConfidence float64         `json:"final_confidence"`
	BestModel       string          `json:"best_model,omitempty"`
	StatusCode      int             `json:"status_code"`
	ModelCount      int             `json:"model_count"`
	FailedModels    int             `json:"failed_models"`
	SuccessRate     float64         `json:"success_rate"`
	OutputDir       string          `json:"output_dir,omitempty"`
	LatencyMs       int64           `json:"latency_ms"`
	CreatedAt       string          `json:"created_at"`
	Summary         json.RawMessage `json:"summary,omitempty"`
	Report          string          `json:"report,omitempty"`
}

// AnalysisListOutput represents paginated analysis list
type AnalysisListOutput struct {
	Analyses []*AnalysisOutput `json:"analyses"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	HasMore  bool              `json:"has_more"`
}

// ModelInfo describes one registered model
type ModelInfo struct {
	Name       string      `json:"name"`
	Backend    string      `json:"backend"`
	InputSize  entity.Size `json:"input_size"`
	Preprocess string      `json:"preprocess"`
	Warm       bool        `json:"warm"`
}

// ExcludedModel describes a configured model that failed to load
type ExcludedModel struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ModelsOutput describes the loaded ensemble
type ModelsOutput struct {
	Models   []ModelInfo     `json:"models"`
	Excluded []ExcludedModel `json:"excluded"`
	Quorum   int             `json:"quorum"`
	Labels   []string        `json:"labels"`
	Healthy  string          `json:"healthy_label"`
}

// AnalysisUsecase defines the interface for analysis operations
type AnalysisUsecase interface {
	Analyze(ctx context.Context, input *AnalyzeInput) (*entity.AnalysisResult, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisOutput, error)
	ListAnalyses(ctx context.Context, statusCode *int, limit, offset int) (*AnalysisListOutput, error)
	Models() *ModelsOutput
	Ready() bool
}

// Dependencies holds the collaborators of the analysis usecase.
// Repo, Cache, Storage and Metrics are optional.
type Dependencies struct {
	Registry *registry.Registry
	Stage    *InferenceStage
	Decode   ImageDecoder
	Repo     repository.AnalysisRepository
	Cache    repository.ResultCache
	Storage  ArtifactWriter
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Clock    func() time.Time
}

type analysisUsecase struct {
	deps Dependencies
	log  *zap.Logger
}

// NewAnalysisUsecase creates a new analysis usecase
func NewAnalysisUsecase(deps Dependencies) AnalysisUsecase {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &analysisUsecase{deps: deps, log: deps.Logger}
}

// Ready reports whether the ensemble can serve requests
func (u *analysisUsecase) Ready() bool {
	return u.deps.Registry != nil && u.deps.Registry.Len() > 0
}

// Analyze runs the full ensemble pipeline on one uploaded image
func (u *analysisUsecase) Analyze(ctx context.Context, input *AnalyzeInput) (*entity.AnalysisResult, error) {
	if input == nil || len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidRequest)
	}
	if !u.Ready() {
		return nil, ErrModelsUnavailable
	}

	start := u.deps.Clock()
	sum := sha256.Sum256(input.Data)
	digest := hex.EncodeToString(sum[:])

	if cached := u.lookup(ctx, digest); cached != nil {
		return cached, nil
	}

	img, format, err := u.deps.Decode(input.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	reg := u.deps.Registry
	labels := reg.Labels()
	outcomes := u.deps.Stage.Infer(ctx, img, reg.Handles(), labels)

	voters := Voters(outcomes)
	if len(voters) == 0 {
		return nil, fmt.Errorf("%w: all %d models failed", ErrNoUsablePredictions, len(outcomes))
	}

	verdict := service.Decide(voters, labels, reg.Quorum())
	u.logAgreement(voters, labels)

	id := uuid.New()
	images, err := render.Artifacts(img, panels(outcomes, labels), labels.Names, series(voters), verdict.Agreement)
	if err != nil {
		return nil, fmt.Errorf("render artifacts: %w", err)
	}

	files := make([]string, 0, len(images)+2)
	for name := range images {
		files = append(files, name)
	}
	files = append(files, report.SummaryFile, report.ReportFile)
	sort.Strings(files)

	summary := report.Assemble(report.Input{
		AnalysisID: id,
		ImagePath:  input.Filename,
		Date:       start,
		Verdict:    verdict,
		Outcomes:   outcomes,
		Labels:     labels,
		Files:      files,
	})
	summaryJSON, err := summary.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	text := report.Text(summary)

	result := &entity.AnalysisResult{
		AnalysisID:  id,
		Disease:     verdict.FinalClass,
		StatusCode:  summary.StatusCode,
		Report:      text,
		Summary:     string(summaryJSON),
		Images:      images,
		Predictions: Predictions(outcomes),
	}
	result.OutputDir = u.store(start, id, images, summaryJSON, text)

	failed := len(outcomes) - len(voters)
	u.record(ctx, input.Filename, digest, id, verdict, result, len(outcomes), failed, start)

	if u.deps.Cache != nil {
		if err := u.deps.Cache.Set(ctx, digest, result); err != nil {
			u.log.Warn("Failed to cache analysis result", zap.Error(err))
		}
	}

	u.deps.Metrics.ObserveAnalysis(verdictLabel(result.StatusCode))
	u.log.Info("Analysis completed",
		zap.String("analysis_id", id.String()),
		zap.String("image", input.Filename),
		zap.String("format", format),
		zap.String("disease", result.Disease),
		zap.Int("votes", verdict.Votes),
		zap.Int("quorum", verdict.Quorum),
		zap.Int("failed_models", failed),
		zap.Duration("latency", u.deps.Clock().Sub(start)),
	)

	return result, nil
}

func (u *analysisUsecase) lookup(ctx context.Context, digest string) *entity.AnalysisResult {
	if u.deps.Cache == nil {
		return nil
	}
	cached, err := u.deps.Cache.Get(ctx, digest)
	if err != nil {
		u.log.Warn("Result cache lookup failed", zap.Error(err))
		return nil
	}
	if cached != nil {
		u.deps.Metrics.ObserveCacheHit()
		u.log.Info("Serving cached analysis", zap.String("analysis_id", cached.AnalysisID.String()))
	}
	return cached
}

func (u *analysisUsecase) store(at time.Time, id uuid.UUID, images map[string][]byte, summary []byte, text string) string {
	if u.deps.Storage == nil {
		return ""
	}
	files := make(map[string][]byte, len(images)+2)
	for name, data := range images {
		files[name] = data
	}
	files[report.SummaryFile] = summary
	files[report.ReportFile] = []byte(text)

	dir, err := u.deps.Storage.Write(at, id, files)
	if err != nil {
		u.log.Error("Failed to write analysis artifacts", zap.String("dir", dir), zap.Error(err))
		return ""
	}
	return dir
}

func (u *analysisUsecase) record(ctx context.Context, filename, digest string, id uuid.UUID, verdict entity.AgreementVerdict,
	result *entity.AnalysisResult, models, failed int, start time.Time) {
	if u.deps.Repo == nil {
		return
	}
	analysis := entity.NewAnalysis(filename, digest)
	analysis.ID = id
	analysis.SetVerdict(verdict, result.StatusCode)
	analysis.ModelCount = models
	analysis.FailedModels = failed
	analysis.Summary = result.Summary
	analysis.Report = result.Report
	analysis.OutputDir = result.OutputDir
	analysis.LatencyMs = u.deps.Clock().Sub(start).Milliseconds()

	if err := u.deps.Repo.Create(ctx, analysis); err != nil {
		u.log.Error("Failed to save analysis", zap.String("analysis_id", id.String()), zap.Error(err))
	}
}

func (u *analysisUsecase) logAgreement(voters []entity.PredictionResult, labels entity.Labels) {
	for i := 0; i < len(voters); i++ {
		for j := i + 1; j < len(voters); j++ {
			a, b := voters[i], voters[j]
			status := "DISAGREE"
			if a.ClassIndex == b.ClassIndex {
				status = "AGREE"
			}
			u.log.Debug("Model agreement",
				zap.String("pair", a.Model+" vs "+b.Model),
				zap.String("status", status),
				zap.String("class1", labels.Name(a.ClassIndex)),
				zap.String("class2", labels.Name(b.ClassIndex)),
			)
		}
	}
}

// GetAnalysis retrieves a stored analysis by ID
func (u *analysisUsecase) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisOutput, error) {
	if u.deps.Repo == nil {
		return nil, ErrHistoryUnavailable
	}
	analysis, err := u.deps.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil {
		return nil, ErrAnalysisNotFound
	}

	out := toAnalysisOutput(analysis)
	if analysis.Summary != "" && json.Valid([]byte(analysis.Summary)) {
		out.Summary = json.RawMessage(analysis.Summary)
	}
	out.Report = analysis.Report
	return out, nil
}

// ListAnalyses retrieves stored analyses with pagination, optionally filtered by status code
func (u *analysisUsecase) ListAnalyses(ctx context.Context, statusCode *int, limit, offset int) (*AnalysisListOutput, error) {
	if u.deps.Repo == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		analyses []*entity.Analysis
		total    int64
		err      error
	)
	if statusCode != nil {
		analyses, total, err = u.deps.Repo.ListByStatus(ctx, *statusCode, limit, offset)
	} else {
		analyses, total, err = u.deps.Repo.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	outputs := make([]*AnalysisOutput, len(analyses))
	for i, a := range analyses {
		outputs[i] = toAnalysisOutput(a)
	}

	return &AnalysisListOutput{
		Analyses: outputs,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  int64(offset+len(analyses)) < total,
	}, nil
}

// Models describes the registered ensemble
func (u *analysisUsecase) Models() *ModelsOutput {
	out := &ModelsOutput{Models: []ModelInfo{}, Excluded: []ExcludedModel{}}
	reg := u.deps.Registry
	if reg == nil {
		return out
	}

	for _, h := range reg.Handles() {
		spec := h.Spec()
		out.Models = append(out.Models, ModelInfo{
			Name:       spec.Name,
			Backend:    spec.Backend,
			InputSize:  spec.InputSize,
			Preprocess: spec.Preprocess,
			Warm:       h.Warm(),
		})
	}
	for _, e := range reg.Excluded() {
		out.Excluded = append(out.Excluded, ExcludedModel{Name: e.Name, Error: e.Err.Error()})
	}
	out.Quorum = reg.Quorum()
	out.Labels = reg.Labels().Names
	out.Healthy = reg.Labels().Healthy
	return out
}

func toAnalysisOutput(a *entity.Analysis) *AnalysisOutput {
	return &AnalysisOutput{
		ID:              a.ID.String(),
		ImageName:       a.ImageName,
		ImageSHA256:     a.ImageSHA256,
		IsPaddyLeaf:     a.IsPaddyLeaf,
		FinalClass:      a.FinalClass,
		FinalConfidence: a.FinalConfidence,
		BestModel:       a.BestModel,
		StatusCode:      a.StatusCode,
		ModelCount:      a.ModelCount,
		FailedModels:    a.FailedModels,
		SuccessRate:     a.SuccessRate(),
		OutputDir:       a.OutputDir,
		LatencyMs:       a.LatencyMs,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
}

func panels(outcomes []entity.ModelOutcome, labels entity.Labels) []render.Panel {
	out := make([]render.Panel, len(outcomes))
	for i, o := range outcomes {
		p := render.Panel{Model: o.Model, Saliency: o.Saliency}
		if o.Voted() {
			p.Class = labels.Name(o.Prediction.ClassIndex)
			p.Confidence = o.Prediction.Confidence
		} else {
			p.Failure = o.Failure
		}
		out[i] = p
	}
	return out
}

func series(voters []entity.PredictionResult) []render.Series {
	out := make([]render.Series, len(voters))
	for i, v := range voters {
		out[i] = render.Series{Model: v.Model, Values: v.Probabilities}
	}
	return out
}

func verdictLabel(statusCode int) string {
	switch statusCode {
	case entity.StatusHealthy:
		return "healthy"
	case entity.StatusDisease:
		return "disease"
	}
	return "not_paddy"
}
