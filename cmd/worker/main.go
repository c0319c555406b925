package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/animato-app/animato-server/internal/adapter/repo"
	"github.com/animato-app/animato-server/internal/composition"
	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/infra/credentials"
	"github.com/animato-app/animato-server/internal/providers/image"
	"github.com/animato-app/animato-server/internal/providers/script"
	"github.com/animato-app/animato-server/internal/providers/speech"
	"github.com/animato-app/animato-server/internal/providers/video"
	"github.com/animato-app/animato-server/internal/storage"
)

const jobPollInterval = 2 * time.Second

type jobWorker struct {
	ctx    context.Context
	logger infra.Logger

	projects domain.ProjectRepository
	jobs     *repo.JobRepositoryPG
	assets   domain.AssetRepository
	usage    domain.UsageRepository

	store          *storage.FileStore
	storageBaseURL string

	scriptWriter script.Writer
	imageChain   *image.Chain
	speech       speech.Synthesizer
	videoChain   *video.Chain

	counters *usageRecorder
}

// usageRecorder buffers counter increments from provider callbacks so the
// worker can flush them once per job.
type usageRecorder struct {
	mu       sync.Mutex
	counters map[string]int
}

func newUsageRecorder() *usageRecorder {
	return &usageRecorder{counters: make(map[string]int)}
}

func (u *usageRecorder) Add(counter string) {
	u.mu.Lock()
	u.counters[counter]++
	u.mu.Unlock()
}

func (u *usageRecorder) Flush(ctx context.Context, repo domain.UsageRepository) error {
	u.mu.Lock()
	pending := u.counters
	u.counters = make(map[string]int)
	u.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	day := time.Now().UTC().Format("2006-01-02")
	return repo.IncrementCounters(ctx, day, pending)
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	counters := newUsageRecorder()
	credStore := credentials.NewStore(runner)

	worker := &jobWorker{
		ctx:            ctx,
		logger:         logger,
		projects:       repo.NewProjectRepository(runner),
		jobs:           repo.NewJobRepository(runner),
		assets:         repo.NewAssetRepository(runner),
		usage:          repo.NewUsageRepository(runner),
		store:          fileStore,
		storageBaseURL: strings.TrimRight(cfg.StorageBaseURL, "/"),
		scriptWriter:   initScriptWriter(ctx, cfg, credStore, counters, logger),
		imageChain:     initImageChain(ctx, cfg, credStore, counters, &logger),
		speech:         initSpeech(ctx, cfg, credStore, counters, logger),
		videoChain:     initVideoChain(ctx, cfg, credStore, runner, fileStore, counters, logger),
		counters:       counters,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

// resolveKey prefers the database credential over the environment value and
// never fails the boot; a missing key just disables the provider.
func resolveKey(ctx context.Context, credStore *credentials.Store, provider, envValue string, logger infra.Logger) string {
	key, err := credStore.Resolve(ctx, provider, envValue)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("worker: credential lookup failed, using environment")
		return strings.TrimSpace(envValue)
	}
	return key
}

func initScriptWriter(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, counters *usageRecorder, logger infra.Logger) script.Writer {
	static := script.NewStaticWriter()
	onFallback := func(provider string) func(reason string, err error) {
		return func(reason string, err error) {
			counters.Add(fmt.Sprintf("script_fallback_%s_%s", provider, reason))
			logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("worker: script provider fell back")
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.ScriptProvider)) {
	case "openai":
		key := resolveKey(ctx, credStore, credentials.ProviderOpenAI, cfg.OpenAIAPIKey, logger)
		writer, err := script.NewOpenAIWriter(script.OpenAIOptions{
			APIKey:       key,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			Fallback:     static,
			OnFallback:   onFallback("openai"),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("worker: openai writer unavailable, using static scripts")
			return static
		}
		return writer
	case "static":
		return static
	default:
		key := resolveKey(ctx, credStore, credentials.ProviderGemini, cfg.GeminiAPIKey, logger)
		writer, err := script.NewGeminiWriter(script.GeminiOptions{
			APIKey:     key,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			Fallback:   static,
			OnFallback: onFallback("gemini"),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("worker: gemini writer unavailable, using static scripts")
			return static
		}
		return writer
	}
}

func initImageChain(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, counters *usageRecorder, logger *infra.Logger) *image.Chain {
	var generators []image.Generator
	if key := resolveKey(ctx, credStore, credentials.ProviderGemini, cfg.GeminiAPIKey, *logger); key != "" {
		generators = append(generators, image.NewGemini(image.GeminiOptions{
			APIKey:  key,
			BaseURL: cfg.GeminiBaseURL,
		}))
	}
	generators = append(generators, image.NewPollinations(cfg.PollinationsBaseURL, nil))

	return image.NewChain(image.ChainOptions{
		Generators: generators,
		OnFallback: func(provider, reason string, err error) {
			counters.Add(fmt.Sprintf("image_fallback_%s_%s", provider, reason))
		},
		Logger: logger,
	})
}

func initSpeech(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, counters *usageRecorder, logger infra.Logger) speech.Synthesizer {
	static := speech.NewStatic()
	key := resolveKey(ctx, credStore, credentials.ProviderElevenLabs, cfg.ElevenLabsAPIKey, logger)
	if key == "" {
		return static
	}
	synth, err := speech.NewElevenLabs(speech.ElevenLabsOptions{
		APIKey:   key,
		BaseURL:  cfg.ElevenLabsBaseURL,
		VoiceID:  cfg.ElevenLabsVoice,
		Fallback: static,
		OnFallback: func(reason string, err error) {
			counters.Add("speech_fallback_elevenlabs_" + reason)
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("worker: elevenlabs unavailable, using static narration audio")
		return static
	}
	return synth
}

func initVideoChain(ctx context.Context, cfg *infra.Config, credStore *credentials.Store, runner *infra.SQLRunner, fileStore *storage.FileStore, counters *usageRecorder, logger infra.Logger) *video.Chain {
	envKeys := map[string]string{
		video.ProviderShotstack:  cfg.ShotstackAPIKey,
		video.ProviderBannerbear: cfg.BannerbearAPIKey,
		video.ProviderCreatomate: cfg.CreatomateAPIKey,
		video.ProviderLuma:       cfg.LumaAPIKey,
		video.ProviderRunway:     cfg.RunwayAPIKey,
		video.ProviderKling:      cfg.KlingAPIKey,
		video.ProviderAIML:       cfg.AIMLAPIKey,
	}
	keys := make(map[string]string, len(envKeys))
	for provider, envValue := range envKeys {
		keys[provider] = resolveKey(ctx, credStore, provider, envValue, logger)
	}

	registry, err := video.LoadRegistry(cfg.ProvidersConfigPath, keys)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load provider registry")
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	var adapters []video.Generator
	for _, entry := range registry.Entries() {
		opts := video.AdapterOptions{
			Entry:        entry,
			HTTPClient:   httpClient,
			PollInterval: cfg.VideoPollInterval,
			PollTimeout:  cfg.VideoPollTimeout,
			Logger:       &logger,
		}
		switch entry.Name {
		case video.ProviderShotstack:
			adapters = append(adapters, video.NewShotstack(opts))
		case video.ProviderBannerbear:
			adapters = append(adapters, video.NewBannerbear(opts, ""))
		case video.ProviderCreatomate:
			adapters = append(adapters, video.NewCreatomate(opts))
		case video.ProviderLuma:
			adapters = append(adapters, video.NewLuma(opts))
		case video.ProviderRunway:
			adapters = append(adapters, video.NewRunway(opts))
		case video.ProviderKling:
			adapters = append(adapters, video.NewKling(opts))
		case video.ProviderAIML:
			adapters = append(adapters, video.NewAIML(opts, ""))
		default:
			logger.Warn().Str("provider", entry.Name).Msg("worker: registry entry has no adapter, skipping")
		}
	}

	composer := composition.NewSlideshowComposer(composition.NewWriter(fileStore))
	return video.NewChain(video.ChainOptions{
		Adapters: adapters,
		Composer: composer,
		OnFallback: func(provider, reason string, err error) {
			counters.Add(fmt.Sprintf("video_fallback_%s_%s", provider, reason))
		},
		Logger: &logger,
	})
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		job, err := w.jobs.Claim(w.ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(jobPollInterval):
			}
			continue
		}

		w.handleJob(job)
	}
}

func (w *jobWorker) handleJob(job *domain.Job) {
	w.logger.Info().
		Str("job_id", job.ID).
		Str("task_type", string(job.Type)).
		Str("project_id", job.ProjectID).
		Msg("worker: picked job")

	result, err := w.dispatch(job)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: job failed")
		msg := err.Error()
		if updateErr := w.jobs.UpdateStatus(w.ctx, job.ID, domain.JobStatusFailed, &msg, nil); updateErr != nil {
			w.logger.Error().Err(updateErr).Str("job_id", job.ID).Msg("worker: update status failed")
		}
	} else {
		if updateErr := w.jobs.UpdateStatus(w.ctx, job.ID, domain.JobStatusSucceeded, nil, result); updateErr != nil {
			w.logger.Error().Err(updateErr).Str("job_id", job.ID).Msg("worker: update status failed")
		}
	}

	if err := w.counters.Flush(w.ctx, w.usage); err != nil {
		w.logger.Error().Err(err).Msg("worker: flush usage counters failed")
	}
}

func (w *jobWorker) dispatch(job *domain.Job) ([]byte, error) {
	switch job.Type {
	case domain.JobTypeScript:
		return w.processScript(job)
	case domain.JobTypeCharacters:
		return w.processCharacters(job)
	case domain.JobTypePhotos:
		return w.processPhotos(job)
	case domain.JobTypeSpeech:
		return w.processSpeech(job)
	case domain.JobTypeSegmentVideo:
		return w.processSegmentVideo(job)
	case domain.JobTypeCompile:
		return w.processCompile(job)
	default:
		return nil, fmt.Errorf("unsupported job type %q", job.Type)
	}
}

func (w *jobWorker) loadProjectScript(projectID string) (*domain.Project, *domain.Script, error) {
	project, err := w.projects.GetByID(w.ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load project: %w", err)
	}
	if len(project.ScriptJSON) == 0 {
		return project, nil, errors.New("project has no script")
	}
	var s domain.Script
	if err := json.Unmarshal(project.ScriptJSON, &s); err != nil {
		return project, nil, fmt.Errorf("decode script: %w", err)
	}
	return project, &s, nil
}

func (w *jobWorker) processScript(job *domain.Job) ([]byte, error) {
	project, err := w.projects.GetByID(w.ctx, job.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	var brief jsoncfg.BriefJSON
	if err := json.Unmarshal(project.BriefJSON, &brief); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}

	result, err := w.scriptWriter.WriteScript(w.ctx, script.WriteRequest{
		Brief:  brief,
		Locale: project.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	step := project.Step.Advance(domain.StepScriptReady)
	if err := w.projects.SaveScript(w.ctx, project.ID, raw, step); err != nil {
		return nil, fmt.Errorf("save script: %w", err)
	}
	w.counters.Add("script_generated")

	return jsoncfg.MustMarshal(map[string]any{
		"title":    result.Title,
		"segments": len(result.Segments),
	}), nil
}

func (w *jobWorker) processCharacters(job *domain.Job) ([]byte, error) {
	project, s, err := w.loadProjectScript(job.ProjectID)
	if err != nil {
		return nil, err
	}

	characters, err := w.scriptWriter.DeriveCharacters(w.ctx, *s)
	if err != nil {
		return nil, fmt.Errorf("derive characters: %w", err)
	}
	s.Characters = characters

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	step := project.Step.Advance(domain.StepCharactersReady)
	if err := w.projects.SaveScript(w.ctx, project.ID, raw, step); err != nil {
		return nil, fmt.Errorf("save script: %w", err)
	}
	w.counters.Add("characters_generated")

	names := make([]string, 0, len(characters))
	for _, c := range characters {
		names = append(names, c.Name)
	}
	return jsoncfg.MustMarshal(map[string]any{"characters": names}), nil
}

func (w *jobWorker) processPhotos(job *domain.Job) ([]byte, error) {
	project, s, err := w.loadProjectScript(job.ProjectID)
	if err != nil {
		return nil, err
	}

	var generated int
	for i, character := range s.Characters {
		asset, err := w.imageChain.Generate(w.ctx, image.GenerateRequest{
			Prompt:      character.AppearancePrompt,
			Kind:        image.KindPortrait,
			AspectRatio: project.AspectRatio,
			RequestID:   fmt.Sprintf("%s:portrait-%d", project.ID, i),
			Locale:      project.Locale,
		})
		if err != nil {
			return nil, fmt.Errorf("portrait for %s: %w", character.Name, err)
		}
		if err := w.persistImage(project.ID, job.ID, -1, asset, map[string]any{
			"character": character.Name,
			"role":      character.Role,
		}); err != nil {
			return nil, err
		}
		generated++
	}

	for _, segment := range s.Segments {
		asset, err := w.imageChain.Generate(w.ctx, image.GenerateRequest{
			Prompt:      segment.VisualPrompt,
			Kind:        image.KindStill,
			AspectRatio: project.AspectRatio,
			RequestID:   fmt.Sprintf("%s:%d", project.ID, segment.Index),
			Locale:      project.Locale,
		})
		if err != nil {
			return nil, fmt.Errorf("still for segment %d: %w", segment.Index, err)
		}
		if err := w.persistImage(project.ID, job.ID, segment.Index, asset, nil); err != nil {
			return nil, err
		}
		generated++
	}

	if err := w.projects.AdvanceStep(w.ctx, project.ID, project.Step.Advance(domain.StepPhotosReady)); err != nil {
		return nil, fmt.Errorf("advance step: %w", err)
	}
	w.counters.Add("photos_generated")

	return jsoncfg.MustMarshal(map[string]any{"images": generated}), nil
}

func (w *jobWorker) persistImage(projectID, jobID string, segmentIndex int, asset *image.Asset, metadata map[string]any) error {
	key := asset.StorageKey
	if len(asset.Data) > 0 {
		saved, err := w.store.Write(w.ctx, asset.StorageKey, asset.Data)
		if err != nil {
			return fmt.Errorf("persist image: %w", err)
		}
		key = saved
	} else if key == "" {
		key = asset.URL
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return w.assets.Save(w.ctx, &domain.Asset{
		ProjectID:    projectID,
		JobID:        jobID,
		Kind:         domain.AssetKindImage,
		StorageKey:   key,
		MIME:         asset.Format,
		Bytes:        int64(len(asset.Data)),
		Width:        asset.Width,
		Height:       asset.Height,
		SegmentIndex: segmentIndex,
		Metadata:     metadata,
	})
}

func (w *jobWorker) processSpeech(job *domain.Job) ([]byte, error) {
	project, s, err := w.loadProjectScript(job.ProjectID)
	if err != nil {
		return nil, err
	}
	var brief jsoncfg.BriefJSON
	if err := json.Unmarshal(project.BriefJSON, &brief); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}

	var generated int
	for _, segment := range s.Segments {
		audio, err := w.speech.Synthesize(w.ctx, speech.SynthesizeRequest{
			Text:      segment.Narration,
			VoiceID:   brief.Voice.VoiceID,
			Locale:    project.Locale,
			RequestID: fmt.Sprintf("%s:%d", project.ID, segment.Index),
		})
		if err != nil {
			return nil, fmt.Errorf("speech for segment %d: %w", segment.Index, err)
		}
		key := audio.StorageKey
		if len(audio.Data) > 0 {
			saved, err := w.store.Write(w.ctx, audio.StorageKey, audio.Data)
			if err != nil {
				return nil, fmt.Errorf("persist audio: %w", err)
			}
			key = saved
		}
		if err := w.assets.Save(w.ctx, &domain.Asset{
			ProjectID:       project.ID,
			JobID:           job.ID,
			Kind:            domain.AssetKindAudio,
			StorageKey:      key,
			MIME:            audio.Format,
			Bytes:           int64(len(audio.Data)),
			DurationSeconds: audio.DurationSeconds,
			SegmentIndex:    segment.Index,
			Metadata:        map[string]any{"provider": audio.Provider},
		}); err != nil {
			return nil, fmt.Errorf("save audio asset: %w", err)
		}
		generated++
	}
	w.counters.Add("speech_generated")

	return jsoncfg.MustMarshal(map[string]any{"clips": generated}), nil
}

// segmentAssets indexes a project's stored artifacts by segment for the video
// and compile steps.
type segmentAssets struct {
	stills map[int]domain.Asset
	audio  map[int]domain.Asset
	videos map[int]domain.Asset
}

func (w *jobWorker) collectSegmentAssets(projectID string) (*segmentAssets, error) {
	assets, err := w.assets.ListByProject(w.ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	out := &segmentAssets{
		stills: make(map[int]domain.Asset),
		audio:  make(map[int]domain.Asset),
		videos: make(map[int]domain.Asset),
	}
	for _, asset := range assets {
		if asset.SegmentIndex < 0 {
			continue
		}
		switch asset.Kind {
		case domain.AssetKindImage:
			out.stills[asset.SegmentIndex] = asset
		case domain.AssetKindAudio:
			out.audio[asset.SegmentIndex] = asset
		case domain.AssetKindVideo, domain.AssetKindComposition:
			out.videos[asset.SegmentIndex] = asset
		}
	}
	return out, nil
}

func (w *jobWorker) assetURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	if strings.HasPrefix(storageKey, "http://") || strings.HasPrefix(storageKey, "https://") {
		return storageKey
	}
	return w.storageBaseURL + "/" + strings.TrimLeft(storageKey, "/")
}

func (w *jobWorker) processSegmentVideo(job *domain.Job) ([]byte, error) {
	project, s, err := w.loadProjectScript(job.ProjectID)
	if err != nil {
		return nil, err
	}
	if job.SegmentIndex < 0 || job.SegmentIndex >= len(s.Segments) {
		return nil, fmt.Errorf("segment index %d out of range", job.SegmentIndex)
	}
	segment := s.Segments[job.SegmentIndex]

	byIndex, err := w.collectSegmentAssets(project.ID)
	if err != nil {
		return nil, err
	}

	req := video.GenerateRequest{
		Prompt:          segment.VisualPrompt,
		DurationSeconds: segment.DurationSeconds,
		AspectRatio:     project.AspectRatio,
		RequestID:       fmt.Sprintf("%s:%d", project.ID, segment.Index),
		Theme:           project.Theme,
		NarrationText:   segment.Narration,
	}
	if still, ok := byIndex.stills[segment.Index]; ok {
		req.ReferenceImageURL = w.assetURL(still.StorageKey)
		req.SlideshowImageKeys = []string{still.StorageKey}
	}
	if audio, ok := byIndex.audio[segment.Index]; ok {
		req.AudioKey = audio.StorageKey
	}

	asset, err := w.videoChain.Generate(w.ctx, req)
	if err != nil {
		return nil, fmt.Errorf("video generation: %w", err)
	}

	kind := domain.AssetKindVideo
	if asset.Strategy == video.StrategySlideshow {
		kind = domain.AssetKindComposition
	}
	key := asset.StorageKey
	if key == "" {
		key = asset.URL
	}
	if err := w.assets.Save(w.ctx, &domain.Asset{
		ProjectID:       project.ID,
		JobID:           job.ID,
		Kind:            kind,
		StorageKey:      key,
		MIME:            asset.Format,
		Bytes:           int64(len(asset.Data)),
		DurationSeconds: asset.DurationSeconds,
		SegmentIndex:    segment.Index,
		Metadata: map[string]any{
			"provider": asset.Provider,
			"strategy": asset.Strategy,
		},
	}); err != nil {
		return nil, fmt.Errorf("save video asset: %w", err)
	}
	w.counters.Add("segment_video_generated")
	w.counters.Add("video_strategy_" + asset.Strategy)

	// The wizard unlocks compilation once every segment has a video artifact.
	byIndex.videos[segment.Index] = domain.Asset{SegmentIndex: segment.Index}
	done := true
	for _, seg := range s.Segments {
		if _, ok := byIndex.videos[seg.Index]; !ok {
			done = false
			break
		}
	}
	if done {
		if err := w.projects.AdvanceStep(w.ctx, project.ID, project.Step.Advance(domain.StepSegmentsReady)); err != nil {
			return nil, fmt.Errorf("advance step: %w", err)
		}
	}

	return jsoncfg.MustMarshal(map[string]any{
		"provider": asset.Provider,
		"strategy": asset.Strategy,
		"url":      w.assetURL(key),
	}), nil
}

func (w *jobWorker) processCompile(job *domain.Job) ([]byte, error) {
	project, s, err := w.loadProjectScript(job.ProjectID)
	if err != nil {
		return nil, err
	}

	byIndex, err := w.collectSegmentAssets(project.ID)
	if err != nil {
		return nil, err
	}

	segments := make([]composition.CompiledSegment, 0, len(s.Segments))
	for _, segment := range s.Segments {
		compiled := composition.CompiledSegment{
			Narration:       segment.Narration,
			DurationSeconds: segment.DurationSeconds,
		}
		if videoAsset, ok := byIndex.videos[segment.Index]; ok && videoAsset.Kind == domain.AssetKindVideo {
			compiled.VideoURL = w.assetURL(videoAsset.StorageKey)
		}
		if still, ok := byIndex.stills[segment.Index]; ok {
			compiled.ImageKey = still.StorageKey
		}
		if audio, ok := byIndex.audio[segment.Index]; ok {
			compiled.AudioKey = audio.StorageKey
			if audio.DurationSeconds > 0 {
				compiled.DurationSeconds = audio.DurationSeconds
			}
		}
		segments = append(segments, compiled)
	}

	doc := composition.BuildCompiled(project.ID, project.AspectRatio, segments)
	writer := composition.NewWriter(w.store)
	key, data, err := writer.WriteDocument(w.ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("write composition: %w", err)
	}

	if err := w.assets.Save(w.ctx, &domain.Asset{
		ProjectID:       project.ID,
		JobID:           job.ID,
		Kind:            domain.AssetKindComposition,
		StorageKey:      key,
		MIME:            "application/json",
		Bytes:           int64(len(data)),
		DurationSeconds: doc.DurationSeconds,
		SegmentIndex:    -1,
		Metadata:        map[string]any{"kind": doc.Kind},
	}); err != nil {
		return nil, fmt.Errorf("save composition asset: %w", err)
	}

	if err := w.projects.AdvanceStep(w.ctx, project.ID, project.Step.Advance(domain.StepCompiled)); err != nil {
		return nil, fmt.Errorf("advance step: %w", err)
	}
	w.counters.Add("video_compiled")

	return jsoncfg.MustMarshal(map[string]any{
		"composition_url":  w.assetURL(key),
		"duration_seconds": doc.DurationSeconds,
		"segments":         len(segments),
	}), nil
}
