package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"storycast/audio"
	"storycast/config"
	"storycast/cover"
	"storycast/research"
	"storycast/script"
	"storycast/sfx"
	"storycast/store"
	"storycast/types"
	"storycast/upload"
	"storycast/video"
	"storycast/voice"
	"storycast/workflow"
)

func main() {
	cfgPath := os.Getenv("STORYCAST_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}
	jobs := store.NewJobStore(cfg.Store.Root+"/jobs.json", blobs)

	registry := voice.NewRegistry(voice.NewElevenLabs(), voice.NewOpenAI())
	runner := workflow.NewRunner(workflow.Deps{
		Config:   cfg,
		Jobs:     jobs,
		Blobs:    blobs,
		Scripts:  script.NewGroqGenerator(cfg.Script.Model, cfg.Script.Temperature),
		Voices:   registry,
		Effects:  sfx.NewElevenLabs(),
		Art:      cover.NewPollinations(),
		Renderer: video.NewRenderer(video.NewFFmpegRecorder()),
		Encoder:  audio.LameFactory,
		Publisher: upload.NewYouTube(upload.Settings{
			Visibility:        cfg.Upload.Visibility,
			CategoryID:        cfg.Upload.CategoryID,
			MadeForKids:       cfg.Upload.MadeForKids,
			NotifySubscribers: cfg.Upload.NotifySubscribers,
			DefaultLanguage:   cfg.Upload.DefaultLanguage,
			ChunkSizeMB:       cfg.Upload.ChunkSizeMB,
		}),
	})

	srv := &server{cfg: cfg, jobs: jobs, blobs: blobs, registry: registry, runner: runner}
	log.Printf("🎙️  Storycast listening on %s", cfg.Server.Addr)
	if err := srv.routes().Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (store.BlobStore, error) {
	if cfg.Store.Backend == "s3" {
		return store.NewS3BlobStore(ctx, store.S3Options{
			Bucket:       cfg.Store.S3.Bucket,
			Region:       cfg.Store.S3.Region,
			UsePathStyle: cfg.Store.S3.UsePathStyle,
		})
	}
	return store.NewFSBlobStore(cfg.Store.Root + "/blobs"), nil
}

type server struct {
	cfg      *config.Config
	jobs     *store.JobStore
	blobs    store.BlobStore
	registry *voice.Registry
	runner   *workflow.Runner
}

func (s *server) routes() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/jobs", s.createJob)
	r.GET("/jobs", s.listJobs)
	r.GET("/jobs/:id", s.getJob)
	r.DELETE("/jobs/:id", s.deleteJob)
	r.PATCH("/jobs/:id/metadata", s.editMetadata)
	r.GET("/jobs/:id/artifacts/:role", s.getArtifact)

	r.POST("/jobs/:id/script", s.generateScript)
	r.POST("/jobs/:id/files", s.generateFiles)
	r.POST("/jobs/:id/publish", s.publish)
	r.POST("/batch", s.runBatch)

	r.GET("/voices/:provider", s.listVoices)
	r.GET("/research/:subreddit", s.researchStories)

	return r
}

func (s *server) createJob(c *gin.Context) {
	var req struct {
		Story string `json:"story"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := s.runner.CreateJob(req.Story)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (s *server) listJobs(c *gin.Context) {
	jobs, err := s.jobs.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *server) getJob(c *gin.Context) {
	job, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *server) deleteJob(c *gin.Context) {
	if err := s.jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) editMetadata(c *gin.Context) {
	var meta types.EpisodeMetadata
	if err := c.ShouldBindJSON(&meta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := s.runner.EditMetadata(c.Param("id"), meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

var artifactRoles = map[string]func(types.Job) (key, contentType string){
	"mix":      func(j types.Job) (string, string) { return j.MixKey, "audio/" + j.MixFormat },
	"lossless": func(j types.Job) (string, string) { return j.LosslessKey, "audio/wav" },
	"cover":    func(j types.Job) (string, string) { return j.CoverKey, "image/jpeg" },
	"video":    func(j types.Job) (string, string) { return j.VideoKey, "video/mp4" },
}

func (s *server) getArtifact(c *gin.Context) {
	job, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	resolve, ok := artifactRoles[c.Param("role")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact role"})
		return
	}
	key, contentType := resolve(job)
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not produced yet"})
		return
	}
	data, err := s.blobs.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

func (s *server) generateScript(c *gin.Context) {
	job, err := s.runner.GenerateScript(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "job": job})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *server) generateFiles(c *gin.Context) {
	res, err := s.runner.GenerateFiles(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) publish(c *gin.Context) {
	cred := upload.Credential{
		ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}
	job, err := s.runner.Publish(c.Request.Context(), c.Param("id"), cred)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "job": job})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *server) runBatch(c *gin.Context) {
	var req struct {
		JobIDs []string `json:"job_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report := s.runner.RunBatch(c.Request.Context(), req.JobIDs)
	c.JSON(http.StatusOK, report)
}

func (s *server) listVoices(c *gin.Context) {
	provider, err := s.registry.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if !provider.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		return
	}
	voices, err := provider.ListVoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, voices)
}

func (s *server) researchStories(c *gin.Context) {
	limit := 25
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	source, err := research.NewRedditSource(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	stories, err := source.TopStories(c.Request.Context(), c.Param("subreddit"), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stories)
}
