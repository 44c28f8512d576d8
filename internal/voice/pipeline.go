package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/proptalk/proptalk/internal/agent"
	"github.com/proptalk/proptalk/internal/logger"
	"github.com/proptalk/proptalk/internal/profile"
)

// TranscriptPipeline turns finalized call transcripts into funnel criteria
// updates. Each transcript is logged to a file, run through the extractor
// and merged into the configured user's active funnel. The work happens on
// a bounded pool so a slow model call never backs up the audio stream.
//
// Every stage failure is logged and swallowed. A call must keep flowing
// even when extraction or the profile store misbehaves.
type TranscriptPipeline struct {
	pool      *ants.Pool
	extractor *agent.Extractor
	profiles  *profile.Manager
	userID    string
	logPath   string
	fileMu    sync.Mutex
	log       *logger.Logger
}

// NewTranscriptPipeline builds the pipeline with workers goroutines.
func NewTranscriptPipeline(extractor *agent.Extractor, profiles *profile.Manager, userID, logPath string, workers int, log *logger.Logger) (*TranscriptPipeline, error) {
	if log == nil {
		log = logger.Nop()
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create transcript pool: %w", err)
	}

	return &TranscriptPipeline{
		pool:      pool,
		extractor: extractor,
		profiles:  profiles,
		userID:    userID,
		logPath:   logPath,
		log:       log.WithComponent("transcript_pipeline"),
	}, nil
}

// Submit queues one transcript for processing.
func (p *TranscriptPipeline) Submit(transcript string) {
	if transcript == "" {
		return
	}
	err := p.pool.Submit(func() {
		p.process(context.Background(), transcript)
	})
	if err != nil {
		p.log.Warn("transcript dropped", map[string]interface{}{
			"error":      err.Error(),
			"transcript": transcript,
		})
	}
}

// Release shuts the pool down. Queued transcripts may be discarded.
func (p *TranscriptPipeline) Release() {
	p.pool.Release()
}

func (p *TranscriptPipeline) process(ctx context.Context, transcript string) {
	p.appendTranscript(transcript)

	update := p.extractor.Extract(ctx, transcript)
	if len(update) == 0 {
		p.log.Debug("no criteria in transcript", map[string]interface{}{"transcript": transcript})
		return
	}

	funnel, err := p.profiles.ActiveFunnel(ctx, p.userID)
	if err != nil {
		p.log.Error("active funnel lookup failed", err, map[string]interface{}{"user_id": p.userID})
		return
	}

	if _, err := p.profiles.UpdateCriteria(ctx, p.userID, funnel.ID, update); err != nil {
		p.log.Error("criteria update failed", err, map[string]interface{}{
			"user_id":   p.userID,
			"funnel_id": funnel.ID,
		})
		return
	}

	p.log.Info("funnel updated from call", map[string]interface{}{
		"user_id":   p.userID,
		"funnel_id": funnel.ID,
		"fields":    len(update),
	})
}

// appendTranscript writes one line to the transcript log so other tools can
// tail the conversation.
func (p *TranscriptPipeline) appendTranscript(transcript string) {
	if p.logPath == "" {
		return
	}

	p.fileMu.Lock()
	defer p.fileMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.logPath), 0o755); err != nil {
		p.log.Warn("transcript log dir failed", map[string]interface{}{"error": err.Error()})
		return
	}

	f, err := os.OpenFile(p.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		p.log.Warn("transcript log open failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer f.Close()

	if _, err := f.WriteString(transcript + "\n"); err != nil {
		p.log.Warn("transcript log write failed", map[string]interface{}{"error": err.Error()})
	}
}
