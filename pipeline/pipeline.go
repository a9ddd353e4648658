// Package pipeline runs one interview turn: transcribe, reply, synthesize.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/rs/zerolog"
)

type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageReply      Stage = "reply"
	StageSynthesize Stage = "synthesize"
)

// StageTiming is the wall clock duration of one stage call.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// TimingRecorder receives stage timings. It must not block.
type TimingRecorder interface {
	ObserveStage(t StageTiming)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio interfaces.Audio, language string) (string, error)
}

type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []conversation.Message) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error)
}

// Metadata travels next to the audio, never inside it.
type Metadata struct {
	Transcript string
	ReplyText  string
}

// TurnResult is produced once per turn. The caller closes Audio.
type TurnResult struct {
	Metadata Metadata
	Audio    io.ReadCloser
}

type Options struct {
	Language          string
	Voice             string
	TranscribeTimeout time.Duration
	ReplyTimeout      time.Duration
}

// TurnPipeline sequences the stages against a conversation store.
type TurnPipeline struct {
	stt      Transcriber
	llm      ReplyGenerator
	tts      Synthesizer
	opts     Options
	recorder TimingRecorder
	logger   zerolog.Logger
}

func New(stt Transcriber, llm ReplyGenerator, tts Synthesizer, opts Options, logger zerolog.Logger) *TurnPipeline {
	return &TurnPipeline{stt: stt, llm: llm, tts: tts, opts: opts, logger: logger}
}

// WithRecorder sets where stage timings are reported besides the log.
func (p *TurnPipeline) WithRecorder(r TimingRecorder) *TurnPipeline {
	p.recorder = r
	return p
}

// Run processes one turn against store. The caller must hold exclusive access
// to store for the whole call.
//
// A failure aborts the turn and is returned unchanged. Nothing is rolled back:
// a transcript appended before a failed reply stays in the history.
func (p *TurnPipeline) Run(ctx context.Context, store *conversation.Store, audio interfaces.Audio) (*TurnResult, error) {
	var transcript string
	err := p.timed(StageTranscribe, func() error {
		stageCtx, cancel := withTimeout(ctx, p.opts.TranscribeTimeout)
		defer cancel()
		var err error
		transcript, err = p.stt.Transcribe(stageCtx, audio, p.opts.Language)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := store.Append(conversation.User(transcript)); err != nil {
		return nil, fmt.Errorf("could not record transcript: %w", err)
	}

	var reply string
	err = p.timed(StageReply, func() error {
		stageCtx, cancel := withTimeout(ctx, p.opts.ReplyTimeout)
		defer cancel()
		var err error
		reply, err = p.llm.GenerateReply(stageCtx, store.Snapshot())
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := store.Append(conversation.Assistant(reply)); err != nil {
		return nil, fmt.Errorf("could not record reply: %w", err)
	}
	if err := store.Trim(); err != nil {
		return nil, fmt.Errorf("could not trim history: %w", err)
	}

	var audioOut io.ReadCloser
	err = p.timed(StageSynthesize, func() error {
		var err error
		audioOut, err = p.tts.Synthesize(ctx, reply, p.opts.Voice)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Metadata: Metadata{Transcript: transcript, ReplyText: reply},
		Audio:    audioOut,
	}, nil
}

func (p *TurnPipeline) timed(stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	timing := StageTiming{Stage: stage, Duration: time.Since(start)}

	p.logger.Info().Str("stage", string(stage)).Dur("duration", timing.Duration).Bool("ok", err == nil).Msg("stage finished")
	if p.recorder != nil {
		p.recorder.ObserveStage(timing)
	}
	return err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
