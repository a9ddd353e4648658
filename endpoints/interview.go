package endpoints

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/EasterCompany/dex-interview-service/llm"
	"github.com/EasterCompany/dex-interview-service/pipeline"
	"github.com/EasterCompany/dex-interview-service/session"
	"github.com/EasterCompany/dex-interview-service/stt"
	"github.com/EasterCompany/dex-interview-service/tts"
	"github.com/google/uuid"
)

const (
	AudioField     = "audio"
	SessionField   = "session_id"
	SessionHeader  = "X-Session-ID"
	TranscriptHdr  = "X-Transcript"
	ResponseTxtHdr = "X-Response-Text"

	maxFormMemory = 32 << 20
	copyChunkSize = 32 << 10
)

// ErrNoPayload is returned when the request carries no audio field.
var ErrNoPayload = errors.New("no audio payload supplied")

// InterviewHandler runs one turn: multipart audio in, MP3 stream out with
// the transcript and reply text as percent-encoded headers.
func (s *Server) InterviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	audio, err := readAudio(r)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		switch {
		case isTooLarge(err):
			s.recordTurn("too_large")
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, ErrNoPayload):
			s.recordTurn("no_audio")
			http.Error(w, "No audio", http.StatusBadRequest)
		default:
			s.Logger.Debug().Err(err).Msg("could not parse interview form")
			s.recordTurn("bad_request")
			http.Error(w, "Malformed form", http.StatusBadRequest)
		}
		return
	}

	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.FormValue(SessionField)
	}
	sess, err := s.Sessions.Acquire(id)
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			s.recordTurn("too_many_sessions")
			http.Error(w, "Too many sessions", http.StatusServiceUnavailable)
			return
		}
		s.recordTurn("invalid_session")
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	logger := s.Logger.With().Str("session", sess.ID).Logger()
	s.archive(r.Context(), sess.ID, audio)

	var result *pipeline.TurnResult
	err = sess.Exclusive(func(store *conversation.Store) error {
		var runErr error
		result, runErr = s.Pipeline.Run(r.Context(), store, audio)
		return runErr
	})
	if err != nil {
		kind := errorKind(err)
		logger.Error().Err(err).Str("kind", kind).Msg("turn failed")
		s.recordTurn(kind)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}
	defer result.Audio.Close()

	h := w.Header()
	h.Set("Content-Type", "audio/mpeg")
	h.Set("Cache-Control", "no-store")
	h.Set(TranscriptHdr, url.PathEscape(result.Metadata.Transcript))
	h.Set(ResponseTxtHdr, url.PathEscape(result.Metadata.ReplyText))
	h.Set(SessionHeader, sess.ID)
	h.Set("Access-Control-Expose-Headers", strings.Join([]string{TranscriptHdr, ResponseTxtHdr, SessionHeader}, ", "))
	w.WriteHeader(http.StatusOK)

	written, err := streamBody(w, result.Audio)
	if err != nil {
		// Headers are gone, the client sees a truncated stream.
		logger.Warn().Err(err).Int64("bytes", written).Msg("audio stream interrupted")
		s.recordTurn("stream_interrupted")
		return
	}
	logger.Info().Int64("bytes", written).Int("turns", sess.Turns()).Msg("turn complete")
	s.recordTurn("ok")
}

func readAudio(r *http.Request) (interfaces.Audio, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return interfaces.Audio{}, ErrNoPayload
		}
		return interfaces.Audio{}, err
	}

	file, header, err := r.FormFile(AudioField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return interfaces.Audio{}, ErrNoPayload
		}
		return interfaces.Audio{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return interfaces.Audio{}, err
	}
	return interfaces.Audio{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType(header),
	}, nil
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	// mime/multipart does not always wrap the underlying read error.
	return strings.Contains(err.Error(), "request body too large")
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "audio/webm"
}

// streamBody copies audio to the client, flushing after every chunk.
func streamBody(w http.ResponseWriter, body io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, copyChunkSize)
	var written int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// archive stores the upload for later inspection. Failures only get logged.
func (s *Server) archive(ctx context.Context, sessionID string, audio interfaces.Audio) {
	if s.Archive == nil {
		return
	}
	key := sessionID + ":" + uuid.NewString()
	if err := s.Archive.SaveAudio(ctx, key, audio.Data, s.AudioTTL); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("could not archive audio")
		return
	}
	s.Logger.Debug().Str("key", key).Int("bytes", len(audio.Data)).Msg("archived audio")
}

func (s *Server) recordTurn(outcome string) {
	if s.Metrics != nil {
		s.Metrics.RecordTurn(outcome)
	}
}

// errorKind names a turn failure for logs and metrics. It is never sent to
// the client.
func errorKind(err error) string {
	var (
		transcription *stt.TranscriptionError
		reply         *llm.ReplyGenerationError
		synthesis     *tts.SynthesisError
		invariant     *conversation.InvariantViolation
	)
	switch {
	case errors.As(err, &transcription):
		return "transcription_error"
	case errors.As(err, &reply):
		return "reply_error"
	case errors.As(err, &synthesis):
		return "synthesis_error"
	case errors.As(err, &invariant):
		return "invariant_violation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
