package imageadjustapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/imageadjust/delivery/upload"
	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
	types "github.com/desain-gratis/imageadjust/types/http"
	"github.com/desain-gratis/imageadjust/usecase/screen"
)

const maximumRequestLength = 1 << 20

type service struct {
	controller *screen.Controller
	uploader   *upload.Uploader

	lock     sync.RWMutex
	sessions map[string]*entry
}

// entry serializes the events of one session.
type entry struct {
	sync.Mutex
	session *screen.Session
}

type ScreenInfo struct {
	Variant screen.Variant `json:"variant"`
	Title   string         `json:"title"`
}

type SessionInfo struct {
	ID string `json:"id"`
	screen.Snapshot
}

func New(controller *screen.Controller, uploader *upload.Uploader) *service {
	return &service{
		controller: controller,
		uploader:   uploader,
		sessions:   make(map[string]*entry),
	}
}

// Router registers every route of the demo API.
func (s *service) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/screens", s.Screens)
	router.POST("/session/:id", s.Create)
	router.GET("/session/:id", s.Get)
	router.DELETE("/session/:id", s.Delete)
	router.POST("/session/:id/upload", s.Upload)
	router.POST("/session/:id/event", s.Event)
	router.GET("/session/:id/preview", s.Preview)
	return router
}

func (s *service) Screens(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var result []ScreenInfo
	for _, v := range s.controller.Variants() {
		sc, err := s.controller.Lookup(v)
		if err != nil {
			continue
		}
		result = append(result, ScreenInfo{Variant: v, Title: sc.Title()})
	}
	writeSuccess(w, http.StatusOK, result)
}

// Create opens a session of the screen named by the path parameter.
func (s *service) Create(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, err := s.controller.NewSession(screen.Variant(p.ByName("id")))
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	id := uuid.NewString()
	s.lock.Lock()
	s.sessions[id] = &entry{session: session}
	s.lock.Unlock()

	log.Info().Str("session", id).Msgf("Opened %v", session.Screen().Variant())
	writeSuccess(w, http.StatusCreated, SessionInfo{ID: id, Snapshot: session.Snapshot()})
}

func (s *service) Get(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	e, ok := s.find(w, id)
	if !ok {
		return
	}
	e.Lock()
	snapshot := e.session.Snapshot()
	e.Unlock()

	writeSuccess(w, http.StatusOK, SessionInfo{ID: id, Snapshot: snapshot})
}

func (s *service) Delete(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	s.lock.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.lock.Unlock()
	if !ok {
		handleError(w, "NOT_FOUND", "session not found", http.StatusNotFound, nil)
		return
	}

	e.Lock()
	snapshot := e.session.Snapshot()
	e.Unlock()
	writeSuccess(w, http.StatusOK, SessionInfo{ID: id, Snapshot: snapshot})
}

// Upload accepts either a raw image body or a multipart form with an `attachment` part.
// Decoding happens outside the session lock; if another upload starts meanwhile, this
// one is dropped when it finishes.
func (s *service) Upload(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	e, ok := s.find(w, id)
	if !ok {
		return
	}

	e.Lock()
	begin, err := e.session.Dispatch(r.Context(), screen.BeginUpload{})
	e.Unlock()
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	src, err := s.accept(r)

	var event screen.Event = screen.Uploaded{Ticket: begin.Ticket, Source: src}
	if err != nil {
		event = screen.UploadFailed{Ticket: begin.Ticket, Err: err}
	}

	e.Lock()
	result, err := e.session.Dispatch(r.Context(), event)
	snapshot := e.session.Snapshot()
	e.Unlock()
	if err != nil {
		handleDispatchError(w, err)
		return
	}
	if result.Ignored {
		handleError(w, "CONFLICT", "a newer upload replaced this one", http.StatusConflict, nil)
		return
	}

	writeSuccess(w, http.StatusOK, SessionInfo{ID: id, Snapshot: snapshot})
}

func (s *service) accept(r *http.Request) (*entity.SourceImage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return s.uploader.Accept(r.URL.Query().Get("name"), r.Header.Get("Content-Type"), r.Body)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read as multipart/form-data", err)
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: expecting data with form name 'attachment'", upload.ErrDecodeFailure)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", upload.ErrDecodeFailure, err)
		}
		if part.FormName() != "attachment" {
			continue
		}
		return s.uploader.Accept(part.FileName(), part.Header.Get("Content-Type"), part)
	}
}

func (s *service) Event(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	e, ok := s.find(w, id)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maximumRequestLength)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(w, "SERVER_ERROR", "failed to read payload", http.StatusInternalServerError, err)
		return
	}

	var msg screen.EventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		handleError(w, "BAD_REQUEST", "failed to parse body", http.StatusBadRequest, nil)
		return
	}
	event, err := screen.DecodeEvent(msg)
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	e.Lock()
	result, err := e.session.Dispatch(r.Context(), event)
	e.Unlock()
	if err != nil {
		handleDispatchError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// Preview serves the bytes of the open preview.
func (s *service) Preview(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	e, ok := s.find(w, p.ByName("id"))
	if !ok {
		return
	}

	e.Lock()
	state := e.session.State()
	artifact := e.session.LastPreview()
	e.Unlock()
	if state != screen.StatePreviewOpen || artifact == nil {
		handleError(w, "NOT_FOUND", "no preview is open", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", artifact.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("ETag", strconv.Quote(artifact.Hash))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

func (s *service) find(w http.ResponseWriter, id string) (*entry, bool) {
	s.lock.RLock()
	e, ok := s.sessions[id]
	s.lock.RUnlock()
	if !ok {
		handleError(w, "NOT_FOUND", "session not found", http.StatusNotFound, nil)
	}
	return e, ok
}

func writeSuccess(w http.ResponseWriter, status int, result any) {
	payload, err := json.Marshal(&types.CommonResponse{
		Success: result,
	})
	if err != nil {
		handleError(w, "SERVER_ERROR", "server encounter an error", http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func handleDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upload.ErrInvalidFileType):
		handleError(w, "INVALID_FILE_TYPE", upload.InvalidFileTypeMessage, http.StatusBadRequest, nil)
	case errors.Is(err, upload.ErrTooLarge):
		handleError(w, "FILE_TOO_LARGE", err.Error(), http.StatusRequestEntityTooLarge, nil)
	case errors.Is(err, upload.ErrDecodeFailure):
		handleError(w, "DECODE_FAILURE", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, screen.ErrActionDisabled) && errors.Is(err, imageproc.ErrInvalidRegion):
		handleError(w, "INVALID_REGION", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, screen.ErrActionDisabled):
		handleError(w, "ACTION_DISABLED", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, screen.ErrNoImage):
		handleError(w, "NO_IMAGE", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, screen.ErrUnknownVariant):
		handleError(w, "UNKNOWN_SCREEN", err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, screen.ErrUnknownEvent):
		handleError(w, "UNKNOWN_EVENT", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, imageproc.ErrInvalidRegion):
		handleError(w, "INVALID_REGION", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, imageproc.ErrInvalidTransform):
		handleError(w, "INVALID_TRANSFORM", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, imageproc.ErrInvalidOutput):
		handleError(w, "INVALID_OUTPUT", err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, imageproc.ErrUnsupportedFormat):
		handleError(w, "UNSUPPORTED_FORMAT", err.Error(), http.StatusBadRequest, nil)
	default:
		handleError(w, "SERVER_ERROR", "server encounter an error", http.StatusInternalServerError, err)
	}
}

func handleError(w http.ResponseWriter, code, msg string, httpStatus int, err error) {
	if err != nil {
		log.Err(err).Msgf("failed to serve request")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	w.Write(types.SerializeError(&types.CommonError{
		Errors: []types.Error{
			{Message: msg, Code: code, HTTPCode: httpStatus},
		},
	}))
}
