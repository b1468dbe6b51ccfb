package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymlive/internal/live/autosave"
	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/live/resume"
	"github.com/2beens/gymlive/internal/live/session"
	"github.com/2beens/gymlive/internal/live/store"
	"github.com/2beens/gymlive/internal/telemetry/tracing"
	"github.com/2beens/gymlive/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// maxBodyBytes bounds intent and start payloads.
const maxBodyBytes = 1 << 20

type StartExercise struct {
	ID           string              `json:"id"`
	ExerciseID   string              `json:"exerciseId"`
	Name         string              `json:"name"`
	Type         draft.ExerciseType  `json:"type"`
	SetCount     int                 `json:"setCount"`
	Prescription *draft.Prescription `json:"prescription,omitempty"`
	LastSession  *draft.LastSession  `json:"lastSession,omitempty"`
}

type StartRequest struct {
	WorkoutID     *string         `json:"workoutId"`
	PlanWorkoutID *string         `json:"planWorkoutId"`
	Title         string          `json:"title"`
	Exercises     []StartExercise `json:"exercises"`
}

type MutationResponse struct {
	Changed bool        `json:"changed"`
	Draft   draft.Draft `json:"draft"`
}

type AutosaveResponse struct {
	Status autosave.Status `json:"status"`
}

type ResumeResponse struct {
	State resume.State  `json:"state"`
	Offer *resume.Offer `json:"offer,omitempty"`
}

type RouteRequest struct {
	Route string `json:"route"`
}

type DiscardResponse struct {
	Discarded bool `json:"discarded"`
	// RemoteError is set when only the remote copy could not be removed.
	RemoteError string `json:"remoteError,omitempty"`
}

type Handler struct {
	sessions *session.Manager
	gates    *resume.Gates
	now      func() time.Time
}

func NewHandler(sessions *session.Manager, gates *resume.Gates) *Handler {
	return &Handler{
		sessions: sessions,
		gates:    gates,
		now:      time.Now,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/session", h.HandleStart).Methods("POST", "OPTIONS").Name("live-start")
	r.HandleFunc("/session", h.HandleGet).Methods("GET", "OPTIONS").Name("live-get")
	r.HandleFunc("/session", h.HandleDiscard).Methods("DELETE", "OPTIONS").Name("live-discard")
	r.HandleFunc("/session/mutate", h.HandleMutate).Methods("POST", "OPTIONS").Name("live-mutate")
	r.HandleFunc("/session/flush", h.HandleFlush).Methods("POST", "OPTIONS").Name("live-flush")
	r.HandleFunc("/session/autosave/pause", h.HandlePauseAutosave).Methods("POST", "OPTIONS").Name("live-autosave-pause")
	r.HandleFunc("/session/autosave/resume", h.HandleResumeAutosave).Methods("POST", "OPTIONS").Name("live-autosave-resume")
	r.HandleFunc("/session/complete", h.HandleComplete).Methods("POST", "OPTIONS").Name("live-complete")

	r.HandleFunc("/resume", h.HandleResumeCheck).Methods("GET", "OPTIONS").Name("resume-check")
	r.HandleFunc("/resume/route", h.HandleRouteChanged).Methods("POST", "OPTIONS").Name("resume-route")
	r.HandleFunc("/resume/continue", h.HandleContinue).Methods("POST", "OPTIONS").Name("resume-continue")
	r.HandleFunc("/resume/delete", h.HandleRequestDelete).Methods("POST", "OPTIONS").Name("resume-delete")
	r.HandleFunc("/resume/delete/cancel", h.HandleCancelDelete).Methods("POST", "OPTIONS").Name("resume-delete-cancel")
	r.HandleFunc("/resume/delete/confirm", h.HandleConfirmDelete).Methods("POST", "OPTIONS").Name("resume-delete-confirm")
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.start")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	span.SetAttributes(attribute.String("user", userID))

	var req StartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Exercises) == 0 {
		http.Error(w, "error, no exercises", http.StatusBadRequest)
		return
	}

	exercises := make([]draft.Exercise, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		if e.ExerciseID == "" {
			http.Error(w, "error, exercise id empty", http.StatusBadRequest)
			return
		}
		ex := draft.NewExercise(e.ID, e.ExerciseID, e.Name, e.Type, e.SetCount)
		ex.Prescription = e.Prescription
		ex.LastSession = e.LastSession
		exercises = append(exercises, ex)
	}

	s, err := h.sessions.Start(ctx, draft.NewDraftParams{
		UserID:        userID,
		WorkoutID:     req.WorkoutID,
		PlanWorkoutID: req.PlanWorkoutID,
		Title:         req.Title,
		StartedAt:     h.now(),
		Exercises:     exercises,
	})
	if err != nil {
		writeError(w, "start session", err)
		return
	}

	d, _ := s.Current()
	log.Debugf("live session started for %s: %s [%d exercises]", userID, d.ID, len(d.Exercises))
	pkg.WriteJSON(w, d, http.StatusCreated)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.get")
	defer span.End()

	s, err := h.sessions.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	d, _ := s.Current()
	pkg.WriteJSON(w, d, http.StatusOK)
}

func (h *Handler) HandleMutate(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.mutate")
	defer span.End()

	s, err := h.sessions.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, "mutate", err)
		return
	}

	var intent session.Intent
	if !decodeBody(w, r, &intent) {
		return
	}
	span.SetAttributes(attribute.String("op", string(intent.Op)))

	d, changed, err := s.ApplyIntent(intent)
	if err != nil {
		writeError(w, "mutate", err)
		return
	}
	pkg.WriteJSON(w, MutationResponse{Changed: changed, Draft: d}, http.StatusOK)
}

func (h *Handler) HandleFlush(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.flush")
	defer span.End()

	s, err := h.sessions.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, "flush", err)
		return
	}
	if err := s.Flush(ctx); err != nil {
		writeError(w, "flush", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandlePauseAutosave(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, "pause autosave", err)
		return
	}
	s.PauseAutosave()
	pkg.WriteJSON(w, AutosaveResponse{Status: s.AutosaveStatus()}, http.StatusOK)
}

func (h *Handler) HandleResumeAutosave(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, "resume autosave", err)
		return
	}
	// the loop outlives this request
	s.ResumeAutosave(context.WithoutCancel(r.Context()))
	pkg.WriteJSON(w, AutosaveResponse{Status: s.AutosaveStatus()}, http.StatusOK)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.complete")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	err := h.sessions.Complete(ctx, userID)
	switch {
	case err == nil:
		log.Debugf("live session of %s completed", userID)
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrRemoteDiscard):
		// committed and cleared locally
		log.Warnf("complete %s: %s", userID, err)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, "complete", err)
	}
}

func (h *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.live.discard")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	err := h.sessions.Discard(ctx, userID)
	writeDiscardResult(w, "discard", err)
}

func (h *Handler) HandleResumeCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.resume.check")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	gate := h.gates.For(userID)
	route := r.URL.Query().Get("route")
	state := gate.Check(ctx, route)
	h.writeGateState(w, gate, state)
}

func (h *Handler) HandleRouteChanged(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	gate := h.gates.For(userID)
	h.writeGateState(w, gate, gate.RouteChanged(req.Route))
}

func (h *Handler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.resume.continue")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	gate := h.gates.For(userID)
	d, err := gate.Continue()
	if err != nil {
		writeError(w, "continue", err)
		return
	}

	s, err := h.sessions.Resume(ctx, d)
	if err != nil {
		writeError(w, "continue", err)
		return
	}
	cur, _ := s.Current()
	pkg.WriteJSON(w, cur, http.StatusOK)
}

func (h *Handler) HandleRequestDelete(w http.ResponseWriter, r *http.Request) {
	gate := h.gates.For(mux.Vars(r)["userId"])
	if err := gate.RequestDelete(); err != nil {
		writeError(w, "request delete", err)
		return
	}
	h.writeGateState(w, gate, gate.State())
}

func (h *Handler) HandleCancelDelete(w http.ResponseWriter, r *http.Request) {
	gate := h.gates.For(mux.Vars(r)["userId"])
	gate.CancelDelete()
	h.writeGateState(w, gate, gate.State())
}

func (h *Handler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.resume.confirm-delete")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	defer h.gates.Release(userID)

	err := h.gates.For(userID).ConfirmDelete(ctx)
	if errors.Is(err, resume.ErrDeleteNotConfirmed) {
		writeError(w, "confirm delete", err)
		return
	}

	// the server may still hold the session the client walked away from
	if _, getErr := h.sessions.Get(userID); getErr == nil {
		if discardErr := h.sessions.Discard(ctx, userID); discardErr != nil {
			log.Warnf("confirm delete %s: discard live session: %s", userID, discardErr)
		}
	}
	writeDiscardResult(w, "confirm delete", err)
}

func (h *Handler) writeGateState(w http.ResponseWriter, gate *resume.Gate, state resume.State) {
	resp := ResumeResponse{State: state}
	if offer, ok := gate.Offer(h.now()); ok {
		resp.Offer = &offer
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func writeDiscardResult(w http.ResponseWriter, action string, err error) {
	switch {
	case err == nil:
		pkg.WriteJSON(w, DiscardResponse{Discarded: true}, http.StatusOK)
	case errors.Is(err, store.ErrRemoteDiscard):
		log.Warnf("%s: %s", action, err)
		pkg.WriteJSON(w, DiscardResponse{Discarded: true, RemoteError: err.Error()}, http.StatusOK)
	default:
		writeError(w, action, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		log.Errorf("unmarshal request body of %s: %s", r.URL.Path, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoSession):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists),
		errors.Is(err, resume.ErrNotOffered),
		errors.Is(err, resume.ErrDeleteNotConfirmed):
		status = http.StatusConflict
	case errors.Is(err, session.ErrUnknownOp),
		errors.Is(err, session.ErrInvalidField),
		errors.Is(err, session.ErrInvalidValue):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrCommit):
		status = http.StatusBadGateway
	case errors.Is(err, session.ErrShutdown):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", action, err)
	} else {
		log.Tracef("%s: %s", action, err)
	}
	http.Error(w, err.Error(), status)
}
