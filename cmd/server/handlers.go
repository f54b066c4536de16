package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"doc-assistant/internal/advisor"
	"doc-assistant/internal/app"
	"doc-assistant/internal/chat"
	"doc-assistant/internal/document"
	"doc-assistant/internal/httputil"
	"doc-assistant/internal/llm"
	"doc-assistant/internal/session"
)

const sessionCookie = "session_id"

//go:embed static/index.html
var static embed.FS

type sessionKey struct{}

type chatRequest struct {
	Question string `json:"question" validate:"max=4000"`
}

type symptomsRequest struct {
	Disease string `json:"disease" validate:"required"`
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.LLMTimeout+30*time.Second)

	r.Get("/", indexHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/diseases", diseasesHandler())

		r.Group(func(r chi.Router) {
			r.Use(withSession(deps))
			r.Get("/session", sessionHandler())
			r.Delete("/session", endSessionHandler(deps))
			r.Post("/chat", chatHandler(deps))
			r.Get("/chat/transcript", transcriptHandler())
			r.Post("/documents", uploadHandler(deps))
			r.Post("/documents/analyze", analyzeHandler(deps))
			r.Post("/symptoms", symptomsHandler(deps))
		})
	})
	return r
}

// withSession resolves the session cookie, issuing a new session when it is
// missing or expired.
func withSession(deps app.Deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = c.Value
			}
			state, created := deps.Sessions.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    state.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) *session.State {
	return r.Context().Value(sessionKey{}).(*session.State)
}

func indexHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := static.ReadFile("static/index.html")
		if err != nil {
			httputil.Fail(deps.Log, w, "page unavailable", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(page); err != nil {
			deps.Log.Warn("index write failed", "err", err)
		}
	}
}

func sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := sessionFrom(r)
		body := map[string]any{
			"transcript": state.Chat.Transcript(),
			"pending":    state.Chat.Pending(),
			"stateful":   state.Chat.Stateful(),
		}
		if doc, ok := state.Document(); ok {
			body["document"] = doc
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}

func endSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Sessions.Delete(sessionFrom(r).ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func chatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !httputil.DecodeJSON(deps.Log, w, r, &req) {
			return
		}
		state := sessionFrom(r)
		ex, err := state.Chat.Submit(r.Context(), req.Question)
		if err != nil {
			failWith(deps, w, "chat failed", err)
			return
		}
		body := map[string]any{
			"submitted":         !ex.IsZero(),
			"transcript_length": state.Chat.Len(),
		}
		if !ex.IsZero() {
			body["exchange"] = ex
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}

func transcriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"exchanges": sessionFrom(r).Chat.Transcript(),
		})
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize
	tooLarge := fmt.Sprintf("file too large (max %d bytes)", maxFileSize)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize+(1<<20) {
			httputil.Fail(deps.Log, w, tooLarge, nil, http.StatusRequestEntityTooLarge)
			return
		}
		// Leave room for the multipart envelope around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+(1<<20))

		file, header, err := r.FormFile("file")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				httputil.Fail(deps.Log, w, tooLarge, err, http.StatusRequestEntityTooLarge)
				return
			}
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, tooLarge, nil, http.StatusRequestEntityTooLarge)
			return
		}
		if _, err := document.KindFromFilename(header.Filename); err != nil {
			failWith(deps, w, "upload rejected", err)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		state := sessionFrom(r)
		doc, err := deps.Extractor.Extract(header.Filename, content)
		if err != nil {
			var de *document.Error
			if errors.As(err, &de) {
				state.ClearDocument()
			}
			failWith(deps, w, "upload rejected", err)
			return
		}
		state.SetDocument(doc)
		deps.Log.Info("document uploaded", "session_id", state.ID, "filename", doc.Filename, "kind", doc.Kind, "bytes", len(content))
		httputil.WriteJSON(w, http.StatusOK, doc)
	}
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := sessionFrom(r).Document()
		if !ok {
			httputil.Fail(deps.Log, w, "no document uploaded", nil, http.StatusBadRequest)
			return
		}
		reply, err := deps.Advisor.InterpretReport(r.Context(), doc.Text)
		if err != nil {
			failWith(deps, w, "analysis failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"reply": reply})
	}
}

func diseasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"diseases": advisor.Diseases()})
	}
}

func symptomsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req symptomsRequest
		if !httputil.DecodeJSON(deps.Log, w, r, &req) {
			return
		}
		reply, err := deps.Advisor.Symptoms(r.Context(), req.Disease)
		if err != nil {
			failWith(deps, w, "symptom lookup failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"disease": req.Disease,
			"reply":   reply,
		})
	}
}

// failWith maps domain errors to HTTP statuses. Provider failures carry the
// vendor message through to the client.
func failWith(deps app.Deps, w http.ResponseWriter, message string, err error) {
	var (
		pe *llm.ProviderError
		de *document.Error
	)
	switch {
	case errors.As(err, &pe):
		if pe.Message != "" {
			message = pe.Message
		}
		httputil.Fail(deps.Log, w, message, err, http.StatusBadGateway)
	case errors.Is(err, chat.ErrBusy):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusConflict)
	case errors.As(err, &de):
		httputil.Fail(deps.Log, w, de.Error(), err, http.StatusUnprocessableEntity)
	case errors.Is(err, document.ErrUnsupportedKind),
		errors.Is(err, advisor.ErrUnknownDisease),
		errors.Is(err, advisor.ErrEmptyDocument):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
	default:
		httputil.Fail(deps.Log, w, message, err, http.StatusInternalServerError)
	}
}
