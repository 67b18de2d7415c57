package httpserver

import (
	"bytes"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appsub "github.com/bryanwahyu/offerguard/internal/application/submission"
	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	domain "github.com/bryanwahyu/offerguard/internal/domain/submission"
	"github.com/bryanwahyu/offerguard/internal/middleware"
	"github.com/bryanwahyu/offerguard/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// multipart parts beyond this spill to temp files
const maxFormMemory = 8 << 20

// Options configures the host surface
type Options struct {
	AllowedOrigins    []string
	TrustedProxies    []netip.Prefix
	MaxUploadBytes    int64
	AllowedExtensions []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	ScoringBaseURL    string
	HealthCheckers    map[string]middleware.HealthChecker
}

type Router struct {
	svc  *appsub.Service
	opts Options
}

// formPage is what form.html renders; the inputs survive an error
type formPage struct {
	Error          string
	Text           string
	CompanyEmail   string
	CompanyWebsite string
}

func NewRouter(svc *appsub.Service, opts Options) http.Handler {
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 10
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	r := &Router{svc: svc, opts: opts}
	mux := chi.NewRouter()

	mux.Use(middleware.TrustedRealIP(opts.TrustedProxies))
	mux.Use(middleware.BearerToken)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler(opts.ScoringBaseURL))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.handleForm)
	mux.With(middleware.RateLimitMiddleware(opts.RateLimitRequests, opts.RateLimitWindow)).
		Post("/analyze", r.handleAnalyze)
	mux.Get("/results/{id}", r.handleResult)
	mux.Get("/attempts/latest", r.wrap(r.handleLatest))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, attempts.ErrOwnerRequired) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			log.Printf("path=%s error=%q", req.URL.Path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// GET /
func (r *Router) handleForm(w http.ResponseWriter, req *http.Request) {
	r.page(w, http.StatusOK, "form.html", formPage{})
}

// POST /analyze
// multipart/form-data: text, file, company_email, company_website
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) {
	if r.opts.MaxUploadBytes > 0 {
		// room for the text fields and multipart framing
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes+maxFormMemory)
	}
	if err := req.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			r.page(w, http.StatusRequestEntityTooLarge, "form.html", formPage{Error: "The uploaded file is too large."})
			return
		}
		r.page(w, http.StatusBadRequest, "form.html", formPage{Error: "Could not read the submitted form."})
		return
	}
	if req.MultipartForm != nil {
		defer req.MultipartForm.RemoveAll()
	}

	form := domain.FormValues{
		Text:           req.FormValue("text"),
		CompanyEmail:   req.FormValue("company_email"),
		CompanyWebsite: req.FormValue("company_website"),
	}
	page := formPage{Text: form.Text, CompanyEmail: form.CompanyEmail, CompanyWebsite: form.CompanyWebsite}

	upload, problem := r.readUpload(req)
	if problem != "" {
		page.Error = problem
		r.page(w, http.StatusBadRequest, "form.html", page)
		return
	}
	form.File = upload

	out, err := r.svc.Submit(req.Context(), appsub.Request{
		Key:   middleware.ClientKey(req),
		Token: middleware.TokenFromContext(req.Context()),
		Form:  form,
	}, &middleware.PendingTrigger{})
	if err != nil {
		if kind := domain.Kind(err); kind != "no_input" && kind != "in_flight" {
			middleware.SubmissionFailed(kind)
		}
		page.Error = domain.UserMessage(err)
		r.page(w, domain.HTTPStatus(err), "form.html", page)
		return
	}

	if out.TextIgnored {
		log.Printf("submission attempt=%s text_ignored=true", out.AttemptID)
	}
	r.page(w, http.StatusOK, "result.html", render.Render(out.Result))
}

// readUpload returns nil when the browser sent no file. A non-empty
// problem is shown on the form as-is.
func (r *Router) readUpload(req *http.Request) (upload *domain.Upload, problem string) {
	f, hdr, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, ""
	}
	if err != nil {
		return nil, "Could not read the uploaded file."
	}
	defer f.Close()

	name, problem := r.checkUpload(hdr.Filename, hdr.Size)
	if problem != "" {
		return nil, problem
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "Could not read the uploaded file."
	}
	return &domain.Upload{Filename: name, Content: content}, ""
}

// checkUpload validates the name as the browser sent it, then returns the
// sanitized form that is passed on.
func (r *Router) checkUpload(raw string, size int64) (name, problem string) {
	if err := middleware.ValidateUpload(raw, size, r.opts.MaxUploadBytes, r.opts.AllowedExtensions); err != nil {
		return "", "Unsupported file: " + err.Error()
	}
	return middleware.SanitizeString(raw), ""
}

// GET /results/{id}
func (r *Router) handleResult(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	res, err := r.svc.Fetch(req.Context(), id, middleware.TokenFromContext(req.Context()))
	if err != nil {
		status := domain.HTTPStatus(err)
		if domain.Kind(err) == "internal" {
			status = http.StatusBadRequest
		}
		r.page(w, status, "form.html", formPage{Error: domain.UserMessage(err)})
		return
	}
	r.page(w, http.StatusOK, "result.html", render.Render(res))
}

// GET /attempts/latest?limit=
// only the caller's own attempts; 401 without a token
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	token := middleware.TokenFromContext(req.Context())
	list, err := r.svc.Latest(req.Context(), token, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// page renders into a buffer first so a template error never leaves half a page
func (r *Router) page(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("template=%s error=%q", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
