package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/episteme/server/internal/domain/cases"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typePrefix = "https://episteme.app/problems/"

type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Code     string                 `json:"code,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Errors   map[string]interface{} `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithCode(code string) Option {
	return func(p *ProblemDetails) {
		p.Code = code
	}
}

func WithErrors(errs map[string]interface{}) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && status >= 500 {
		logger := zerolog.Ctx(r.Context())
		logger.Error().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	} else if err != nil && status >= 400 {
		logger := zerolog.Ctx(r.Context())
		logger.Warn().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

// WriteDomainError renders a taxonomy error with its fixed status and
// machine code. Errors outside the taxonomy fall back to a generic 500.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	kind, ok := cases.KindOf(err)
	if !ok {
		Write(w, r, http.StatusInternalServerError, typePrefix+"server-error", "Server error", err, env)
		return
	}

	var title string
	switch kind {
	case cases.KindInvalidEventPayload:
		title = "Invalid event payload"
	case cases.KindEventAppendError:
		title = "Event append failed"
	case cases.KindCaseNotFound:
		title = "Case not found"
	default:
		title = "Server error"
	}

	Write(w, r, kind.Status(), typePrefix+string(kind), title, err, env, WithCode(string(kind)))
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
