package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	gorilla "github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/errors"
)

func UseCors(h http.Handler) http.Handler {
	return gorilla.CORS(gorilla.AllowedOrigins([]string{"*"}))(h)
}

func UseLogging(out io.Writer, h http.Handler) http.Handler {
	return gorilla.CombinedLoggingHandler(out, h)
}

func UseCompress(h http.Handler) http.Handler {
	return gorilla.CompressHandler(h)
}

func UseJson(h http.Handler) http.Handler {
	// Only PUT, POST, and PATCH requests are considered.
	return gorilla.ContentTypeHandler(h, "application/json")
}

// handleError is a helper function for unified HTTP error handling.
// Validation problems are the caller's fault (400), missing records are
// 404, anything else is an unhandled internal failure (500). All of them
// wear the success-boolean envelope.
func handleError(rw http.ResponseWriter, logger *log.Logger, err error) {
	if logger != nil {
		logger.WithError(err).Error("Request failed")
	}

	switch {
	case errors.IsValidationError(err):
		handleJsonResponse(rw, http.StatusBadRequest, Failure(err.Error()))
	case errors.IsNotFoundError(err):
		handleJsonResponse(rw, http.StatusNotFound, Failure(err.Error()))
	default:
		handleJsonResponse(rw, http.StatusInternalServerError, Failure(err.Error()))
	}
}

// handleJsonResponse is a helper function for unified JSON response handling.
func handleJsonResponse(rw http.ResponseWriter, status int, res interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(res)
}

func checkNonEmptyBody(r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody {
		return &errors.ValidationError{Err: fmt.Errorf("empty body")}
	}
	return nil
}

// handleMissingField answers the uniform 400 for an absent required field.
func handleMissingField(rw http.ResponseWriter, field string) {
	handleJsonResponse(rw, http.StatusBadRequest, Failure(fmt.Sprintf("%s is required", field)))
}
