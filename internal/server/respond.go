package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/roach88/tiebreak/internal/engine"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

// readJSON decodes exactly one JSON value from the body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		s.logger.Error("marshal response failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(js, '\n')); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{"error": message})
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.errorResponse(w, http.StatusBadRequest, err.Error())
}

func (s *Server) notFound(w http.ResponseWriter) {
	s.errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func (s *Server) notApplied(w http.ResponseWriter, op string) {
	s.errorResponse(w, http.StatusConflict, fmt.Sprintf("%s does not apply to the tournament in its current state", op))
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	s.errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// createError maps tournament creation errors to a status code.
func (s *Server) createError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoPlayers),
		errors.Is(err, engine.ErrInvalidName),
		errors.Is(err, engine.ErrInvalidPlayerName),
		errors.Is(err, engine.ErrInvalidConfig):
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.serverError(w, err)
	}
}
