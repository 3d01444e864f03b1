// Package request holds what every handler does the same way: decoding and
// validating bodies, reading path ids and mapping domain errors to statuses.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/allocation"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/planner"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var ErrBadRequest = errors.New("bad request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSON decodes the body into dest and runs its validate tags.
func DecodeJSON(r *http.Request, dest any) error {
	defer io.Copy(io.Discard, r.Body)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid JSON: %s", ErrBadRequest, err.Error())
	}

	if err := validate.Struct(dest); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateSlice runs the validate tags of every element.
func ValidateSlice[T any](items []T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return fmt.Errorf("item %d: %w", i, validationError(err))
		}
	}
	return nil
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Namespace(), message(fe)))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}

// TrayID reads the {id} path parameter.
func TrayID(r *http.Request) (int64, error) {
	return PathID(r, "id")
}

func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return id, nil
}

// Status maps an error to the HTTP status and the message shown to the client.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, allocation.ErrInvalidInput):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, storage.ErrTrayNotFound),
		errors.Is(err, storage.ErrLineItemNotFound),
		errors.Is(err, storage.ErrTechnicianNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, storage.ErrStalePlan), errors.Is(err, storage.ErrTechnicianExists):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, allocation.ErrInputImbalance),
		errors.Is(err, planner.ErrDegenerateMove),
		errors.Is(err, planner.ErrRoundingDrift):
		return http.StatusUnprocessableEntity, "plan is inconsistent"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// rootMessage drops the op prefixes so clients see only the domain message.
func rootMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{planner.ErrInvalidRequest, allocation.ErrInvalidInput} {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// Fail logs the error under op and writes the mapped status. Server errors are
// logged at error level, client errors at info.
func Fail(log *slog.Logger, w http.ResponseWriter, op string, err error) {
	status, msg := Status(err)
	attrs := []any{slog.String("op", op), slog.String("error", err.Error()), slog.Int("status", status)}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", attrs...)
	} else {
		log.Info("request rejected", attrs...)
	}
	http.Error(w, msg, status)
}
