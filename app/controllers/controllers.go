// Package controllers translates HTTP requests into service calls and
// service results into JSON envelopes. Controllers hold no business rules.
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/pkg/logger"
	"github.com/shashiranjanraj/emart/pkg/middleware"
	"github.com/shashiranjanraj/emart/pkg/response"
)

// respondErr writes a service error to the client. Business errors carry
// their own status; anything else is a 500 and gets logged.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var ce *services.ClientError
	if errors.As(err, &ce) {
		response.Error(w, ce.Status, ce.Message)
		return
	}
	logger.WithCtx(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
	response.Error(w, http.StatusInternalServerError, "Internal server error")
}

// authedUserID returns the authenticated user's id from the request context.
func authedUserID(r *http.Request) (primitive.ObjectID, error) {
	hexID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		return primitive.NilObjectID, &services.ClientError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		}
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, &services.ClientError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		}
	}
	return id, nil
}

// idParam reads a hex ObjectID from the named route parameter.
func idParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, &services.ClientError{
			Status:  http.StatusBadRequest,
			Message: "invalid id",
		}
	}
	return id, nil
}

// dateRange reads start/end query parameters in RFC 3339 or date-only form.
func dateRange(r *http.Request) (start, end time.Time, err error) {
	start, err = parseTime(r.URL.Query().Get("start"))
	if err != nil {
		return
	}
	end, err = parseTime(r.URL.Query().Get("end"))
	return
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &services.ClientError{
			Status:  http.StatusBadRequest,
			Message: "start and end query parameters are required",
		}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &services.ClientError{
		Status:  http.StatusBadRequest,
		Message: "dates must be RFC 3339 or YYYY-MM-DD",
	}
}
