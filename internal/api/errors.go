package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/media"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/framecut/framecut-agent/internal/timeline"
)

var geometryErrors = []error{
	timeline.ErrNegativeStart,
	timeline.ErrInvalidDuration,
	timeline.ErrInvalidTrim,
	timeline.ErrInvalidSpeed,
	timeline.ErrInvalidOpacity,
	timeline.ErrSplitOutOfRange,
	timeline.ErrKeyframeOutOfRange,
}

var requestErrors = []error{
	timeline.ErrUnknownFiletype,
	timeline.ErrDuplicateID,
	timeline.ErrAnimationNotAllowed,
	timeline.ErrClipboardEmpty,
	keyframe.ErrTrackOutOfRange,
	keyframe.ErrNegativeTime,
	keyframe.ErrAnchorPoint,
	keyframe.ErrUnknownChannel,
	timecode.ErrInvalidMagnification,
	project.ErrNoSource,
	project.ErrBadVersion,
	media.ErrUnsupported,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func isGeometryError(err error) bool { return isAny(err, geometryErrors) }

// writeDomainError maps package errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound), errors.Is(err, project.ErrNotOpen), errors.Is(err, timeline.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case isGeometryError(err):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_GEOMETRY")
	case isAny(err, requestErrors):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}
