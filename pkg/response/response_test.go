package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hivcare-booking/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(apperror.NotFound("booking not found")))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperror.Forbidden("no")))
	assert.Equal(t, http.StatusConflict, StatusFor(apperror.Conflict("taken")))
	assert.Equal(t, http.StatusConflict, StatusFor(apperror.DuplicateResult("dup")))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperror.MissingStatus("status")))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperror.IncompleteArvSubmission([]string{"regimen_id"})))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperror.ValidationField("date", "required")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("connection reset")))
}

func TestFromErrorDomain(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, apperror.IncompleteArvSubmission([]string{"re_examination_date"}), "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "re_examination_date")
	assert.Equal(t, map[string]interface{}{"re_examination_date": "re_examination_date is required"}, body.Error)
}

func TestFromErrorHidesInfrastructureDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("pq: password authentication failed"), "Failed to create booking")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "Failed to create booking")
}
