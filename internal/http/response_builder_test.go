package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &core.ValidationError{Fields: map[string]string{"price": "bad"}}, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("import: %w", &core.ValidationError{}), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get item: %w", core.ErrNotFound), http.StatusNotFound},
		{"bad request", fmt.Errorf("%w: nope", errBadRequest), http.StatusBadRequest},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantFields bool
	}{
		{"validation", &core.ValidationError{Fields: map[string]string{"name": "name is required"}}, http.StatusUnprocessableEntity, core.ErrInvalidItem.Error(), true},
		{"not found", fmt.Errorf("sqlite get abc: %w", core.ErrNotFound), http.StatusNotFound, core.ErrNotFound.Error(), false},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/items/abc", nil)

			respondError(c, tt.err)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if (len(body.Fields) > 0) != tt.wantFields {
				t.Errorf("fields = %v", body.Fields)
			}
			if !c.IsAborted() {
				t.Errorf("context should be aborted")
			}
		})
	}
}
