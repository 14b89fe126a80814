package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("maps error types to HTTP statuses", func() {
		Expect(internal.NewValidationError("bad", internal.ErrCodeValidationFailed).StatusCode).To(Equal(http.StatusBadRequest))
		Expect(internal.NewNotFoundError("missing", internal.ErrCodeNotFound).StatusCode).To(Equal(http.StatusNotFound))
		Expect(internal.NewConflictError("dup", internal.ErrCodeDuplicate).StatusCode).To(Equal(http.StatusConflict))
		Expect(internal.NewExternalError("telegram down", errors.New("eof")).StatusCode).To(Equal(http.StatusBadGateway))
	})

	It("keeps the cause out of the JSON body", func() {
		appErr := internal.NewInternalError("Internal server error", errors.New("pq: connection refused"))
		status, body := appErr.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("connection refused"))
		Expect(string(raw)).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
	})

	It("finds wrapped app errors by code", func() {
		wrapped := fmt.Errorf("create user: %w", internal.NewConflictError("username already exists", internal.ErrCodeDuplicate))
		Expect(internal.HasCode(wrapped, internal.ErrCodeDuplicate)).To(BeTrue())
		Expect(internal.HasCode(errors.New("plain"), internal.ErrCodeDuplicate)).To(BeFalse())
	})

	It("joins field messages", func() {
		appErr := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "name", Message: "name is required"},
				{Field: "budget", Message: "budget must be a number"},
			}})
		Expect(appErr.Error()).To(Equal("name is required"))
		Expect(appErr.GetDetailedMessage()).To(Equal("name is required; budget must be a number"))
	})
})
