package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spigell/cv-matcher/internal/document"
	"github.com/spigell/cv-matcher/internal/recruiting"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/store"
)

// httpStatus maps service errors to response codes.
func httpStatus(err error) int {
	var (
		validation *recruiting.ValidationError
		dupResume  *recruiting.DuplicateResumeError
		dupJob     *recruiting.DuplicateJobError
		unknown    *scoring.UnknownCategoryError
		empty      *scoring.EmptyInputError
		missing    *scoring.MissingCategoryError
		invalidVal *scoring.InvalidScoreError
	)

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidID),
		errors.Is(err, document.ErrUnsupportedType),
		errors.As(err, &validation),
		errors.As(err, &dupResume),
		errors.As(err, &dupJob):
		return http.StatusBadRequest
	case errors.As(err, &unknown),
		errors.As(err, &empty),
		errors.As(err, &missing),
		errors.As(err, &invalidVal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recruiting.ErrQueueDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error as {"message": ...}. Internal errors hide their details.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)

	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
}
