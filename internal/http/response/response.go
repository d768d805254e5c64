// Package response builds the JSON envelopes returned by the HTTP handlers.
package response

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/password"
)

// Values of Response.Status.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

const (
	// MsgInternal is the only message exposed for unexpected failures.
	MsgInternal = "Something went wrong"
	// MsgInvalidBody answers a body that is not valid JSON.
	MsgInvalidBody = "Invalid request body"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Status      string   `json:"status" example:"success"`
	Message     string   `json:"message,omitempty" example:"Email verified successfully"`
	AccessToken string   `json:"access_token,omitempty"`
	Data        any      `json:"data,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// ErrorResponse documents failure bodies in the Swagger annotations.
type ErrorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message" example:"Invalid email or password"`
}

// Success returns a success envelope with an optional message.
func Success(msg string) Response {
	return Response{Status: StatusSuccess, Message: msg}
}

// SuccessWithData returns a success envelope carrying data.
func SuccessWithData(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// Fail returns a client error envelope.
func Fail(msg string) Response {
	return Response{Status: StatusFail, Message: msg}
}

// Error returns a server error envelope.
func Error(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// NewValidator returns a validator that also knows the password byte limit tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(password.ValidatorTag, password.ValidateBytes); err != nil {
		panic(err)
	}
	return v
}

// ValidationError lists every violated field constraint.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case password.ValidatorTag:
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %d bytes", err.Field(), password.MaxBytes))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status:  StatusFail,
		Message: "Invalid input",
		Errors:  msgs,
	}
}

// Render writes body as JSON with status.
func Render(w http.ResponseWriter, r *http.Request, status int, body Response) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// RenderFail writes a fail envelope with status.
func RenderFail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	Render(w, r, status, Fail(msg))
}

// RenderInternal writes the generic 500 answer.
func RenderInternal(w http.ResponseWriter, r *http.Request) {
	Render(w, r, http.StatusInternalServerError, Error(MsgInternal))
}
