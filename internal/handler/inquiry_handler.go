package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/inquirydesk/backend/internal/apperr"
	"github.com/inquirydesk/backend/internal/model"
	"github.com/inquirydesk/backend/internal/service"
)

// maxBodyBytes bounds request bodies; the largest valid submission is far smaller.
const maxBodyBytes = 64 << 10

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,20}$`)

// InquiryHandler handles the inquiry endpoints.
type InquiryHandler struct {
	svc service.InquiryService
}

// NewInquiryHandler creates an InquiryHandler with the given service.
func NewInquiryHandler(svc service.InquiryService) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Inquiry string `json:"inquiry"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type resultResponse struct {
	Success bool `json:"success"`
}

type messagesResponse struct {
	Success  bool             `json:"success"`
	Messages []*model.Inquiry `json:"messages"`
}

// List handles GET /inquiries and returns the bare array, newest first.
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	inquiries, ok := h.list(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inquiries)
}

// Messages handles GET /messages: the same rows wrapped in an envelope.
func (h *InquiryHandler) Messages(w http.ResponseWriter, r *http.Request) {
	inquiries, ok := h.list(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Success: true, Messages: inquiries})
}

func (h *InquiryHandler) list(w http.ResponseWriter, r *http.Request) ([]*model.Inquiry, bool) {
	inquiries, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if inquiries == nil {
		inquiries = []*model.Inquiry{}
	}
	return inquiries, true
}

// Create handles POST /inquiries.
// It accepts JSON or an HTML form post; the latter is redirected back to the
// landing page on success.
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	form := formMediaType(r)
	var req submitRequest
	if form != "" {
		if err := parseForm(r, form); err != nil {
			writeError(w, apperr.Invalid("invalid_form"))
			return
		}
		req = submitRequest{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Inquiry: r.PostFormValue("inquiry"),
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Invalid("invalid_json"))
		return
	}

	if err := validateSubmission(req); err != nil {
		writeError(w, err)
		return
	}

	inq := &model.Inquiry{Name: req.Name, Email: req.Email, Inquiry: req.Inquiry}
	if err := h.svc.Submit(r.Context(), inq); err != nil {
		writeError(w, err)
		return
	}

	if form != "" {
		http.Redirect(w, r, "/?submitted=1", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{
		Success: true,
		Message: "Inquiry submitted successfully",
		ID:      inq.ID,
	})
}

// UpdateName handles PATCH /inquiries/{id}. success=false means no such row.
func (h *InquiryHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		writeError(w, err)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req renameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, apperr.Invalid("invalid_json"))
		return
	}
	if err := validateName(req.Name); err != nil {
		writeError(w, err)
		return
	}

	ok, err := h.svc.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: ok})
}

// Delete handles DELETE /inquiries/{id}. success=false means no such row.
func (h *InquiryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		writeError(w, err)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ok, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: ok})
}

// formMediaType returns the form media type of r, or "" for anything else.
func formMediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return mt
	}
	return ""
}

// parseForm fills r.PostForm; ParseForm alone rejects multipart bodies.
func parseForm(r *http.Request, mt string) error {
	if mt == "multipart/form-data" {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid_id")
	}
	return id, nil
}

func validateSubmission(req submitRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if blank(req.Email) {
		return apperr.Invalid("email_required")
	}
	if blank(req.Inquiry) {
		return apperr.Invalid("inquiry_required")
	}
	if utf8.RuneCountInString(req.Email) > model.MaxEmailLength {
		return apperr.Invalid("email_too_long")
	}
	if !emailPattern.MatchString(req.Email) {
		return apperr.Invalid("invalid_email")
	}
	if utf8.RuneCountInString(req.Inquiry) > model.MaxInquiryLength {
		return apperr.Invalid("inquiry_too_long")
	}
	return nil
}

func validateName(name string) error {
	if blank(name) {
		return apperr.Invalid("name_required")
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return apperr.Invalid("name_too_long")
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
