package handlers

import (
	"net/http"

	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

type NoteHandlers struct {
	noteService services.NoteService
}

func NewNoteHandlers(noteService services.NoteService) *NoteHandlers {
	return &NoteHandlers{noteService: noteService}
}

// NoteFields documents the body accepted by Create and Update.
type NoteFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create godoc
// @Summary   Create a note
// @Tags      notes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      NoteFields  false  "Note fields"
// @Success   201  {object}  models.Note
// @Failure   402  {object}  common.ErrorResponse
// @Router    /notes [post]
func (h *NoteHandlers) Create(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	fields, err := decodeStringFields(c, "title", "content")
	if err != nil {
		return err
	}

	note, err := h.noteService.Create(c.Request().Context(), identity, optional(fields, "title"), optional(fields, "content"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

// List godoc
// @Summary   List the tenant's notes
// @Tags      notes
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  models.Note
// @Router    /notes [get]
func (h *NoteHandlers) List(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	notes, err := h.noteService.List(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

// Get godoc
// @Summary   Get a note
// @Tags      notes
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Note ID"
// @Success   200  {object}  models.Note
// @Failure   404  {object}  common.ErrorResponse
// @Router    /notes/{id} [get]
func (h *NoteHandlers) Get(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// Update godoc
// @Summary      Update a note
// @Description  Only string-valued title and content fields are applied.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true   "Note ID"
// @Param        body  body      NoteFields  false  "Note fields"
// @Success      200  {object}  models.Note
// @Failure      404  {object}  common.ErrorResponse
// @Router       /notes/{id} [put]
func (h *NoteHandlers) Update(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	fields, err := decodeStringFields(c, "title", "content")
	if err != nil {
		return err
	}

	patch := models.NotePatch{Title: optional(fields, "title"), Content: optional(fields, "content")}
	note, err := h.noteService.Update(c.Request().Context(), identity, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// Delete godoc
// @Summary   Delete a note
// @Tags      notes
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Note ID"
// @Success   200  {object}  models.Note
// @Failure   404  {object}  common.ErrorResponse
// @Router    /notes/{id} [delete]
func (h *NoteHandlers) Delete(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.Delete(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}
