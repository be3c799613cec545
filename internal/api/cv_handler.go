package api

import (
	"errors"
	"net/http"

	"resume-skills/internal/cv"

	"github.com/rotisserie/eris"
)

// ExtractSkillsResponse is the success envelope.
type ExtractSkillsResponse struct {
	ExtractedSkills []string `json:"extractedSkills"`
}

// ExtractSkillsHandler handles résumé uploads
// @Summary Extract skills from a résumé
// @Description Upload a résumé (PDF or DOCX) and extract skills by vocabulary matching or via the LLM
// @Tags skills
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Résumé file (PDF or DOCX)"
// @Param mode query string false "Extraction mode" Enums(deterministic, llm) default(deterministic)
// @Success 200 {object} ExtractSkillsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/skills/extract [post]
func (a *API) ExtractSkillsHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := cv.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, err)
		return
	}
	a.extract(w, r, mode)
}

// DeterministicHandler is the vocabulary-matching route
// @Summary Extract skills by vocabulary matching
// @Tags skills
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Résumé file (PDF or DOCX)"
// @Success 200 {object} ExtractSkillsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /extract-skills [post]
func (a *API) DeterministicHandler(w http.ResponseWriter, r *http.Request) {
	a.extract(w, r, cv.ModeDeterministic)
}

// LLMHandler is the LLM extraction route
// @Summary Extract skills with the LLM
// @Tags skills
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Résumé file (PDF or DOCX)"
// @Success 200 {object} ExtractSkillsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /extract-skills-llm [post]
func (a *API) LLMHandler(w http.ResponseWriter, r *http.Request) {
	a.extract(w, r, cv.ModeLLM)
}

func (a *API) extract(w http.ResponseWriter, r *http.Request, mode cv.Mode) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)

	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, eris.Wrap(err, "file too large"))
			return
		}
		writeError(w, eris.Wrap(cv.ErrNoFileProvided, err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, cv.ErrNoFileProvided)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeError(w, cv.ErrNoFileProvided)
		return
	}

	res, err := a.extractor.Handle(r.Context(), cv.Upload{
		Filename: header.Filename,
		Content:  file,
	}, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractSkillsResponse{ExtractedSkills: res.Skills})
}
