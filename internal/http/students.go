package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/service"
)

type studentRequest struct {
	Name      string         `json:"name" binding:"required"`
	Gender    string         `json:"gender"`
	Classroom string         `json:"classroom"`
	Absences  []entryRequest `json:"absences"`
	Feedback  []entryRequest `json:"feedback"`
}

type entryRequest struct {
	Date    *time.Time `json:"date"`
	Type    string     `json:"type" binding:"required"`
	Comment string     `json:"comment" binding:"required"`
}

type studentUpdateRequest struct {
	Name      *string `json:"name"`
	Gender    *string `json:"gender"`
	Classroom *string `json:"classroom"`
}

type contactDetailRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]StudentResponse, len(students))
	for i := range students {
		resp[i] = studentToResponse(&students[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getStudent(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) createStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.students.Create(c.Request.Context(), currentUserID(c), studentInputFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) createStudents(c *gin.Context) {
	var reqs []studentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.StudentInput, len(reqs))
	for i, req := range reqs {
		inputs[i] = studentInputFromRequest(req)
	}

	saved, warnings, err := h.students.CreateMany(c.Request.Context(), currentUserID(c), inputs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	students := make([]StudentResponse, len(saved))
	for i := range saved {
		students[i] = studentToResponse(&saved[i])
	}
	resp := gin.H{"students": students}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateStudent(c *gin.Context) {
	var req studentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.students.Update(c.Request.Context(), c.Param("id"), currentUserID(c), service.StudentUpdate{
		Name:      req.Name,
		Gender:    req.Gender,
		Classroom: req.Classroom,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) deleteStudent(c *gin.Context) {
	student, err := h.students.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "student deleted successfully",
		"removed": studentToResponse(student),
	})
}

func (h *Handler) setContactDetail(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req contactDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.students.SetContactDetail(c.Request.Context(), c.Param("id"), currentUserID(c), itemID, req.Type, req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) clearContactDetail(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	student, err := h.students.ClearContactDetail(c.Request.Context(), c.Param("id"), currentUserID(c), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) addAbsence(c *gin.Context) {
	h.addEntry(c, h.students.AddAbsence)
}

func (h *Handler) removeAbsence(c *gin.Context) {
	h.removeEntry(c, h.students.RemoveAbsence)
}

func (h *Handler) addFeedback(c *gin.Context) {
	h.addEntry(c, h.students.AddFeedback)
}

func (h *Handler) removeFeedback(c *gin.Context) {
	h.removeEntry(c, h.students.RemoveFeedback)
}

func (h *Handler) addEntry(c *gin.Context, add func(ctx context.Context, id, userID string, entry domain.StudentEntry) (*domain.Student, error)) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := add(c.Request.Context(), c.Param("id"), currentUserID(c), entryFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func (h *Handler) removeEntry(c *gin.Context, remove func(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error)) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	student, err := remove(c.Request.Context(), c.Param("id"), currentUserID(c), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(student))
}

func parseItemID(c *gin.Context) (int64, bool) {
	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return itemID, true
}

func studentInputFromRequest(req studentRequest) service.StudentInput {
	input := service.StudentInput{
		Name:      req.Name,
		Gender:    req.Gender,
		Classroom: req.Classroom,
	}
	for _, e := range req.Absences {
		input.Absences = append(input.Absences, entryFromRequest(e))
	}
	for _, e := range req.Feedback {
		input.Feedback = append(input.Feedback, entryFromRequest(e))
	}
	return input
}

func entryFromRequest(req entryRequest) domain.StudentEntry {
	entry := domain.StudentEntry{
		Type:    req.Type,
		Comment: req.Comment,
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	return entry
}

type StudentResponse struct {
	ID             string                  `json:"id"`
	Classroom      string                  `json:"classroom"`
	Name           string                  `json:"name"`
	Gender         string                  `json:"gender"`
	ContactDetails []ContactDetailResponse `json:"contact_details"`
	Absences       []EntryResponse         `json:"absences"`
	Feedback       []EntryResponse         `json:"feedback"`
	CreatedAt      string                  `json:"created_at"`
	UpdatedAt      string                  `json:"updated_at"`
}

type ContactDetailResponse struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type EntryResponse struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Comment string `json:"comment"`
}

func studentToResponse(student *domain.Student) StudentResponse {
	resp := StudentResponse{
		ID:             student.ID,
		Classroom:      student.Classroom,
		Name:           student.Name,
		Gender:         student.Gender,
		ContactDetails: make([]ContactDetailResponse, len(student.ContactDetails)),
		Absences:       make([]EntryResponse, len(student.Absences)),
		Feedback:       make([]EntryResponse, len(student.Feedback)),
		CreatedAt:      student.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      student.UpdatedAt.Format(time.RFC3339),
	}
	for i, cd := range student.ContactDetails {
		resp.ContactDetails[i] = ContactDetailResponse{ID: cd.ID, Type: cd.Type, Value: cd.Value}
	}
	for i, e := range student.Absences {
		resp.Absences[i] = entryToResponse(e)
	}
	for i, e := range student.Feedback {
		resp.Feedback[i] = entryToResponse(e)
	}
	return resp
}

func entryToResponse(entry domain.StudentEntry) EntryResponse {
	return EntryResponse{
		ID:      entry.ID,
		Date:    entry.Date.Format(time.RFC3339),
		Type:    entry.Type,
		Comment: entry.Comment,
	}
}
