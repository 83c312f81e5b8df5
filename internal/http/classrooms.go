package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/service"
)

type classroomRequest struct {
	Name       string            `json:"name" binding:"required"`
	Grade      int               `json:"grade"`
	Year       int               `json:"year"`
	Notes      []noteRequest     `json:"notes"`
	Activities []activityRequest `json:"activities"`
}

type noteRequest struct {
	Date    *time.Time `json:"date"`
	Title   string     `json:"title" binding:"required"`
	Content string     `json:"content" binding:"required"`
}

type activityRequest struct {
	Date         *time.Time `json:"date"`
	Type         string     `json:"type"`
	Focus        string     `json:"focus"`
	Aim          string     `json:"aim"`
	Preparation  string     `json:"preparation" binding:"required"`
	Level        string     `json:"level"`
	Time         string     `json:"time"`
	Introduction string     `json:"introduction" binding:"required"`
	Procedure    []string   `json:"procedure"`
}

type groupRequest struct {
	Name    string               `json:"name" binding:"required"`
	Color   string               `json:"color" binding:"required"`
	Members []domain.GroupMember `json:"students"`
}

func (h *Handler) listClassrooms(c *gin.Context) {
	classrooms, err := h.classrooms.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ClassroomResponse, len(classrooms))
	for i := range classrooms {
		resp[i] = classroomToResponse(&classrooms[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createClassroom(c *gin.Context) {
	var req classroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ClassroomInput{
		Name:  req.Name,
		Grade: req.Grade,
		Year:  req.Year,
	}
	for _, n := range req.Notes {
		input.Notes = append(input.Notes, noteFromRequest(n))
	}
	for _, a := range req.Activities {
		input.Activities = append(input.Activities, activityFromRequest(a))
	}

	classroom, err := h.classrooms.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroomToResponse(classroom))
}

func (h *Handler) deleteClassroom(c *gin.Context) {
	classroom, err := h.classrooms.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "classroom deleted successfully",
		"removed": classroomToResponse(classroom),
	})
}

// replaceGroups swaps the full group set; the request body is the complete
// desired state.
func (h *Handler) replaceGroups(c *gin.Context) {
	var reqs []groupRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups := make([]domain.Group, len(reqs))
	for i, g := range reqs {
		groups[i] = domain.Group{
			Name:    g.Name,
			Color:   g.Color,
			Members: g.Members,
		}
	}

	classroom, err := h.classrooms.ReplaceGroups(c.Request.Context(), c.Param("id"), currentUserID(c), groups)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroomToResponse(classroom))
}

func (h *Handler) addNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classroom, err := h.classrooms.AddNote(c.Request.Context(), c.Param("id"), currentUserID(c), noteFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroomToResponse(classroom))
}

func (h *Handler) removeNote(c *gin.Context) {
	h.removeClassroomChild(c, h.classrooms.RemoveNote)
}

func (h *Handler) addActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classroom, err := h.classrooms.AddActivity(c.Request.Context(), c.Param("id"), currentUserID(c), activityFromRequest(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroomToResponse(classroom))
}

func (h *Handler) removeActivity(c *gin.Context) {
	h.removeClassroomChild(c, h.classrooms.RemoveActivity)
}

func (h *Handler) removeClassroomChild(c *gin.Context, remove func(ctx context.Context, id, userID string, itemID int64) (*domain.Classroom, error)) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	classroom, err := remove(c.Request.Context(), c.Param("id"), currentUserID(c), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classroomToResponse(classroom))
}

func noteFromRequest(req noteRequest) domain.Note {
	note := domain.Note{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Date != nil {
		note.Date = *req.Date
	}
	return note
}

func activityFromRequest(req activityRequest) domain.Activity {
	activity := domain.Activity{
		Type:         req.Type,
		Focus:        req.Focus,
		Aim:          req.Aim,
		Preparation:  req.Preparation,
		Level:        req.Level,
		Time:         req.Time,
		Introduction: req.Introduction,
		Procedure:    req.Procedure,
	}
	if req.Date != nil {
		activity.Date = *req.Date
	}
	return activity
}

type ClassroomResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Grade      int                `json:"grade"`
	Year       int                `json:"year"`
	Created    string             `json:"created"`
	Notes      []NoteResponse     `json:"notes"`
	Activities []ActivityResponse `json:"activities"`
	Groups     []GroupResponse    `json:"groups"`
}

type NoteResponse struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ActivityResponse struct {
	ID           int64    `json:"id"`
	Date         string   `json:"date"`
	Type         string   `json:"type"`
	Focus        string   `json:"focus"`
	Aim          string   `json:"aim"`
	Preparation  string   `json:"preparation"`
	Level        string   `json:"level"`
	Time         string   `json:"time"`
	Introduction string   `json:"introduction"`
	Procedure    []string `json:"procedure"`
}

type GroupResponse struct {
	ID      int64                `json:"id"`
	Name    string               `json:"name"`
	Color   string               `json:"color"`
	Members []domain.GroupMember `json:"students"`
}

func classroomToResponse(classroom *domain.Classroom) ClassroomResponse {
	resp := ClassroomResponse{
		ID:         classroom.ID,
		Name:       classroom.Name,
		Grade:      classroom.Grade,
		Year:       classroom.Year,
		Created:    classroom.Created.Format(time.RFC3339),
		Notes:      make([]NoteResponse, len(classroom.Notes)),
		Activities: make([]ActivityResponse, len(classroom.Activities)),
		Groups:     make([]GroupResponse, len(classroom.Groups)),
	}
	for i, n := range classroom.Notes {
		resp.Notes[i] = NoteResponse{
			ID:      n.ID,
			Date:    n.Date.Format(time.RFC3339),
			Title:   n.Title,
			Content: n.Content,
		}
	}
	for i, a := range classroom.Activities {
		resp.Activities[i] = ActivityResponse{
			ID:           a.ID,
			Date:         a.Date.Format(time.RFC3339),
			Type:         a.Type,
			Focus:        a.Focus,
			Aim:          a.Aim,
			Preparation:  a.Preparation,
			Level:        a.Level,
			Time:         a.Time,
			Introduction: a.Introduction,
			Procedure:    a.Procedure,
		}
	}
	for i, g := range classroom.Groups {
		resp.Groups[i] = GroupResponse{
			ID:      g.ID,
			Name:    g.Name,
			Color:   g.Color,
			Members: g.Members,
		}
	}
	return resp
}
