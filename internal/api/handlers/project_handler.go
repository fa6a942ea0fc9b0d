// server/internal/api/handlers/project_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"construction-marketplace-api-server/internal/boq"
	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/tender"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProjectHandler struct {
	DB *mongo.Database
}

type CreateProjectRequest struct {
	Title             string                `json:"title" binding:"required"`
	Description       string                `json:"description" binding:"required"`
	Address           string                `json:"address"`
	ProjectType       string                `json:"projectType" binding:"required,oneof=new_build renovation interior"`
	ProcurementMethod string                `json:"procurementMethod" binding:"required,oneof=direct_appointment tender contract negotiation"`
	TenderDuration    string                `json:"tenderDuration"`
	BOQ               *boq.BillOfQuantities `json:"boq"`
}

// CreateProject creates a draft project for the logged-in owner.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.BOQ != nil {
		if err := boq.Validate(req.BOQ); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill of quantities", "details": err.Error()})
			return
		}
	}

	newProject := models.Project{
		ProjectID:         fmt.Sprintf("PRJ-%s", strings.ToUpper(uuid.New().String()[:8])),
		OwnerID:           c.GetString("user_id"),
		Title:             req.Title,
		Description:       req.Description,
		Address:           req.Address,
		ProjectType:       req.ProjectType,
		ProcurementMethod: req.ProcurementMethod,
		TenderDuration:    req.TenderDuration,
		ModerationStatus:  models.ModerationDraft,
		BOQ:               req.BOQ,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	result, err := h.DB.Collection("projects").InsertOne(context.Background(), newProject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProject.ID = oid
	}

	c.JSON(http.StatusCreated, newProject)
}

type UpdateProjectRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Address        string                `json:"address"`
	TenderDuration string                `json:"tenderDuration"`
	BOQ            *boq.BillOfQuantities `json:"boq"`
}

// UpdateProject edits a project still in the owner's hands (draft or sent
// back for revision).
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID := c.Param("id")
	ownerID := c.GetString("user_id")

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.BOQ != nil {
		if err := boq.Validate(req.BOQ); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill of quantities", "details": err.Error()})
			return
		}
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Address != "" {
		update["address"] = req.Address
	}
	if req.TenderDuration != "" {
		update["tenderDuration"] = req.TenderDuration
	}
	if req.BOQ != nil {
		update["boq"] = req.BOQ
	}

	// Only editable while the moderation gate is open for the owner.
	filter := bson.M{
		"projectID": projectID,
		"ownerID":   ownerID,
		"moderationStatus": bson.M{"$in": []string{
			models.ModerationDraft, models.ModerationRejected, models.ModerationRevisionRequired,
		}},
	}

	result, err := h.DB.Collection("projects").UpdateOne(context.Background(), filter, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Project not found, not yours, or no longer editable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "projectID": projectID})
}

// SubmitForReview moves a draft (or revision) into the admin moderation queue.
func (h *ProjectHandler) SubmitForReview(c *gin.Context) {
	projectID := c.Param("id")
	ownerID := c.GetString("user_id")

	filter := bson.M{
		"projectID": projectID,
		"ownerID":   ownerID,
		"moderationStatus": bson.M{"$in": []string{
			models.ModerationDraft, models.ModerationRejected, models.ModerationRevisionRequired,
		}},
	}
	update := bson.M{"$set": bson.M{
		"moderationStatus": models.ModerationPending,
		"updatedAt":        time.Now(),
	}}

	result, err := h.DB.Collection("projects").UpdateOne(context.Background(), filter, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Project not found, not yours, or not in a submittable state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Project submitted for review", "projectID": projectID})
}

// projectView is the owner-facing read model: document plus everything the
// status engine and aggregation engine derive from it.
type projectView struct {
	models.Project
	Tender     tender.Decision `json:"tender"`
	BOQSummary *boq.Summary    `json:"boqSummary,omitempty"`
	Milestones []boq.Milestone `json:"milestones"`
}

func (h *ProjectHandler) buildView(ctx context.Context, project models.Project) (projectView, error) {
	proposals, err := h.loadProposals(ctx, project.ProjectID)
	if err != nil {
		return projectView{}, err
	}

	view := projectView{
		Project: project,
		Tender:  tender.Evaluate(&project, proposals, time.Now()),
	}

	resolved, err := project.ResolveBOQ()
	switch {
	case err == nil:
		summary := boq.Summarize(resolved)
		view.BOQSummary = &summary
		view.Milestones = boq.Milestones(resolved, project.ProjectType)
	case errors.Is(err, boq.ErrNoBOQAttached):
		// Not an error to the caller; default milestones stand in.
		view.Milestones = boq.Milestones(nil, project.ProjectType)
	default:
		return projectView{}, err
	}

	return view, nil
}

func (h *ProjectHandler) loadProposals(ctx context.Context, projectID string) ([]models.Proposal, error) {
	cursor, err := h.DB.Collection("proposals").Find(ctx, bson.M{"projectID": projectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var proposals []models.Proposal
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// GetProject returns one project with its computed tender status, BOQ
// totals, and milestones.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID := c.Param("id")

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	view, err := h.buildView(context.Background(), project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build project view", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetMyProjects lists the owner's projects with their computed statuses.
func (h *ProjectHandler) GetMyProjects(c *gin.Context) {
	ownerID := c.GetString("user_id")

	cursor, err := h.DB.Collection("projects").Find(context.Background(), bson.M{"ownerID": ownerID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query projects"})
		return
	}
	defer cursor.Close(context.Background())

	var projects []models.Project
	if err = cursor.All(context.Background(), &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode projects"})
		return
	}

	views := []projectView{}
	for _, project := range projects {
		view, err := h.buildView(context.Background(), project)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build project view", "details": err.Error()})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// ListOpenTenders lets vendors browse tenders that are currently open (or
// locked, shown read-only).
func (h *ProjectHandler) ListOpenTenders(c *gin.Context) {
	filter := bson.M{
		"moderationStatus":  models.ModerationApproved,
		"procurementMethod": models.ProcurementTender,
	}

	cursor, err := h.DB.Collection("projects").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tenders"})
		return
	}
	defer cursor.Close(context.Background())

	var projects []models.Project
	if err = cursor.All(context.Background(), &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode tenders"})
		return
	}

	open := []projectView{}
	for _, project := range projects {
		view, err := h.buildView(context.Background(), project)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build tender view", "details": err.Error()})
			return
		}
		if view.Tender.Status == tender.StatusOpen || view.Tender.Status == tender.StatusLocked {
			open = append(open, view)
		}
	}

	c.JSON(http.StatusOK, open)
}

// GetProjectMilestones returns the milestone list derived from the BOQ
// stages, or the defaults for the project type.
func (h *ProjectHandler) GetProjectMilestones(c *gin.Context) {
	projectID := c.Param("id")

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	resolved, err := project.ResolveBOQ()
	if err != nil && !errors.Is(err, boq.ErrNoBOQAttached) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve bill of quantities", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projectID":  project.ProjectID,
		"milestones": boq.Milestones(resolved, project.ProjectType),
	})
}

type ReopenTenderRequest struct {
	TenderDuration string `json:"tenderDuration" binding:"required"`
}

// ReopenTender restarts the clock of a failed tender with a fresh duration.
func (h *ProjectHandler) ReopenTender(c *gin.Context) {
	projectID := c.Param("id")
	ownerID := c.GetString("user_id")

	var req ReopenTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(),
		bson.M{"projectID": projectID, "ownerID": ownerID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not yours"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	proposals, err := h.loadProposals(context.Background(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load proposals"})
		return
	}

	decision := tender.Evaluate(&project, proposals, time.Now())
	if decision.Status != tender.StatusFailed {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Only a failed tender can be reopened",
			"status": decision.Status,
		})
		return
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"tenderDuration": req.TenderDuration,
		"tenderStartAt":  now,
		"updatedAt":      now,
	}}
	if _, err := h.DB.Collection("projects").UpdateOne(context.Background(),
		bson.M{"projectID": projectID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reopen tender"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Tender reopened", "projectID": projectID})
}

// CompleteProject lets the owner close out an on-going project.
func (h *ProjectHandler) CompleteProject(c *gin.Context) {
	projectID := c.Param("id")
	ownerID := c.GetString("user_id")

	now := time.Now()
	filter := bson.M{
		"projectID":        projectID,
		"ownerID":          ownerID,
		"paymentCompleted": true,
		"completedAt":      bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"completedAt": now,
		"status":      string(tender.StatusCompleted),
		"updatedAt":   now,
	}}

	result, err := h.DB.Collection("projects").UpdateOne(context.Background(), filter, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Project not found, not yours, or not in an on-going state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Project completed", "projectID": projectID})
}

// ListPendingProjects is the admin moderation queue.
func (h *ProjectHandler) ListPendingProjects(c *gin.Context) {
	filter := bson.M{"moderationStatus": bson.M{"$in": []string{
		models.ModerationPending, models.ModerationUnderReview,
	}}}

	cursor, err := h.DB.Collection("projects").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query pending projects"})
		return
	}
	defer cursor.Close(context.Background())

	var projects []models.Project
	if err = cursor.All(context.Background(), &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode projects"})
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	c.JSON(http.StatusOK, projects)
}

type ModerateProjectRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved revision_required rejected"`
	Note     string `json:"note"`
}

// ModerateProject records the admin's moderation verdict. Approving a
// tender project also starts its tender clock.
func (h *ProjectHandler) ModerateProject(c *gin.Context) {
	projectID := c.Param("id")

	var req ModerateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	set := bson.M{
		"moderationStatus": req.Decision,
		"moderationNote":   req.Note,
		"updatedAt":        now,
	}
	if req.Decision == models.ModerationApproved {
		set["tenderStartAt"] = now
	}

	// Only projects actually waiting on moderation can be decided.
	filter := bson.M{
		"projectID": projectID,
		"moderationStatus": bson.M{"$in": []string{
			models.ModerationPending, models.ModerationUnderReview,
		}},
	}

	result, err := h.DB.Collection("projects").UpdateOne(context.Background(), filter, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to moderate project"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Project not found or not awaiting moderation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "projectID": projectID, "decision": req.Decision})
}
