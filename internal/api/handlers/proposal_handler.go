// server/internal/api/handlers/proposal_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"construction-marketplace-api-server/internal/boq"
	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/negotiation"
	"construction-marketplace-api-server/internal/socket"
	"construction-marketplace-api-server/internal/tender"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProposalHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type SubmitProposalRequest struct {
	ProjectID string                `json:"projectID" binding:"required"`
	BOQ       *boq.BillOfQuantities `json:"boq" binding:"required"`
	Note      string                `json:"note"`
}

// SubmitProposal lets a vendor bid on an open tender with a priced BOQ
// snapshot of their own.
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	vendorID := c.GetString("user_id")

	var req SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := boq.Validate(req.BOQ); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bill of quantities", "details": err.Error()})
		return
	}

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(), bson.M{"projectID": req.ProjectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking project"})
		return
	}

	proposals, err := h.loadProposals(context.Background(), req.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load proposals"})
		return
	}

	// The tender must actually be open; a locked or failed one rejects bids.
	decision := tender.Evaluate(&project, proposals, time.Now())
	if decision.Status != tender.StatusOpen {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "This tender is not open for proposals",
			"status": decision.Status,
		})
		return
	}

	for _, existing := range proposals {
		if existing.VendorID == vendorID && !negotiation.IsTerminal(existing.Status) {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active proposal on this project"})
			return
		}
	}

	newProposal := models.Proposal{
		ProposalID:  fmt.Sprintf("PROP-%s", strings.ToUpper(uuid.New().String()[:8])),
		ProjectID:   req.ProjectID,
		VendorID:    vendorID,
		Status:      negotiation.StatusSubmitted,
		TotalAmount: boq.GrandTotal(req.BOQ),
		BOQ:         req.BOQ,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("proposals").InsertOne(context.Background(), newProposal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create proposal"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProposal.ID = oid
	}

	h.Hub.Notify(project.OwnerID, "proposal_submitted", gin.H{
		"projectID":   newProposal.ProjectID,
		"proposalID":  newProposal.ProposalID,
		"totalAmount": newProposal.TotalAmount,
	})

	c.JSON(http.StatusCreated, newProposal)
}

// GetProposalsByProject lists a project's proposals for its owner.
func (h *ProposalHandler) GetProposalsByProject(c *gin.Context) {
	projectID := c.Param("id")
	proposals, err := h.loadProposals(context.Background(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposals"})
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// GetMyProposals lists the logged-in vendor's proposals.
func (h *ProposalHandler) GetMyProposals(c *gin.Context) {
	vendorID := c.GetString("user_id")

	cursor, err := h.DB.Collection("proposals").Find(context.Background(), bson.M{"vendorID": vendorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query proposals"})
		return
	}
	defer cursor.Close(context.Background())

	var proposals []models.Proposal
	if err = cursor.All(context.Background(), &proposals); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode proposals"})
		return
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}

	c.JSON(http.StatusOK, proposals)
}

// GetProposal returns one proposal with its aggregated totals and price
// diffs, so both sides see the negotiated and original numbers.
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	proposalID := c.Param("id")

	var proposal models.Proposal
	err := h.DB.Collection("proposals").FindOne(context.Background(), bson.M{"proposalID": proposalID}).Decode(&proposal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve proposal"})
		}
		return
	}

	summary := boq.Summarize(proposal.BOQ)
	c.JSON(http.StatusOK, gin.H{
		"proposal":   proposal,
		"boqSummary": summary,
	})
}

// StartNegotiation opens price talks on a submitted (or resubmitted)
// proposal. Owner action; no BOQ mutation.
func (h *ProposalHandler) StartNegotiation(c *gin.Context) {
	h.transition(c, negotiation.ActionStartNegotiation, nil)
}

type CounterOfferRequest struct {
	Revisions []negotiation.PriceRevision `json:"revisions" binding:"required,min=1"`
	Note      string                      `json:"note"`
}

// RecordCounterOffer writes the owner's revised prices into the proposal's
// BOQ snapshot as negotiated prices, preserving the vendor's originals.
func (h *ProposalHandler) RecordCounterOffer(c *gin.Context) {
	var req CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, negotiation.ActionCounterOffer, &req)
}

// Resubmit is the vendor's answer to a counter-offer: a fresh price overlay.
func (h *ProposalHandler) Resubmit(c *gin.Context) {
	var req CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, negotiation.ActionResubmit, &req)
}

// Accept takes the proposal and awards the project to its vendor.
func (h *ProposalHandler) Accept(c *gin.Context) {
	h.transition(c, negotiation.ActionAccept, nil)
}

// Reject turns the proposal down. Legal from any non-terminal state.
func (h *ProposalHandler) Reject(c *gin.Context) {
	h.transition(c, negotiation.ActionReject, nil)
}

// transition runs one state-machine action against the stored proposal.
// The update is a compare-and-swap on the source status, so two racing
// actors cannot both win; the loser re-reads and sees the new state.
func (h *ProposalHandler) transition(c *gin.Context, action negotiation.Action, offer *CounterOfferRequest) {
	proposalID := c.Param("id")
	actorID := c.GetString("user_id")

	proposalCollection := h.DB.Collection("proposals")

	var proposal models.Proposal
	err := proposalCollection.FindOne(context.Background(), bson.M{"proposalID": proposalID}).Decode(&proposal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve proposal"})
		}
		return
	}

	result, err := negotiation.Apply(action, proposal.Status)
	if err != nil {
		var invalid *negotiation.InvalidTransitionError
		if errors.As(err, &invalid) {
			// Surfaced, never swallowed: the UI explains the disabled action
			// with the attempted and actual states.
			c.JSON(http.StatusConflict, gin.H{
				"error":         invalid.Error(),
				"attempted":     invalid.Action,
				"currentStatus": invalid.From,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.NoOp {
		// Re-accepting an accepted proposal (or re-rejecting a rejected one)
		// reports the existing state without touching timestamps.
		c.JSON(http.StatusOK, proposal)
		return
	}

	now := time.Now()
	set := bson.M{
		"status":    result.To,
		"updatedAt": now,
	}

	if offer != nil {
		if err := negotiation.ApplyRevisions(proposal.BOQ, offer.Revisions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price revisions", "details": err.Error()})
			return
		}
		set["boq"] = proposal.BOQ
		set["totalAmount"] = boq.GrandTotal(proposal.BOQ)
		set["negotiation"] = models.NegotiationRecord{
			Actor:     actorID,
			Note:      offer.Note,
			Revisions: offer.Revisions,
			CreatedAt: now,
		}
	}

	switch result.To {
	case negotiation.StatusAccepted:
		set["acceptedAt"] = now
	case negotiation.StatusRejected:
		set["rejectedAt"] = now
	}

	// CAS on the source status: only one writer moves the proposal.
	filter := bson.M{"proposalID": proposalID, "status": result.From}
	updateResult, err := proposalCollection.UpdateOne(context.Background(), filter, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during proposal transition"})
		return
	}
	if updateResult.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Proposal was changed by someone else just now. Reload and retry."})
		return
	}

	if result.To == negotiation.StatusAccepted {
		h.award(c, &proposal)
	}

	h.notifyTransition(&proposal, action, result.To, actorID)

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"proposalID": proposalID,
		"from":       result.From,
		"to":         result.To,
	})
}

// award runs the project-side consequences of an accepted proposal: the
// winning vendor is selected and every other live proposal is rejected.
func (h *ProposalHandler) award(c *gin.Context, won *models.Proposal) {
	now := time.Now()

	_, err := h.DB.Collection("projects").UpdateOne(context.Background(),
		bson.M{"projectID": won.ProjectID},
		bson.M{"$set": bson.M{
			"selectedVendorID":    won.VendorID,
			"negotiationAccepted": true,
			"updatedAt":           now,
		}})
	if err != nil {
		log.Printf("CRITICAL: Proposal %s accepted but failed to mark project %s as awarded. Please check manually.",
			won.ProposalID, won.ProjectID)
	}

	h.Hub.Notify(won.VendorID, "project_awarded", gin.H{
		"projectID":  won.ProjectID,
		"proposalID": won.ProposalID,
	})

	// Competing proposals still in flight lose automatically.
	losersFilter := bson.M{
		"projectID":  won.ProjectID,
		"proposalID": bson.M{"$ne": won.ProposalID},
		"status": bson.M{"$nin": []negotiation.Status{
			negotiation.StatusAccepted, negotiation.StatusRejected,
		}},
	}
	losers, err := h.DB.Collection("proposals").Find(context.Background(), losersFilter)
	if err == nil {
		var losing []models.Proposal
		if err := losers.All(context.Background(), &losing); err == nil {
			for _, lost := range losing {
				h.Hub.Notify(lost.VendorID, "proposal_rejected", gin.H{
					"projectID":  lost.ProjectID,
					"proposalID": lost.ProposalID,
					"reason":     "another proposal was accepted",
				})
			}
		}
	}
	_, err = h.DB.Collection("proposals").UpdateMany(context.Background(), losersFilter,
		bson.M{"$set": bson.M{"status": negotiation.StatusRejected, "rejectedAt": now, "updatedAt": now}})
	if err != nil {
		log.Printf("CRITICAL: Failed to reject competing proposals for project %s: %v", won.ProjectID, err)
	}
}

func (h *ProposalHandler) notifyTransition(p *models.Proposal, action negotiation.Action, to negotiation.Status, actorID string) {
	event := map[negotiation.Action]string{
		negotiation.ActionStartNegotiation: "negotiation_started",
		negotiation.ActionCounterOffer:     "counter_offer",
		negotiation.ActionResubmit:         "proposal_resubmitted",
		negotiation.ActionAccept:           "proposal_accepted",
		negotiation.ActionReject:           "proposal_rejected",
	}[action]

	payload := gin.H{
		"projectID":  p.ProjectID,
		"proposalID": p.ProposalID,
		"status":     to,
	}

	// The side that did not act gets the push.
	if actorID == p.VendorID {
		var project models.Project
		if err := h.DB.Collection("projects").FindOne(context.Background(),
			bson.M{"projectID": p.ProjectID}).Decode(&project); err == nil {
			h.Hub.Notify(project.OwnerID, event, payload)
		}
		return
	}
	h.Hub.Notify(p.VendorID, event, payload)
}

func (h *ProposalHandler) loadProposals(ctx context.Context, projectID string) ([]models.Proposal, error) {
	cursor, err := h.DB.Collection("proposals").Find(ctx, bson.M{"projectID": projectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	proposals := []models.Proposal{}
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}
