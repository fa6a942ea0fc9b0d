// server/internal/api/handlers/boq_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"construction-marketplace-api-server/internal/boq"
	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BOQHandler struct {
	DB         *mongo.Database
	S3Uploader *s3.Uploader
}

// GetProjectBOQ resolves the project's BOQ across its attachment points and
// returns the aggregated view. No BOQ gives an empty response with a note,
// not an error.
func (h *BOQHandler) GetProjectBOQ(c *gin.Context) {
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
	if err != nil {
		if errors.Is(err, boq.ErrNoBOQAttached) {
			c.JSON(http.StatusOK, gin.H{
				"projectID": projectID,
				"attached":  false,
				"message":   "No bill of quantities attached",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve bill of quantities", "details": err.Error()})
		return
	}

	if err := boq.Validate(resolved); err != nil {
		var malformed *boq.MalformedBOQError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Bill of quantities is malformed",
				"path":   malformed.Path,
				"reason": malformed.Reason,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projectID": projectID,
		"attached":  true,
		"summary":   boq.Summarize(resolved),
	})
}

// UploadDocument stores a BOQ source document (drawings, spreadsheets) in
// S3 and records its URL on the project.
func (h *BOQHandler) UploadDocument(c *gin.Context) {
	projectID := c.Param("id")
	ownerID := c.GetString("user_id")

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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("projects/%s/documents/%s%s", projectID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(context.Background(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document", "details": err.Error()})
		return
	}

	_, err = h.DB.Collection("projects").UpdateOne(context.Background(),
		bson.M{"projectID": projectID},
		bson.M{
			"$push": bson.M{"documentURLs": url},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Document uploaded but failed to record URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "url": url})
}

// UploadProposalAttachment stores a vendor's supporting document on their
// proposal.
func (h *BOQHandler) UploadProposalAttachment(c *gin.Context) {
	proposalID := c.Param("id")
	vendorID := c.GetString("user_id")

	var proposal models.Proposal
	err := h.DB.Collection("proposals").FindOne(context.Background(),
		bson.M{"proposalID": proposalID, "vendorID": vendorID}).Decode(&proposal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found or not yours"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve proposal"})
		}
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("proposals/%s/attachments/%s%s", proposalID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(context.Background(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload attachment", "details": err.Error()})
		return
	}

	_, err = h.DB.Collection("proposals").UpdateOne(context.Background(),
		bson.M{"proposalID": proposalID},
		bson.M{
			"$push": bson.M{"attachmentURLs": url},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Attachment uploaded but failed to record URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "url": url})
}
