// server/internal/api/handlers/payment_handler.go
package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"construction-marketplace-api-server/config"
	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentHandler consumes the external gateway's status notifications. The
// gateway creates and signs invoices on its own side; only the status enum
// it reports is read here.
type PaymentHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
	Cfg config.Config
}

type RegisterPaymentRequest struct {
	ProjectID     string  `json:"projectID" binding:"required"`
	TransactionID string  `json:"transactionID" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
}

// RegisterPayment records the pending invoice the owner started at the
// gateway for an awarded project, keyed by the gateway's transaction ID.
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	ownerID := c.GetString("user_id")

	var req RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	err := h.DB.Collection("projects").FindOne(context.Background(),
		bson.M{"projectID": req.ProjectID, "ownerID": ownerID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking project"})
		return
	}

	if project.SelectedVendorID == "" && !project.NegotiationAccepted {
		c.JSON(http.StatusConflict, gin.H{"error": "Project has not been awarded yet"})
		return
	}

	count, err := h.DB.Collection("payments").CountDocuments(context.Background(),
		bson.M{"transactionID": req.TransactionID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking payment"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment with this transaction ID already exists"})
		return
	}

	newPayment := models.Payment{
		PaymentID:     fmt.Sprintf("PAY-%s", strings.ToUpper(uuid.New().String()[:8])),
		ProjectID:     req.ProjectID,
		OwnerID:       ownerID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Status:        models.PaymentPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	result, err := h.DB.Collection("payments").InsertOne(context.Background(), newPayment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newPayment.ID = oid
	}

	c.JSON(http.StatusCreated, newPayment)
}

type PaymentNotification struct {
	TransactionID string `json:"transactionID" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=pending completed failed expired"`
	Signature     string `json:"signature" binding:"required"`
}

// HandleNotification is the gateway webhook. A completed payment flips the
// project's payment flag, which moves its displayed status from AWARDED to
// ON_GOING on the next evaluation.
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	var notif PaymentNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.verifySignature(notif) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var payment models.Payment
	err := h.DB.Collection("payments").FindOne(context.Background(),
		bson.M{"transactionID": notif.TransactionID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown transaction ID"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error looking up payment"})
		}
		return
	}

	// A completed payment is final; later duplicate or out-of-order
	// notifications must not regress it.
	if payment.Status == models.PaymentCompleted {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Payment already completed"})
		return
	}

	now := time.Now()
	_, err = h.DB.Collection("payments").UpdateOne(context.Background(),
		bson.M{"transactionID": notif.TransactionID},
		bson.M{"$set": bson.M{"status": notif.Status, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment status"})
		return
	}

	if notif.Status == models.PaymentCompleted {
		_, err = h.DB.Collection("projects").UpdateOne(context.Background(),
			bson.M{"projectID": payment.ProjectID},
			bson.M{"$set": bson.M{"paymentCompleted": true, "updatedAt": now}})
		if err != nil {
			log.Printf("CRITICAL: Payment %s completed but failed to flag project %s. Please check manually.",
				payment.PaymentID, payment.ProjectID)
		}

		var project models.Project
		if err := h.DB.Collection("projects").FindOne(context.Background(),
			bson.M{"projectID": payment.ProjectID}).Decode(&project); err == nil {
			h.Hub.Notify(project.OwnerID, "payment_completed", gin.H{
				"projectID": payment.ProjectID,
				"paymentID": payment.PaymentID,
			})
			if project.SelectedVendorID != "" {
				h.Hub.Notify(project.SelectedVendorID, "project_started", gin.H{
					"projectID": payment.ProjectID,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetPaymentStatus returns the stored gateway status for one transaction.
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	transactionID := c.Param("transactionID")

	var payment models.Payment
	err := h.DB.Collection("payments").FindOne(context.Background(),
		bson.M{"transactionID": transactionID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, payment)
}

// verifySignature checks the webhook HMAC so forged notifications cannot
// flip payment flags.
func (h *PaymentHandler) verifySignature(notif PaymentNotification) bool {
	if h.Cfg.Payment.WebhookKey == "" {
		log.Println("WARNING: payment webhook key not configured, accepting notification unverified")
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.Cfg.Payment.WebhookKey))
	mac.Write([]byte(notif.TransactionID + ":" + notif.Status))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(notif.Signature))
}
