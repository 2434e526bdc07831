package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/mzd555/criteria-poc/pkg/apihelpers/middlewares"
	"github.com/mzd555/criteria-poc/pkg/criteria"
	criteriaTypes "github.com/mzd555/criteria-poc/pkg/criteria/types"
	"github.com/mzd555/criteria-poc/pkg/utils"
)

func (h *HttpEndpoints) AddCriteriaAPI(rg *gin.RouterGroup) {
	criteriaGroup := rg.Group("/criteria")

	if len(h.apiKeys) > 0 {
		criteriaGroup.Use(mw.HasValidAPIKey(h.apiKeys))
	}
	{
		criteriaGroup.POST("/extract", mw.RequirePayload(), h.extractCriteria)
		criteriaGroup.POST("/validate", mw.RequirePayload(), h.validateParticipantData)
		criteriaGroup.GET("/:studyKey", h.getCriteriaForStudy)
		criteriaGroup.DELETE("/:studyKey", h.deleteCriteriaForStudy)
		criteriaGroup.PUT("/:studyKey/:criteriaID/status", mw.RequirePayload(), h.updateRuleStatus)
	}
}

func (h *HttpEndpoints) extractCriteria(c *gin.Context) {
	var req struct {
		StudyID      string `json:"studyId"`
		CriteriaText string `json:"criteriaText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("error parsing request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "error parsing request body"})
		return
	}

	if req.StudyID == "" || req.CriteriaText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studyId and criteriaText are required"})
		return
	}
	if !utils.IsURLSafe(req.StudyID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studyId contains invalid characters"})
		return
	}

	slog.Info("extracting criteria", slog.String("studyKey", req.StudyID))

	result, err := criteria.ExtractAndStoreCriteria(req.StudyID, req.CriteriaText)
	if err != nil {
		slog.Error("error extracting and storing criteria", slog.String("studyKey", req.StudyID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error extracting and storing criteria"})
		return
	}

	// no recognized criteria is a regular outcome, not a created resource
	if result.Success {
		c.JSON(http.StatusCreated, result)
	} else {
		c.JSON(http.StatusOK, result)
	}
}

func (h *HttpEndpoints) getCriteriaForStudy(c *gin.Context) {
	studyKey := c.Param("studyKey")

	rules, err := criteria.GetCriteriaForStudy(studyKey)
	if err != nil {
		slog.Error("error getting criteria", slog.String("studyKey", studyKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error getting criteria"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"studyId":  studyKey,
		"criteria": rules,
		"count":    len(rules),
	})
}

func (h *HttpEndpoints) validateParticipantData(c *gin.Context) {
	var req struct {
		StudyID string                            `json:"studyId"`
		Data    []criteriaTypes.ParticipantRecord `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("error parsing request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "error parsing request body"})
		return
	}

	if req.StudyID == "" || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studyId and data array are required"})
		return
	}

	slog.Info("validating participant data", slog.String("studyKey", req.StudyID), slog.Int("records", len(req.Data)))

	report, err := criteria.ValidateParticipantData(req.StudyID, req.Data)
	if err != nil {
		slog.Error("error validating participant data", slog.String("studyKey", req.StudyID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error validating participant data"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *HttpEndpoints) deleteCriteriaForStudy(c *gin.Context) {
	studyKey := c.Param("studyKey")

	slog.Info("deleting criteria", slog.String("studyKey", studyKey))

	deletedCount, err := criteria.DeleteCriteriaForStudy(studyKey)
	if err != nil {
		slog.Error("error deleting criteria", slog.String("studyKey", studyKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error deleting criteria"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "criteria rules deleted for study",
		"studyId":      studyKey,
		"deletedCount": deletedCount,
	})
}

func (h *HttpEndpoints) updateRuleStatus(c *gin.Context) {
	studyKey := c.Param("studyKey")
	criteriaID := c.Param("criteriaID")

	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isActive must be a boolean value"})
		return
	}

	slog.Info("updating rule status", slog.String("studyKey", studyKey), slog.String("criteriaID", criteriaID), slog.Bool("isActive", *req.IsActive))

	updated, err := criteria.UpdateRuleStatus(studyKey, criteriaID, *req.IsActive)
	if err != nil {
		slog.Error("error updating rule status", slog.String("studyKey", studyKey), slog.String("criteriaID", criteriaID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error updating rule status"})
		return
	}

	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "rule status updated",
		"studyId":    studyKey,
		"criteriaId": criteriaID,
		"isActive":   *req.IsActive,
	})
}
