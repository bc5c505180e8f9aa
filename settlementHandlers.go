package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpadjusters/claims_backend/models"
)

type settlementRequest struct {
	Name string `json:"name"`
	models.SettlementInput
}

// calculateSettlementHandler runs the calculator without persisting anything;
// adjusters use it to iterate on a scenario before saving it.
func calculateSettlementHandler(c *gin.Context) {
	var input models.SettlementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	breakdown, err := models.CalculateSettlement(&input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func createSettlementHandler(c *gin.Context) {
	var req settlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, breakdown, err := models.CreateSettlement(c.Request.Context(), req.Name, &req.SettlementInput)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"settlement": record, "breakdown": breakdown})
}

func getSettlementHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := models.GetSettlement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listSettlementsHandler(c *gin.Context) {
	caseId, ok := intQuery(c, "case_id")
	if !ok {
		return
	}
	results, err := models.ListSettlements(c.Request.Context(), caseId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func deleteSettlementHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := models.DeleteSettlement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
