package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travel-admin/services"
	"travel-admin/utils"
	"travel-admin/validators"
)

type TripController struct {
	Trips *services.TripService
}

func NewTripController(trips *services.TripService) *TripController {
	return &TripController{Trips: trips}
}

func tripID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, utils.BadRequest("Invalid trip id"))
		return 0, false
	}
	return uint(id), true
}

// ----------------------------------------------------
// GET /trips
// ----------------------------------------------------

func (tc *TripController) GetTrips(c *gin.Context) {
	trips, err := tc.Trips.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// ----------------------------------------------------
// GET /trips/:id
// ----------------------------------------------------

func (tc *TripController) GetTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	trip, err := tc.Trips.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ----------------------------------------------------
// POST /trips
// ----------------------------------------------------

func (tc *TripController) CreateTrip(c *gin.Context) {
	var req validators.CreateTripRequest
	if !bind(c, &req) {
		return
	}
	trip, err := tc.Trips.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// ----------------------------------------------------
// PUT /trips/:id
// ----------------------------------------------------

func (tc *TripController) UpdateTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	var req validators.UpdateTripRequest
	if !bind(c, &req) {
		return
	}
	trip, err := tc.Trips.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ----------------------------------------------------
// DELETE /trips/:id
// ----------------------------------------------------

func (tc *TripController) DeleteTrip(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	if err := tc.Trips.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Trip deleted successfully")
}
