package rentalsrs

import (
	"strconv"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type rawCreateRentalReq struct {
	UserID          int64  `json:"userId" binding:"omitempty,gt=0"`
	CarID           int64  `json:"carId" binding:"required,gt=0"`
	StartDate       string `json:"startDate" binding:"required"`
	EndDate         string `json:"endDate" binding:"required"`
	PickupLocation  string `json:"pickupLocation" binding:"omitempty,max=255"`
	DropoffLocation string `json:"dropoffLocation" binding:"omitempty,max=255"`
}

type rawAvailabilityReq struct {
	CarID     int64  `form:"carId" binding:"required,gt=0"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

type availability struct {
	Available bool `json:"available"`
}

// parsePeriod parses the start and end dates and ensures that the
// period is not empty, reporting problems in errs.
func parsePeriod(errs *serdser.Errors, start, end string) model.Period {
	var p model.Period
	var err error
	p.Start, err = serdser.ParseTime(start)
	startOK := serdser.Assert(errs, err == nil, "startDate", errMsg(err))
	p.End, err = serdser.ParseTime(end)
	endOK := serdser.Assert(errs, err == nil, "endDate", errMsg(err))
	if startOK && endOK {
		serdser.Assert(errs, p.Validate() == nil,
			"endDate", model.ErrEmptyPeriod.Error(),
		)
	}
	return p
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// DserCreateRentalReq deserializes the booking request body. The
// userId defaults to the actor's own identifier.
func (rs *resource) DserCreateRentalReq(
	c *gin.Context, actor model.Actor,
) *rentaluc.CreateParams {
	req := &rawCreateRentalReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs serdser.Errors
	p := &rentaluc.CreateParams{
		UserID:          req.UserID,
		CarID:           req.CarID,
		Period:          parsePeriod(&errs, req.StartDate, req.EndDate),
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
	}
	if p.UserID == 0 {
		p.UserID = actor.UserID
		serdser.Assert(&errs, p.UserID != 0,
			"userId", "is required for service tokens",
		)
	}
	if serdser.Invalid(c, errs) {
		return nil
	}
	return p
}

// DserAvailabilityReq deserializes the availability query. It returns
// a zero carID if a response is already written.
func (rs *resource) DserAvailabilityReq(c *gin.Context) (int64, model.Period) {
	req := &rawAvailabilityReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return 0, model.Period{}
	}
	var errs serdser.Errors
	p := parsePeriod(&errs, req.StartDate, req.EndDate)
	if serdser.Invalid(c, errs) {
		return 0, model.Period{}
	}
	return req.CarID, p
}

// DserUserQuery returns the optional userId query param, defaulting
// to the actor's own identifier. It returns zero if a response is
// already written.
func (rs *resource) DserUserQuery(c *gin.Context, actor model.Actor) int64 {
	s, ok := c.GetQuery("userId")
	if !ok {
		if actor.UserID == 0 {
			serdser.Invalid(c, serdser.Errors{
				"userId": {"is required for service tokens"},
			})
		}
		return actor.UserID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		serdser.Invalid(c, serdser.Errors{
			"userId": {"must be a positive integer"},
		})
		return 0
	}
	return id
}
