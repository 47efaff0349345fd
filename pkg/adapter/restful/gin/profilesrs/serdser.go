package profilesrs

import (
	"strconv"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type rawProfileReq struct {
	UserID    int64  `json:"userId" binding:"omitempty,gt=0"`
	FullName  string `json:"fullName" binding:"required,min=3,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Address   string `json:"address" binding:"omitempty,max=255"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,url"`
}

// DserProfileReq deserializes the profile body. The userId defaults
// to the actor's own identifier.
func (rs *resource) DserProfileReq(
	c *gin.Context, actor model.Actor,
) *model.UserProfile {
	req := &rawProfileReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	if req.UserID == 0 {
		req.UserID = actor.UserID
	}
	if serdser.Invalid(c, missingUser(req.UserID)) {
		return nil
	}
	return &model.UserProfile{
		UserID:    req.UserID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		AvatarURL: req.AvatarURL,
	}
}

func missingUser(userID int64) serdser.Errors {
	if userID != 0 {
		return nil
	}
	return serdser.Errors{"userId": {"is required for service tokens"}}
}

// DserUserQuery returns the optional userId query param, defaulting
// to the actor's own identifier. It returns zero if a response is
// already written.
func (rs *resource) DserUserQuery(c *gin.Context, actor model.Actor) int64 {
	s, ok := c.GetQuery("userId")
	if !ok {
		serdser.Invalid(c, missingUser(actor.UserID))
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

// DserHistoryReq deserializes a rental history entry and its userId
// path param. When withRentalID is true, the rentalId path param must
// match the entry. It returns a zero userID if a response is already
// written.
func (rs *resource) DserHistoryReq(
	c *gin.Context, withRentalID bool,
) (int64, *model.RentalSnapshot) {
	userID, ok := serdser.ParseID(c, "userId")
	if !ok {
		return 0, nil
	}
	var rentalID int64
	if withRentalID {
		if rentalID, ok = serdser.ParseID(c, "rentalId"); !ok {
			return 0, nil
		}
	}
	s := &model.RentalSnapshot{}
	if ok := serdser.Bind(c, s, binding.JSON); !ok {
		return 0, nil
	}
	var errs serdser.Errors
	serdser.Assert(&errs, s.RentalID > 0, "rentalId", "must be a positive integer")
	serdser.Assert(&errs, s.CarID > 0, "carId", "must be a positive integer")
	serdser.Assert(&errs, s.Status.Validate() == nil, "status", "is required")
	serdser.Assert(&errs, !withRentalID || s.RentalID == rentalID,
		"rentalId", "must match the path param",
	)
	if serdser.Invalid(c, errs) {
		return 0, nil
	}
	return userID, s
}
