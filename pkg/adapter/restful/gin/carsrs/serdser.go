package carsrs

import (
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type rawCreateCarReq struct {
	Name        string  `json:"name" binding:"required,max=100"`
	CarModel    string  `json:"carModel" binding:"required,max=100"`
	Year        int     `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	Color       string  `json:"color" binding:"omitempty,max=50"`
	PricePerDay float64 `json:"pricePerDay" binding:"required,gt=0"`
}

func (rs *resource) DserCreateCarReq(c *gin.Context) *model.Car {
	req := &rawCreateCarReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Car{
		Name:        req.Name,
		CarModel:    req.CarModel,
		Year:        req.Year,
		Color:       req.Color,
		PricePerDay: req.PricePerDay,
	}
}
