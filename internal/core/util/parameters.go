package util

import (
	"github.com/gin-gonic/gin"
)

// FormToStruct binds urlencoded or multipart form fields into T.
func FormToStruct[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBind(&params); err != nil {
		return params, err
	}

	return params, nil
}

// URIToStruct binds path parameters into T.
func URIToStruct[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindUri(&params); err != nil {
		return params, err
	}

	return params, nil
}
