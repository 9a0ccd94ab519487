package util

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

type formParams struct {
	Todo string `form:"todo"`
}

type uriParams struct {
	ID int64 `uri:"id"`
}

func TestFormToStruct(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	body := url.Values{"todo": {"Buy milk"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/add_todo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	params, err := FormToStruct[formParams](c)

	Expect(err).To(BeNil())
	Expect(params.Todo).To(Equal("Buy milk"))
}

func TestURIToStruct(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPatch, "/todo/7", nil)

	c.Params = gin.Params{{Key: "id", Value: "7"}}
	params, err := URIToStruct[uriParams](c)
	Expect(err).To(BeNil())
	Expect(params.ID).To(Equal(int64(7)))

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, err = URIToStruct[uriParams](c)
	Expect(err).NotTo(BeNil())
}
