package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HomeMessage is the only body this server ever returns on "/"
const HomeMessage = "This is a Node.js project. Please use the Node Server workflow instead."

// homePage answers GET / with the fixed plain-text message
func (s *WebServer) homePage(c *gin.Context) {
	c.String(http.StatusOK, HomeMessage)
}

// homeOptions lists the methods "/" accepts
func (s *WebServer) homeOptions(c *gin.Context) {
	c.Header("Allow", "GET, HEAD, OPTIONS")
	c.Status(http.StatusOK)
}
