// Package web provides the HTTP server for go-placeholder
package web

/*
	### **Files:**
	1. **`webserver_core_routes.go`** - Server setup, middleware, route configuration and lifecycle
	2. **`web_homePage.go`** - Root page handler
*/
