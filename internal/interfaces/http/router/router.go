// Package router assembles the storefront's API and page routes on a gin
// engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router mounts API groups under /api/<version> and page groups at the
// engine root.
type Router struct {
	engine  *gin.Engine
	version string
	api     []*Group
	pages   []*Group
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the version segment of the API prefix, "v1" by default
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

// NewRouter returns a router for engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// API queues groups for the versioned API prefix
func (r *Router) API(groups ...*Group) *Router {
	r.api = append(r.api, groups...)
	return r
}

// Pages queues groups for the engine root
func (r *Router) Pages(groups ...*Group) *Router {
	r.pages = append(r.pages, groups...)
	return r
}

// Setup registers every queued group on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.version)
	for _, g := range r.api {
		g.Mount(api)
	}
	for _, g := range r.pages {
		g.Mount(&r.engine.RouterGroup)
	}
}

// Group collects routes under a path prefix with middleware of its own.
// Nothing reaches gin until Mount.
type Group struct {
	name     string
	prefix   string
	use      []gin.HandlerFunc
	routes   []route
	children []*Group
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewGroup returns an empty group
func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

// Name is the group's label
func (g *Group) Name() string { return g.name }

// Prefix is the path prefix relative to the parent
func (g *Group) Prefix() string { return g.prefix }

// Use appends middleware run before every route in the group and its
// subgroups
func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.use = append(g.use, middleware...)
	return g
}

// Handle adds a route
func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *Group) GET(path string, h ...gin.HandlerFunc) *Group    { return g.Handle(http.MethodGet, path, h...) }
func (g *Group) POST(path string, h ...gin.HandlerFunc) *Group   { return g.Handle(http.MethodPost, path, h...) }
func (g *Group) PUT(path string, h ...gin.HandlerFunc) *Group    { return g.Handle(http.MethodPut, path, h...) }
func (g *Group) PATCH(path string, h ...gin.HandlerFunc) *Group  { return g.Handle(http.MethodPatch, path, h...) }
func (g *Group) DELETE(path string, h ...gin.HandlerFunc) *Group { return g.Handle(http.MethodDelete, path, h...) }

// Sub returns a nested group mounted below g
func (g *Group) Sub(name, prefix string) *Group {
	child := NewGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

// Mount registers the group's routes and subgroups on parent
func (g *Group) Mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.use...)
	for _, rt := range g.routes {
		rg.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, child := range g.children {
		child.Mount(rg)
	}
}
