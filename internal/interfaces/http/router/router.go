package router

import (
	"net/http"
	"strings"

	"github.com/fincore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Router mounts route groups under /api/<version>. Groups registered with
// Register run behind the guard chain; public groups do not.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	guard      []gin.HandlerFunc
	public     []*DomainGroup
	guarded    []*DomainGroup
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithGuard appends to the chain in front of every non-public route
func WithGuard(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.guard = append(r.guard, handlers...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(g *DomainGroup) *Router {
	r.guarded = append(r.guarded, g)
	return r
}

func (r *Router) RegisterPublic(g *DomainGroup) *Router {
	r.public = append(r.public, g)
	return r
}

// Setup mounts every registered group on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, g := range r.public {
		g.RegisterRoutes(api)
	}
	guarded := api.Group("", r.guard...)
	for _, g := range r.guarded {
		g.RegisterRoutes(guarded)
	}
}

// DomainGroup collects the routes of one resource family before they are
// mounted, so the whole route table can be listed and tested
type DomainGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	subgroups  []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(prefix string) *DomainGroup {
	return &DomainGroup{prefix: prefix}
}

// Use adds middleware that runs before every route of the group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers...)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers...)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers...)
}

// Read registers a GET route that requires READ_<entity>. Writes check
// their permission inside the command pipeline instead.
func (dg *DomainGroup) Read(path, entity string, handler gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, middleware.RequirePermission("READ_"+entity), handler)
}

// Group nests a group under this one's prefix
func (dg *DomainGroup) Group(prefix string) *DomainGroup {
	sub := NewDomainGroup(prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes mounts the group and its subgroups on rg
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

// Routes lists "METHOD path" for the group and its subgroups, relative to
// the mount point
func (dg *DomainGroup) Routes() []string {
	var out []string
	for _, rt := range dg.routes {
		out = append(out, rt.method+" "+dg.prefix+rt.path)
	}
	for _, sub := range dg.subgroups {
		for _, r := range sub.Routes() {
			method, path, _ := strings.Cut(r, " ")
			out = append(out, method+" "+dg.prefix+path)
		}
	}
	return out
}
