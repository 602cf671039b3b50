package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/assignments"
	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/http/handlers"
	"projecthub/internal/observability"
	"projecthub/internal/projects"
	"projecthub/internal/rbac"
	"projecthub/internal/requests"
	"projecthub/internal/roles"
	"projecthub/internal/systems"
	"projecthub/internal/users"
)

type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     *logrus.Logger
	Authn   *auth.Authenticator
	Metrics *observability.Metrics
}

func NewRouter(d Deps) *gin.Engine {
	cfg, m := d.Config, d.Metrics
	loc := cfg.Location()

	resolver := rbac.NewResolver(d.DB)
	userSvc := users.NewService(d.DB, d.Authn, d.Log, loc)
	roleSvc := roles.NewService(d.DB, d.Log)
	tierSvc := systems.NewService(d.DB, d.Log)
	projectSvc := projects.NewService(d.DB, resolver, d.Log)
	assignSvc := assignments.NewService(d.DB, resolver, d.Log, m, loc)
	requestSvc := requests.NewService(d.DB, resolver, rbac.Ranks(cfg.RequestSystemRanks...), d.Log, m, loc)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(d.Log),
		secureHeaders(cfg.IsProduction(), d.Log),
		m.Middleware(),
		auditClient(),
	)

	r.GET("/healthz", healthz(d.DB))
	r.GET("/metrics", m.Handler())

	api := r.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", handlers.Register(userSvc))
	api.POST("/auth/login", rateLimit(cfg.LoginRatePerMinute, time.Minute), handlers.Login(userSvc, cfg.IsProduction()))

	authed := api.Group("", auth.JWT(d.Authn), auth.RequireActive())
	superuser := authed.Group("", requireSuperuser(m))

	viewProjects := requireSystem("project_view", rbac.SystemRankGate(rbac.Ranks(cfg.ProjectViewSystemRanks...)), m)
	assignmentAdmin := requireSystem("assignment_admin", rbac.SystemRankGate(rbac.Ranks(cfg.AssignmentAdminSystemRanks...)), m)
	manageProject := requireProject("project_manage", rbac.ProjectRankGate(resolver, rbac.RanksUpTo(3)), m)
	readAudit := requireProject("project_audit", rbac.ProjectRankGate(resolver, rbac.Ranks(1, 2)), m)
	projectAccess := requireProject("project_access", rbac.ProjectAccessGate(resolver), m)

	// Session & profile
	authed.POST("/auth/logout", handlers.Logout(userSvc))
	authed.GET("/users/me", handlers.Me())
	authed.PATCH("/users/me", handlers.UpdateMe(userSvc))
	authed.PATCH("/users/me/password", handlers.ChangePassword(userSvc))

	// Users
	superuser.GET("/users", handlers.ListUsers(userSvc))
	superuser.POST("/users", handlers.CreateUser(userSvc))
	superuser.PATCH("/users/:id", handlers.UpdateUser(userSvc))
	superuser.PUT("/users/:id/system-tier", handlers.SetSystemTier(userSvc))

	// System tiers
	superuser.GET("/system-tiers", handlers.ListSystemTiers(tierSvc))
	superuser.GET("/system-tiers/:id", handlers.GetSystemTier(tierSvc))
	superuser.POST("/system-tiers", handlers.CreateSystemTier(tierSvc))
	superuser.PUT("/system-tiers/:id", handlers.UpdateSystemTier(tierSvc))
	superuser.DELETE("/system-tiers/:id", handlers.DeleteSystemTier(tierSvc))

	// Roles
	superuser.GET("/roles", handlers.ListRoles(roleSvc))
	superuser.GET("/roles/:id", handlers.GetRole(roleSvc))
	superuser.POST("/roles", handlers.CreateRole(roleSvc))
	superuser.PUT("/roles/:id", handlers.UpdateRole(roleSvc))
	superuser.DELETE("/roles/:id", handlers.DeleteRole(roleSvc))

	// Projects
	authed.GET("/projects", viewProjects, handlers.ListProjects(projectSvc))
	authed.GET("/projects/:project_id", viewProjects, handlers.GetProject(projectSvc))
	superuser.POST("/projects", handlers.CreateProject(projectSvc))
	authed.PUT("/projects/:project_id", manageProject, handlers.UpdateProject(projectSvc))
	authed.DELETE("/projects/:project_id", manageProject, handlers.DeleteProject(projectSvc))

	// Assignments
	authed.GET("/assignments", assignmentAdmin, handlers.ListAllAssignments(assignSvc))
	authed.GET("/projects/:project_id/assignments", projectAccess, handlers.ListAssignments(assignSvc))
	authed.POST("/projects/:project_id/assignments", projectAccess, handlers.AssignRole(assignSvc))
	authed.PUT("/projects/:project_id/assignments/:user_id/:role_id", projectAccess, handlers.ReassignRole(assignSvc))
	authed.DELETE("/projects/:project_id/assignments/:user_id/:role_id", projectAccess, handlers.RevokeRole(assignSvc))

	// Requests
	authed.GET("/requests/mine", handlers.ListMyRequests(requestSvc))
	authed.POST("/projects/:project_id/requests", handlers.CreateRequest(requestSvc))
	authed.GET("/projects/:project_id/requests", projectAccess, handlers.ListRequests(requestSvc))
	authed.GET("/projects/:project_id/requests/:request_id", projectAccess, handlers.GetRequest(requestSvc))
	authed.PUT("/projects/:project_id/requests/:request_id", projectAccess, handlers.UpdateRequestStatus(requestSvc))
	authed.DELETE("/projects/:project_id/requests/:request_id", requireSuperuser(m), handlers.DeleteRequest(requestSvc))

	// Audit Trail
	authed.GET("/projects/:project_id/audit", readAudit, handlers.ListAudit(d.DB))

	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
