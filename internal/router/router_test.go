package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/container"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
)

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistryAppliesMiddlewareToAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(gin.New())
	reg.Use(func(c *gin.Context) { c.Set("mw", "yes"); c.Next() })
	reg.Add(pingModule{})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if w.Code != http.StatusOK || w.Body.String() != "yes" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestInitModulesFromContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	container.SetConfig(&config.Config{DebugMetricsEnabled: true, ESUsersIndex: "users"})
	container.SetLogger(logger)
	container.SetUserRepo(store)
	container.SetHasher(helpers.SHA256Hasher{})

	reg := NewRegistry(gin.New())
	InitModules(reg)
	reg.RegisterAll()

	if got := reg.Modules(); len(got) != 3 || got[0] != "users" || got[1] != "health" || got[2] != "debug" {
		t.Errorf("modules = %v", got)
	}

	for _, path := range []string{"/api/users", "/api/health", "/api/debug/vars"} {
		w := httptest.NewRecorder()
		reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}
