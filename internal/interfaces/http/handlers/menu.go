// internal/interfaces/http/handlers/menu.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/domain/table"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
)

// MenuHandler handles menu browsing endpoints
type MenuHandler struct {
	menu *menu.Service
	log  logrus.FieldLogger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *menu.Service, log logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		menu: menuService,
		log:  log,
	}
}

// GetMenu handles GET /menu?table=&category=
func (h *MenuHandler) GetMenu(c *gin.Context) {
	session, err := resolveTable(c, h.log)
	notice := ""
	if errors.Is(err, table.ErrMissingTable) {
		notice = err.Error()
	}

	listing, err := h.menu.Menu(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu retrieved successfully",
		"data": gin.H{
			"items":    menu.Filter(listing.Items, c.Query("category")),
			"stale":    listing.Stale,
			"table":    session.TableIdentifier,
			"category": c.DefaultQuery("category", menu.AllCategory),
		},
		"notice": notice,
	})
}

// GetCategories handles GET /categories
func (h *MenuHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    h.menu.Categories(c.Request.Context()),
	})
}

// resolveTable applies ?table= to the session and returns the current table
func resolveTable(c *gin.Context, log logrus.FieldLogger) (table.Session, error) {
	session, changed, err := table.Resolve(c.Query("table"), middleware.StoredTable(c))
	if err != nil {
		return session, err
	}

	if changed {
		if err := middleware.StoreTable(c, session.TableIdentifier); err != nil {
			log.WithError(err).Warn("Failed to remember table")
		}
	}
	return session, nil
}
