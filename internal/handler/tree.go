package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"silsilah_go/internal/family"
	"silsilah_go/internal/middleware"
	"silsilah_go/internal/service"
)

// TreeReader 家谱树查询
type TreeReader interface {
	Tree(ctx context.Context, baniID string, viewer service.Viewer, q service.TreeQuery) (*service.TreeResult, error)
	Overview(ctx context.Context, baniID string) (*service.Overview, error)
	Generation(ctx context.Context, baniID string, viewer service.Viewer, gen int, parentID string, page, size int) (*family.Page, error)
	Expand(ctx context.Context, baniID, sessionID string, viewer service.Viewer, action *family.ExpandAction) (*service.ExpandResult, error)
	Drill(ctx context.Context, baniID, sessionID string, viewer service.Viewer, action *family.DrillAction) (*service.DrillResult, error)
	ResetView(ctx context.Context, baniID, sessionID string) error
	Search(ctx context.Context, baniID string, viewer service.Viewer, q service.SearchQuery) ([]service.SearchResult, error)
}

// TreeHandler 家谱树接口
type TreeHandler struct {
	trees  TreeReader
	errors *service.ErrorHandler
}

// NewTreeHandler 创建家谱树接口实例
func NewTreeHandler(trees TreeReader, errors *service.ErrorHandler) *TreeHandler {
	return &TreeHandler{trees: trees, errors: errors}
}

// Register 注册路由
func (h *TreeHandler) Register(r gin.IRouter) {
	bani := r.Group("/bani/:id")
	bani.GET("/tree", h.tree)
	bani.GET("/generations", h.overview)
	bani.GET("/generations/:gen", h.generation)
	bani.GET("/search", h.search)
	bani.GET("/view/expand", h.expand)
	bani.POST("/view/expand", h.expand)
	bani.GET("/view/drill", h.drill)
	bani.POST("/view/drill", h.drill)
	bani.DELETE("/view", h.resetView)
}

func (h *TreeHandler) fail(c *gin.Context, err error) {
	status, msg := h.errors.Handle(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *TreeHandler) badRequest(c *gin.Context, msg string, err error) {
	h.fail(c, service.NewError(service.ErrInvalidInput, msg, err))
}

type treeQuery struct {
	Root  string `form:"root"`
	Depth *int   `form:"depth" binding:"omitempty,gte=0"`
}

func (h *TreeHandler) tree(c *gin.Context) {
	var q treeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "invalid query", err)
		return
	}
	query := service.TreeQuery{RootID: q.Root, Depth: -1}
	if q.Depth != nil {
		query.Depth = *q.Depth
	}

	result, err := h.trees.Tree(c.Request.Context(), c.Param("id"), middleware.ViewerFrom(c), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TreeHandler) overview(c *gin.Context) {
	result, err := h.trees.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type generationURI struct {
	Generation int `uri:"gen" binding:"gte=0"`
}

type generationQuery struct {
	Parent string `form:"parent"`
	Page   int    `form:"page" binding:"omitempty,gte=1"`
	Size   int    `form:"size" binding:"omitempty,gte=1"`
}

func (h *TreeHandler) generation(c *gin.Context) {
	var uri generationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.badRequest(c, "invalid generation", err)
		return
	}
	var q generationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "invalid query", err)
		return
	}

	page, err := h.trees.Generation(c.Request.Context(), c.Param("id"), middleware.ViewerFrom(c),
		uri.Generation, q.Parent, q.Page, q.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TreeHandler) expand(c *gin.Context) {
	var action *family.ExpandAction
	if c.Request.Method == http.MethodPost {
		action = &family.ExpandAction{}
		if err := c.ShouldBindJSON(action); err != nil {
			h.badRequest(c, "invalid expand action", err)
			return
		}
	}

	result, err := h.trees.Expand(c.Request.Context(), c.Param("id"), middleware.SessionFrom(c),
		middleware.ViewerFrom(c), action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TreeHandler) drill(c *gin.Context) {
	var action *family.DrillAction
	if c.Request.Method == http.MethodPost {
		action = &family.DrillAction{}
		if err := c.ShouldBindJSON(action); err != nil {
			h.badRequest(c, "invalid drill action", err)
			return
		}
	}

	result, err := h.trees.Drill(c.Request.Context(), c.Param("id"), middleware.SessionFrom(c),
		middleware.ViewerFrom(c), action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TreeHandler) resetView(c *gin.Context) {
	if err := h.trees.ResetView(c.Request.Context(), c.Param("id"), middleware.SessionFrom(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type searchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,gte=1"`
}

func (h *TreeHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "invalid query", err)
		return
	}

	results, err := h.trees.Search(c.Request.Context(), c.Param("id"), middleware.ViewerFrom(c),
		service.SearchQuery{Query: q.Q, Limit: q.Limit})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
