package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/interface/api/rest/dto/file"
	"files-manager-api/internal/interface/api/rest/middleware"
	"files-manager-api/internal/interface/api/rest/validator"
)

// maxRequestSize leaves room for base64 expansion of a 10 MiB payload
const maxRequestSize = int64(15 << 20)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	authService ports.AuthService,
	logger *zap.Logger,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	auth := middleware.RequireSession(authService, logger)

	r.POST(RouteFiles, auth, fc.CreateFileHandler)
	r.GET(RouteFiles, auth, fc.GetFilesHandler)
	r.GET(RouteFile, auth, fc.GetFileHandler)
	r.PUT(RouteFilePublish, auth, fc.PublishHandler)
	r.PUT(RouteFileUnpub, auth, fc.UnpublishHandler)
	r.GET(RouteFileData, middleware.OptionalSession(authService, logger), fc.GetFileDataHandler)

	return fc
}

func (fc *FileController) CreateFileHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	var req file.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	n, err := fc.fileService.CreateNode(c.Request.Context(), middleware.RequesterID(c), file.ToDomainNewNode(req))
	if err != nil {
		respondError(c, fc.logger, "CreateNode()", err)
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseNode(*n))
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := fc.fileService.GetNode(c.Request.Context(), middleware.RequesterID(c), id)
	if err != nil {
		respondError(c, fc.logger, "GetNode()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseNode(*n))
}

func (fc *FileController) GetFilesHandler(c *gin.Context) {
	parentID, err := validator.ParseParentID(c.Query("parentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := validator.ParsePage(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ns, err := fc.fileService.ListNodes(c.Request.Context(), middleware.RequesterID(c), parentID, page)
	if err != nil {
		respondError(c, fc.logger, "ListNodes()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseNodes(ns))
}

func (fc *FileController) PublishHandler(c *gin.Context)   { fc.setPublic(c, true) }
func (fc *FileController) UnpublishHandler(c *gin.Context) { fc.setPublic(c, false) }

func (fc *FileController) setPublic(c *gin.Context, isPublic bool) {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := fc.fileService.SetPublic(c.Request.Context(), middleware.RequesterID(c), id, isPublic)
	if err != nil {
		respondError(c, fc.logger, "SetPublic()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseNode(*n))
}

func (fc *FileController) GetFileDataHandler(c *gin.Context) {
	id, err := validator.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size, err := validator.ParseSize(c.Query("size"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := fc.fileService.OpenContent(c.Request.Context(), middleware.RequesterID(c), id, size)
	if err != nil {
		respondError(c, fc.logger, "OpenContent()", err)
		return
	}
	defer content.Body.Close()

	c.DataFromReader(
		http.StatusOK,
		content.Size,
		content.ContentType,
		content.Body,
		map[string]string{"Cache-Control": "private"},
	)
}
