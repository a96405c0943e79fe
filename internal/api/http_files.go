package api

import (
	"portfolio/internal/service"
	"portfolio/internal/storage"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// registerUploads 本地存储时在公共前缀下直接提供上传文件
func (h *HTTPHandler) registerUploads(r *gin.Engine) {
	localProvider, ok := h.storage.(storage.LocalBaseDirProvider)
	if !ok {
		return
	}
	publicPrefix := service.NormalisePublicBase(h.cfg.StoragePublicBaseURL)
	if strings.HasPrefix(publicPrefix, "http://") || strings.HasPrefix(publicPrefix, "https://") {
		return
	}
	r.Static(publicPrefix, localProvider.LocalBaseDir())
	logrus.WithFields(logrus.Fields{
		"prefix": publicPrefix,
		"dir":    localProvider.LocalBaseDir(),
	}).Debug("serving local uploads")
}
